package types

// ChartData pairs question categories with the number of questions asked in each.
type ChartData struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// InterviewReport is the structured end-of-session feedback.
type InterviewReport struct {
	OverallFeedback string    `json:"overallFeedback"`
	Strengths       []string  `json:"strengths"`
	Weaknesses      []string  `json:"weaknesses"`
	ChartData       ChartData `json:"chartData"`
}

// ReportCategories are the canonical question categories, in chart order.
var ReportCategories = []string{"Technical", "Experience", "Personality"}

// NewFallbackReport returns a report carrying only a feedback message, with every list initialized.
func NewFallbackReport(feedback string) *InterviewReport {
	return &InterviewReport{
		OverallFeedback: feedback,
		Strengths:       []string{},
		Weaknesses:      []string{},
		ChartData: ChartData{
			Labels: []string{},
			Values: []int{},
		},
	}
}

// Normalize replaces nil slices with empty ones.
func (r *InterviewReport) Normalize() {
	if r.Strengths == nil {
		r.Strengths = []string{}
	}
	if r.Weaknesses == nil {
		r.Weaknesses = []string{}
	}
	if r.ChartData.Labels == nil {
		r.ChartData.Labels = []string{}
	}
	if r.ChartData.Values == nil {
		r.ChartData.Values = []int{}
	}
}

// ChartConsistent reports whether every label has a matching value.
func (r *InterviewReport) ChartConsistent() bool {
	return len(r.ChartData.Labels) == len(r.ChartData.Values)
}

// TotalQuestions sums the chart values.
func (r *InterviewReport) TotalQuestions() int {
	total := 0
	for _, v := range r.ChartData.Values {
		total += v
	}
	return total
}
