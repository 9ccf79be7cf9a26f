//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFallbackReport_ListsInitialized(t *testing.T) {
	r := NewFallbackReport("sorry")
	assert.Equal(t, "sorry", r.OverallFeedback)
	assert.NotNil(t, r.Strengths)
	assert.NotNil(t, r.Weaknesses)
	assert.NotNil(t, r.ChartData.Labels)
	assert.NotNil(t, r.ChartData.Values)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"strengths":[]`)
}

func TestInterviewReport_Normalize(t *testing.T) {
	r := &InterviewReport{OverallFeedback: "ok"}
	r.Normalize()
	assert.Empty(t, r.Strengths)
	assert.NotNil(t, r.Strengths)
	assert.NotNil(t, r.ChartData.Values)
}

func TestInterviewReport_Chart(t *testing.T) {
	r := &InterviewReport{ChartData: ChartData{Labels: ReportCategories, Values: []int{2, 1, 1}}}
	assert.True(t, r.ChartConsistent())
	assert.Equal(t, 4, r.TotalQuestions())

	r.ChartData.Values = []int{1}
	assert.False(t, r.ChartConsistent())
}

func TestRequests_Validate(t *testing.T) {
	assert.Error(t, (&InterviewDataRequest{ResumeURL: "https://a"}).Validate())
	assert.NoError(t, (&InterviewDataRequest{ResumeURL: "https://a", JobDescriptionURL: "https://b"}).Validate())

	assert.Error(t, (&PDFRequest{}).Validate())
	assert.NoError(t, (&PDFRequest{Report: NewFallbackReport("x")}).Validate())

	assert.Error(t, (&CompleteRequest{Messages: []ChatMessage{{Content: "no role"}}}).Validate())
	assert.NoError(t, (&CompleteRequest{Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}}}).Validate())
}

func TestRequests_ValidateUsesJSONFieldNames(t *testing.T) {
	err := (&InterviewDataRequest{ResumeURL: "https://a"}).Validate()
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "jobDescriptionUrl", verrs[0].Field())
	assert.Equal(t, "required", verrs[0].Tag())
}
