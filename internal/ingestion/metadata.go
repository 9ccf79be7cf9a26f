package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Source records which path produced a document's text.
type Source string

// Normalization sources
const (
	SourceConverter Source = "converter"
	SourceHTTP      Source = "http"
	SourceBrowser   Source = "browser"
)

// Metadata describes where a normalized document came from.
type Metadata struct {
	URL         string `json:"url,omitempty"`
	ResolvedURL string `json:"resolved_url,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Platform    string `json:"platform,omitempty"`
	Source      Source `json:"source"`
	Timestamp   string `json:"timestamp"` // RFC3339
	Hash        string `json:"hash"`      // SHA256 hex digest of the text
}

// Document is normalized text plus provenance.
type Document struct {
	Text     string    `json:"text"`
	Metadata *Metadata `json:"metadata"`
}

// NewMetadata creates metadata stamped with the current time and the content hash.
func NewMetadata(content, url string, source Source) *Metadata {
	return &Metadata{
		URL:       url,
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
	}
}

func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
