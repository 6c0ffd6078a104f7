// cmd/verifact/types.go
package main

import "time"

// EvidenceArticle represents a single news article retrieved as evidence
// for a claim. Articles are transient: they only persist as part of a
// VerificationResult.
type EvidenceArticle struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published,omitempty"`
	Source    string `json:"source,omitempty"`
	Snippet   string `json:"snippet,omitempty"`
	API       string `json:"api"`
}

// VerificationResult is the structured verdict for a claim.
type VerificationResult struct {
	Status        string            `json:"status"`
	Confidence    int               `json:"confidence"`
	Analysis      string            `json:"analysis"`
	LiveEvidence  []EvidenceArticle `json:"live_evidence"`
	EvidenceCount int               `json:"evidence_count"`
	Timestamp     string            `json:"timestamp"`
	Sources       []string          `json:"sources"`
	Success       bool              `json:"success"`
	Cached        bool              `json:"cached"`
}

// ModelCacheEntry records the last known working model identifier. The
// file holding it is overwritten wholesale on each successful resolution.
type ModelCacheEntry struct {
	ModelName       string    `json:"model_name"`
	AvailableModels []string  `json:"available_models"`
	Timestamp       time.Time `json:"timestamp"`
}

// EvidenceTag classifies one evidence article's stance toward a claim.
type EvidenceTag struct {
	Index     int    `json:"index"`
	Tag       string `json:"tag"`
	Rationale string `json:"rationale"`
}

// EvidenceTagResult holds stance tags for a full evidence list. Counts are
// tallied locally from Items, never trusted from the model.
type EvidenceTagResult struct {
	Items  []EvidenceTag  `json:"items"`
	Counts map[string]int `json:"counts"`
}

// NewEvidenceTagResult returns an empty, zero-counted tag result.
func NewEvidenceTagResult() EvidenceTagResult {
	return EvidenceTagResult{
		Items: []EvidenceTag{},
		Counts: map[string]int{
			TagSupportive:    0,
			TagContradictory: 0,
			TagIrrelevant:    0,
		},
	}
}
