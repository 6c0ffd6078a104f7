// cmd/verifact/parser.go
package main

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var confidenceRe = regexp.MustCompile(`(?i)CONFIDENCE_SCORE:\s*([0-9]{1,3})`)

// statusScanOrder fixes the priority of status extraction.
var statusScanOrder = []string{
	StatusTrue,
	StatusFalse,
	StatusPartiallyTrue,
	StatusMisleading,
	StatusUnverified,
}

// ParseHybridResponse extracts a structured verdict from free-form model
// text that loosely follows the labeled-section template.
func ParseHybridResponse(text string, evidence []EvidenceArticle, trustedSources []string) VerificationResult {
	status := StatusUnverified
	upper := strings.ToUpper(text)
	for _, candidate := range statusScanOrder {
		if strings.Contains(upper, "VERIFICATION_STATUS: "+candidate) {
			status = candidate
			break
		}
	}

	confidence := 50
	if m := confidenceRe.FindStringSubmatch(text); m != nil {
		if value, err := strconv.Atoi(m[1]); err == nil {
			confidence = clampInt(value, 0, 100)
		}
	}

	// A confident verdict with no corroborating search deserves less trust:
	// the model is working from memory alone.
	if len(evidence) == 0 && confidence > 50 {
		confidence = clampInt(confidence-20, 30, 100)
	}

	if evidence == nil {
		evidence = []EvidenceArticle{}
	}

	return VerificationResult{
		Status:        status,
		Confidence:    confidence,
		Analysis:      text,
		LiveEvidence:  evidence,
		EvidenceCount: len(evidence),
		Timestamp:     time.Now().Format(TimestampLayout),
		Sources:       firstN(trustedSources, 4),
		Success:       true,
	}
}

// ExtractFirstJSON returns the first parseable JSON value (object or array)
// embedded in free text, tolerating code fences and trailing commentary the
// model appends after the JSON block. Returns nil when nothing parses.
func ExtractFirstJSON(text string) interface{} {
	text = strings.TrimSpace(text)
	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}
		// A json.Decoder stops after the first complete value, which makes
		// anything after the block irrelevant.
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var value interface{}
		if err := dec.Decode(&value); err == nil {
			return value
		}
	}
	return nil
}
