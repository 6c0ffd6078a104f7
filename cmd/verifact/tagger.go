// cmd/verifact/tagger.go
package main

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// tagFallbackModels is the short list tried when no resolved handle exists.
var tagFallbackModels = []string{"gpt-4o-mini", "gpt-4o"}

// TagEvidence classifies each evidence article's stance toward the claim.
// This path degrades gracefully: any failure yields the zero-valued result
// so a broken tagging pass never blocks display of the primary verdict.
func (v *Verifier) TagEvidence(ctx context.Context, claim string, evidence []EvidenceArticle) EvidenceTagResult {
	if len(evidence) == 0 {
		return NewEvidenceTagResult()
	}

	titles := make([]string, 0, len(evidence))
	for _, article := range evidence {
		titles = append(titles, article.Title)
	}

	// Tag results are memoized on (claim, evidence titles): re-rendering
	// the same verdict should not cost another model call
	cacheKey := fmt.Sprintf("tags:%s:%s", ClaimHash(claim), ClaimHash(strings.Join(titles, "\n")))
	if value, ok := v.session.Get(cacheKey); ok {
		if cached, ok := value.(EvidenceTagResult); ok {
			return cached
		}
	}

	if v.client == nil {
		return NewEvidenceTagResult()
	}

	model := v.ModelName()
	if model == "" {
		// No resolved handle; fall back to the short fixed list
		model = tagFallbackModels[0]
	}

	prompt := CreateEvidenceTaggingPrompt(claim, titles)

	var raw string
	for attempt := 0; attempt < MaxTagAttempts; attempt++ {
		text, err := v.client.GenerateContent(ctx, model, prompt)
		if err == nil {
			raw = text
			break
		}
		if ClassifyModelError(err) == ErrKindRateLimit && attempt < MaxTagAttempts-1 {
			v.sleep(RetryBaseDelay * time.Duration(1<<attempt))
			continue
		}
		// Not a rate limit, or retries exhausted
		return NewEvidenceTagResult()
	}

	result := parseTagResponse(raw)
	v.session.SetWithTTL(cacheKey, result, FetchCacheTTL)
	return result
}

// parseTagResponse extracts stance tags from the model's JSON array. Counts
// are tallied locally; tags outside the enum are coerced to irrelevant.
func parseTagResponse(raw string) EvidenceTagResult {
	result := NewEvidenceTagResult()

	items, ok := ExtractFirstJSON(raw).([]interface{})
	if !ok {
		return result
	}

	for i, element := range items {
		obj, ok := element.(map[string]interface{})
		if !ok {
			continue
		}

		tag, _ := obj["tag"].(string)
		if _, known := result.Counts[tag]; !known {
			tag = TagIrrelevant
		}

		index := i + 1
		if value, ok := obj["index"].(float64); ok && int(value) > 0 {
			index = int(value)
		}

		rationale, _ := obj["rationale"].(string)

		result.Counts[tag]++
		result.Items = append(result.Items, EvidenceTag{
			Index:     index,
			Tag:       tag,
			Rationale: rationale,
		})
	}
	return result
}
