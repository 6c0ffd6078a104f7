// cmd/verifact/prompts.go
package main

import (
	"fmt"
	"strings"
)

// CreateHybridPrompt renders the combined verification prompt: claim, live
// evidence, and (optionally) the evidence-classification block. Embedding
// the tagging instructions keeps verification to one model call.
func CreateHybridPrompt(claim string, evidence []EvidenceArticle, includeEvidenceTags bool) string {
	var evidenceText strings.Builder
	var taggingList strings.Builder

	if len(evidence) > 0 {
		evidenceText.WriteString("LIVE NEWS EVIDENCE FOUND:\n")
		taggingList.WriteString("EVIDENCE ARTICLES TO CLASSIFY:\n")
		for i, article := range evidence {
			if i >= MaxPromptEvidence {
				break
			}
			fmt.Fprintf(&evidenceText, "%d. %s\n", i+1, article.Title)
			if article.Source != "" {
				fmt.Fprintf(&evidenceText, "   Source: %s\n", article.Source)
			}
			if article.Published != "" {
				fmt.Fprintf(&evidenceText, "   Published: %s\n", article.Published)
			}
			fmt.Fprintf(&evidenceText, "   URL: %s\n\n", article.Link)
			fmt.Fprintf(&taggingList, "%d. %s\n", i+1, article.Title)
		}
	} else {
		evidenceText.WriteString("LIVE NEWS EVIDENCE: No recent articles found from trusted sources.\n")
	}

	taggingInstruction := ""
	if includeEvidenceTags && len(evidence) > 0 {
		taggingInstruction = fmt.Sprintf(`

EVIDENCE CLASSIFICATION (include this in your response):
After your main analysis, classify each evidence article as supportive, contradictory, or irrelevant.
Return a JSON array like: [{"index":1,"tag":"supportive","rationale":"brief reason"}, ...]
%s`, taggingList.String())
	}

	return fmt.Sprintf(`
NEWS FACT-CHECK ANALYSIS WITH LIVE EVIDENCE
========================================================

You are an expert news fact-checker. Analyze the claim below using both your knowledge and the provided live news evidence from trusted sources.

NEWS CLAIM TO VERIFY:
"""%s"""


%s

ANALYSIS INSTRUCTIONS:
1. First check if the live evidence supports or contradicts the claim
2. Consider the credibility of sources in the evidence
3. Look for consensus or disagreement among sources
4. Note if evidence is recent or outdated
5. Identify any missing context or conflicting reports

Please provide analysis in this EXACT format:

VERIFICATION_STATUS: [TRUE/FALSE/PARTIALLY_TRUE/MISLEADING/UNVERIFIED]
CONFIDENCE_SCORE: [0-100]

EVIDENCE_BASED_ANALYSIS:
[Analyze how the live evidence relates to the claim. Which sources support/contradict?]

CONTEXTUAL_ANALYSIS:
[Broader context about this topic]

CONSENSUS_LEVEL:
[High/Medium/Low - based on agreement among sources]

RED_FLAGS:
[Suspicious elements, missing evidence, or credibility concerns]

RECOMMENDATION:
[Final assessment and advice for readers]
%s`, claim, evidenceText.String(), taggingInstruction)
}

// CreateEvidenceTaggingPrompt renders the standalone stance-tagging prompt
// over numbered headlines, requesting strict JSON output.
func CreateEvidenceTaggingPrompt(claim string, evidenceTitles []string) string {
	var headlines strings.Builder
	for i, title := range evidenceTitles {
		fmt.Fprintf(&headlines, "%d. %s\n", i+1, title)
	}

	return fmt.Sprintf(`
Claim:
"%s"

Headlines:
%s
Classify each headline as:
supportive, contradictory, or irrelevant.

Return STRICT JSON like:
[
  {"index":1,"tag":"supportive","rationale":"short reason"}
]
`, claim, headlines.String())
}
