package review

import (
	"fmt"

	"github.com/tmc/langchaingo/prompts"
)

// DefaultPromptTemplate asks for the record as a JSON object in free text.
const DefaultPromptTemplate = `
Analyze the following product review and provide a structured response in JSON format.

Review: {{.review}}

Respond with ONLY a JSON object in this exact format:
{
    "summary": "brief summary of the review highlighting key points",
    "sentiment": "positive"
}

The sentiment should be one of: positive, negative, or neutral.

JSON Response:
`

// StructuredPromptTemplate is used with provider-side JSON output.
const StructuredPromptTemplate = `Extract a brief summary highlighting the key points and the overall sentiment (positive, negative, or neutral) of this product review.
Return a JSON object with the string fields "summary" and "sentiment".

{{.review}}`

const reviewVariable = "review"

func newTemplate(text string) (prompts.PromptTemplate, error) {
	tmpl := prompts.NewPromptTemplate(text, []string{reviewVariable})
	// Render once so a broken template fails at construction.
	if _, err := tmpl.Format(map[string]any{reviewVariable: ""}); err != nil {
		return prompts.PromptTemplate{}, fmt.Errorf("review: invalid prompt template: %w", err)
	}
	return tmpl, nil
}

func render(tmpl prompts.PromptTemplate, review string) (string, error) {
	text, err := tmpl.Format(map[string]any{reviewVariable: review})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return text, nil
}
