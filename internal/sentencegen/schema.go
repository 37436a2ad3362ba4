package sentencegen

import "github.com/abhisek/lingodeck/internal/llm"

// SentenceBatchSchema is the structured output requested from the model.
var SentenceBatchSchema = &llm.Schema{
	Name:        "sentence-batch",
	Description: "Practice sentences in the target language with translations",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sentences": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"content": map[string]any{
							"type":        "string",
							"description": "The sentence in the language being learned",
						},
						"translation": map[string]any{
							"type":        "string",
							"description": "A natural translation into the learner's native language",
						},
						"difficulty_rating": map[string]any{
							"type":        "number",
							"description": "Difficulty on a 800-2000 scale where 1200 is a typical A2 sentence",
						},
					},
					"required":             []any{"content", "translation", "difficulty_rating"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"sentences"},
		"additionalProperties": false,
	},
}
