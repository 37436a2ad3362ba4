package sentencegen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write example sentences for adult language learners practising with flashcards.

Rules:
- Every sentence must be written entirely in the target language and be grammatically correct.
- Keep sentences short and self-contained: one idea, at most 15 words.
- Prefer everyday situations: travel, food, work, family, directions, small talk.
- The translation must be natural in the native language, not word for word.
- Rate each sentence on an 800-2000 scale: 800-1000 is A1, 1000-1200 A2, 1200-1400 B1, 1400-1600 B2, 1600-1800 C1, 1800-2000 C2.
- Stay close to the requested target rating; vary the vocabulary across the batch.
- Do not repeat any sentence from the "already known" list.`

// buildUserMessage renders the batch request.
func buildUserMessage(in Input, cfg Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target language: %s\n", in.Language)
	fmt.Fprintf(&b, "Native language: %s\n", in.NativeLanguage)
	fmt.Fprintf(&b, "Number of sentences: %d\n", in.Count)
	fmt.Fprintf(&b, "Target rating: %.0f (%s)\n", in.TargetRating, CEFRLevel(in.TargetRating))

	b.WriteString("\nAlready known:\n")
	b.WriteString(buildAvoid(in.Avoid, cfg.MaxAvoid))
	return b.String()
}

// buildAvoid lists the most recent max sentences, or "None".
func buildAvoid(sentences []string, max int) string {
	if len(sentences) == 0 {
		return "None"
	}
	if max > 0 && len(sentences) > max {
		sentences = sentences[len(sentences)-max:]
	}
	var b strings.Builder
	for i, s := range sentences {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return strings.TrimRight(b.String(), "\n")
}

// CEFRLevel maps a rating to the closest CEFR band.
func CEFRLevel(r float64) string {
	switch {
	case r < 1000:
		return "A1"
	case r < 1200:
		return "A2"
	case r < 1400:
		return "B1"
	case r < 1600:
		return "B2"
	case r < 1800:
		return "C1"
	default:
		return "C2"
	}
}
