// Package sentencegen produces practice sentences for a language pair with
// an LLM provider.
package sentencegen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/lingodeck/internal/llm"
	"github.com/abhisek/lingodeck/internal/rating"
)

// Purpose labels sentence generation requests in the llm_requests log.
const Purpose = "sentence-gen"

// ErrNoValidSentences is returned when every generated sentence was rejected.
var ErrNoValidSentences = errors.New("no generated sentence passed validation")

// Input describes the batch to generate.
type Input struct {
	Language       string
	NativeLanguage string
	Count          int
	// TargetRating centres the difficulty of the batch.
	TargetRating float64
	// Avoid lists sentences the learner already has.
	Avoid []string
}

// Sentence is a generated sentence with its translation into the native
// language and a difficulty on the rating scale.
type Sentence struct {
	Content          string
	Translation      string
	DifficultyRating float64
}

// Generator produces sentences.
type Generator interface {
	Generate(ctx context.Context, in Input) ([]Sentence, error)
}

// Rejection records a sentence dropped by a validator.
type Rejection struct {
	Sentence Sentence
	Err      *ValidationError
}

// LLMGenerator implements Generator using an llm.Provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config

	// OnReject, when set, is called for every dropped sentence.
	OnReject func(Rejection)
}

// New creates an LLMGenerator.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

type batchOutput struct {
	Sentences []struct {
		Content          string  `json:"content"`
		Translation      string  `json:"translation"`
		DifficultyRating float64 `json:"difficulty_rating"`
	} `json:"sentences"`
}

// Generate asks the provider for a batch and returns the sentences that
// pass every validator, in the order the model produced them.
func (g *LLMGenerator) Generate(ctx context.Context, in Input) ([]Sentence, error) {
	if in.Language == "" || in.NativeLanguage == "" {
		return nil, fmt.Errorf("language and native language are required")
	}
	if in.Count <= 0 {
		in.Count = g.config.DefaultCount
	}
	in.Count = min(in.Count, g.config.MaxCount)
	if in.TargetRating == 0 {
		in.TargetRating = rating.DefaultRating
	}

	resp, err := g.provider.Generate(llm.WithPurpose(ctx, Purpose), llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(in, g.config)}},
		Schema:      SentenceBatchSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw batchOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	seen := newSeenSet(in.Avoid)
	var out []Sentence
	for _, r := range raw.Sentences {
		s := Sentence{
			Content:          normalizeSpace(r.Content),
			Translation:      normalizeSpace(r.Translation),
			DifficultyRating: r.DifficultyRating,
		}
		if verr := g.validate(&s, in, seen); verr != nil {
			if g.OnReject != nil {
				g.OnReject(Rejection{Sentence: s, Err: verr})
			}
			continue
		}
		seen.add(s.Content)
		out = append(out, s)
		if len(out) == in.Count {
			break
		}
	}

	if len(out) == 0 {
		return nil, ErrNoValidSentences
	}
	return out, nil
}

func (g *LLMGenerator) validate(s *Sentence, in Input, seen seenSet) *ValidationError {
	if seen.has(s.Content) {
		return &ValidationError{Validator: "dedup", Message: "duplicate sentence"}
	}
	for _, v := range g.config.Validators {
		if verr := v.Validate(s, in); verr != nil {
			return verr
		}
	}
	return nil
}
