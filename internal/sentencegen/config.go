package sentencegen

// Config controls the LLMGenerator.
type Config struct {
	// Validators run in order on every generated sentence; the first
	// failure drops the sentence.
	Validators []Validator

	MaxTokens   int
	Temperature float64

	// DefaultCount is used when Input.Count is not set.
	DefaultCount int
	// MaxCount caps a single batch.
	MaxCount int

	// MaxAvoid bounds how many existing sentences are listed in the prompt.
	MaxAvoid int
}

// DefaultConfig returns the standard validator chain and limits.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&DifficultyValidator{},
		},
		MaxTokens:    1024,
		Temperature:  0.8,
		DefaultCount: 5,
		MaxCount:     20,
		MaxAvoid:     20,
	}
}
