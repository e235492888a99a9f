package rewrite

import "errors"

// Sentinel errors for the rewrite engine.
var (
	// ErrInvalidSelector is returned when a rule selector cannot be parsed.
	ErrInvalidSelector = errors.New("rewrite: invalid selector")

	// ErrEnded is returned when Write or End is called after End.
	ErrEnded = errors.New("rewrite: rewriter already ended")

	// ErrHandler wraps an error returned by a rule handler.
	ErrHandler = errors.New("rewrite: handler failed")

	// ErrTokenize is returned when the input cannot be tokenized.
	ErrTokenize = errors.New("rewrite: tokenizer failed")

	// ErrOutput is returned when the output sink rejects a write.
	ErrOutput = errors.New("rewrite: output write failed")
)
