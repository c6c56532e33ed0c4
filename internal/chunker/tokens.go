package chunker

import (
	"math"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"
)

// TokenCounter estimates how many tokens a text costs the embedding model.
// Estimates only need to be monotonic enough for packing decisions.
type TokenCounter interface {
	Count(text string) int
}

// WordCounter approximates tokens as word_count / 0.75.
type WordCounter struct{}

func (WordCounter) Count(text string) int {
	words := len(strings.Fields(text))
	return int(math.Ceil(float64(words) / 0.75))
}

// TiktokenCounter counts byte-pair-encoding tokens.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &TiktokenCounter{enc: enc}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// NewTokenCounter returns a tiktoken counter for encoding, or a WordCounter
// when the encoding is empty or its ranks cannot be loaded.
func NewTokenCounter(encoding string, logger zerolog.Logger) TokenCounter {
	if encoding == "" {
		return WordCounter{}
	}
	c, err := NewTiktokenCounter(encoding)
	if err != nil {
		logger.Warn().Err(err).Str("encoding", encoding).Msg("tiktoken unavailable, estimating tokens from word count")
		return WordCounter{}
	}
	return c
}
