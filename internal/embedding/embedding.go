// Package embedding turns chunk text into vectors. A provider outage never
// blocks chunk output: failed calls are replaced by a zero vector.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"boe-rag/internal/config"
	"boe-rag/internal/models"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_provider.go -package=mocks boe-rag/internal/embedding Provider

// Provider is satisfied by langchaingo embedders.
type Provider interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// NewProvider builds the langchaingo embedder named by cfg.Provider.
func NewProvider(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaEmbedder(cfg)
	case "openai":
		return NewOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// NewOllamaEmbedder creates an embedder backed by an Ollama server.
func NewOllamaEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing ollama: %w", err)
	}
	return embeddings.NewEmbedder(llm)
}

// NewOpenAIEmbedder creates an embedder for any OpenAI-compatible endpoint.
func NewOpenAIEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing openai: %w", err)
	}
	return embeddings.NewEmbedder(llm)
}

// ZeroVector returns the placeholder stored when embedding fails.
func ZeroVector(dim int) []float32 {
	return make([]float32, dim)
}

// Embedder wraps a Provider and guarantees a vector of the configured dimension.
type Embedder struct {
	provider Provider
	dim      int
	logger   zerolog.Logger
}

// NewEmbedder returns an Embedder. A nil provider disables embedding: every
// chunk then gets a zero vector without being reported as a fallback.
func NewEmbedder(p Provider, dim int, logger zerolog.Logger) *Embedder {
	return &Embedder{
		provider: p,
		dim:      dim,
		logger:   logger.With().Str("component", "embedder").Logger(),
	}
}

// Embed returns the vector for text and whether it came from the provider.
// On provider error, empty response or wrong dimension it returns a zero vector
// and the reason.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.provider == nil {
		return ZeroVector(e.dim), nil
	}

	vec, err := e.provider.EmbedQuery(ctx, text)
	switch {
	case err != nil:
	case len(vec) == 0:
		err = fmt.Errorf("empty embedding")
	case len(vec) != e.dim:
		err = fmt.Errorf("embedding dimension %d, want %d", len(vec), e.dim)
	default:
		return vec, nil
	}

	e.logger.Warn().Err(err).Msg("embedding failed, using zero vector")
	return ZeroVector(e.dim), &FallbackError{Err: err}
}

// FallbackError reports that a zero vector was substituted.
type FallbackError struct {
	Err error
}

func (e *FallbackError) Error() string { return "zero vector substituted: " + e.Err.Error() }
func (e *FallbackError) Unwrap() error { return e.Err }

// EmbedChunks embeds every chunk of one item. It always returns one entry per
// chunk; fallbacks counts the chunks that got a zero vector.
func (e *Embedder) EmbedChunks(ctx context.Context, rec models.FlatRecord, chunks []models.Chunk) (out []models.ChunkEmbedding, fallbacks int) {
	out = make([]models.ChunkEmbedding, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := e.Embed(ctx, chunk.Text)
		if err != nil {
			fallbacks++
		}
		out = append(out, models.ChunkEmbedding{
			Chunk:     chunk,
			Embedding: vec,
			Record:    rec,
		})
	}
	return out, fallbacks
}
