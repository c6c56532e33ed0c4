// Package rag answers questions over stored chunks.
package rag

import (
	"context"
	"fmt"
	"strings"

	"boe-rag/internal/llmservice"
	"boe-rag/internal/models"
)

// Searcher is a chunk store that supports nearest-neighbour queries.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query []float32, k int) ([]models.SearchHit, error)
}

// QueryEmbedder embeds the question. It must fail rather than return a zero vector.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type RAG struct {
	searcher Searcher
	embedder QueryEmbedder
	llm      llmservice.Generator
}

// NewRAG wires a store and an embedder; llm may be nil when only search is needed.
func NewRAG(searcher Searcher, embedder QueryEmbedder, llm llmservice.Generator) *RAG {
	return &RAG{searcher: searcher, embedder: embedder, llm: llm}
}

// Search returns the k chunks nearest to query.
func (r *RAG) Search(ctx context.Context, query string, k int) ([]models.SearchHit, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if models.IsZeroVector(vec) {
		return nil, fmt.Errorf("embedding query: provider disabled")
	}
	return r.searcher.Search(ctx, vec, k)
}

// Answer asks the model to answer query from hits only.
func (r *RAG) Answer(ctx context.Context, query string, hits []models.SearchHit) (*models.PromptResponse, error) {
	if r.llm == nil {
		return nil, fmt.Errorf("no answer model configured")
	}

	var sources []string
	var excerpts strings.Builder
	for _, h := range hits {
		fmt.Fprintf(&excerpts, "[%s %s]\n%s\n\n", h.ItemID, h.Label, h.Content)
		sources = append(sources, h.ItemID)
	}

	content, err := llmservice.Complete(ctx, r.llm, models.AnswerSystemPrompt,
		fmt.Sprintf(models.AnswerPromptTemplate, excerpts.String(), query))
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &models.PromptResponse{
		Query:   query,
		Source:  strings.Join(dedupe(sources), ", "),
		Content: content,
	}, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
