package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"boe-rag/internal/models"
)

type stubSearcher struct {
	got  []float32
	hits []models.SearchHit
}

func (s *stubSearcher) Name() string { return "stub" }

func (s *stubSearcher) Search(_ context.Context, q []float32, k int) ([]models.SearchHit, error) {
	s.got = q
	return s.hits[:min(k, len(s.hits))], nil
}

type stubEmbedder struct {
	vec []float32
	err error
}

func (s stubEmbedder) Embed(context.Context, string) ([]float32, error) { return s.vec, s.err }

type stubLLM struct {
	prompt string
}

func (s *stubLLM) GenerateContent(_ context.Context, msgs []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	s.prompt = msgs[len(msgs)-1].Parts[0].(llms.TextContent).Text
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "respuesta [BOE-A-1]"}}}, nil
}

func TestSearch(t *testing.T) {
	s := &stubSearcher{hits: []models.SearchHit{{ItemID: "BOE-A-1"}, {ItemID: "BOE-A-2"}}}
	r := NewRAG(s, stubEmbedder{vec: []float32{0.5, 0.5}}, nil)

	hits, err := r.Search(context.Background(), "becas", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, []float32{0.5, 0.5}, s.got)
}

func TestSearch_EmbeddingUnavailable(t *testing.T) {
	r := NewRAG(&stubSearcher{}, stubEmbedder{vec: []float32{0, 0}}, nil)
	_, err := r.Search(context.Background(), "becas", 3)
	assert.Error(t, err)

	r = NewRAG(&stubSearcher{}, stubEmbedder{err: errors.New("down")}, nil)
	_, err = r.Search(context.Background(), "becas", 3)
	assert.ErrorContains(t, err, "down")
}

func TestAnswer(t *testing.T) {
	llm := &stubLLM{}
	r := NewRAG(&stubSearcher{}, stubEmbedder{}, llm)

	hits := []models.SearchHit{
		{ItemID: "BOE-A-1", Label: "part-1", Content: "primero"},
		{ItemID: "BOE-A-1", Label: "part-2", Content: "segundo"},
		{ItemID: "BOE-A-2", Label: "full", Content: "tercero"},
	}
	resp, err := r.Answer(context.Background(), "¿qué se publicó?", hits)
	require.NoError(t, err)
	assert.Equal(t, "respuesta [BOE-A-1]", resp.Content)
	assert.Equal(t, "BOE-A-1, BOE-A-2", resp.Source)
	assert.Contains(t, llm.prompt, "[BOE-A-1 part-2]\nsegundo")
	assert.Contains(t, llm.prompt, "Question: ¿qué se publicó?")
}

func TestAnswer_NoModel(t *testing.T) {
	_, err := NewRAG(&stubSearcher{}, stubEmbedder{}, nil).Answer(context.Background(), "q", nil)
	assert.Error(t, err)
}
