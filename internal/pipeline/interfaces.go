package pipeline

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_sinks.go -package=mocks boe-rag/internal/pipeline RecordSink,ChunkSink

import (
	"context"
	"time"

	"boe-rag/internal/models"
	"boe-rag/internal/parser"
)

// RecordSink receives the day's flat records once every item has been processed.
// It returns how many records it skipped as duplicates.
type RecordSink interface {
	Name() string
	WriteRecords(ctx context.Context, date time.Time, records []models.FlatRecord) (int, error)
}

// ChunkSink receives one item's embedded chunks, in order.
// It returns how many chunks it skipped.
type ChunkSink interface {
	Name() string
	WriteChunks(ctx context.Context, chunks []models.ChunkEmbedding) (int, error)
}

// SummarySource returns the raw summary document for a date.
type SummarySource interface {
	Get(ctx context.Context, date time.Time) ([]byte, error)
}

// BodyExtractor fetches and parses an item's body.
type BodyExtractor interface {
	Extract(ctx context.Context, rec models.FlatRecord) (parser.Body, error)
}

// Chunker splits an item's blocks into chunks.
type Chunker interface {
	Chunk(rec models.FlatRecord, blocks []models.Block) []models.Chunk
}

// Embedder attaches a vector to every chunk, reporting zero-vector fallbacks.
type Embedder interface {
	EmbedChunks(ctx context.Context, rec models.FlatRecord, chunks []models.Chunk) ([]models.ChunkEmbedding, int)
}

// Artifacts persists intermediate files.
type Artifacts interface {
	SaveSummary(date time.Time, raw []byte) (string, error)
	SaveXML(itemID string, data []byte) error
	SaveChunks(rec models.FlatRecord, chunks []models.Chunk) error
}
