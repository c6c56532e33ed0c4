// Package chromemdb keeps chunk vectors in a local persistent chromem-go collection.
package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"

	"boe-rag/internal/models"
)

// VectorDBManager encapsulates the chromem-go database and one collection.
type VectorDBManager struct {
	db         *chromem.DB
	collection *chromem.Collection
	logger     zerolog.Logger
}

// NewVectorDBManager opens (or creates) the database at dbPath; an empty path keeps it in memory.
func NewVectorDBManager(dbPath, collectionName string, compress bool, logger zerolog.Logger) (*VectorDBManager, error) {
	var db *chromem.DB
	if dbPath == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	// vectors always come precomputed, so no embedding func
	c, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	return &VectorDBManager{
		db:         db,
		collection: c,
		logger:     logger.With().Str("component", "chromem").Str("collection", collectionName).Logger(),
	}, nil
}

func (m *VectorDBManager) Name() string { return "chromem" }

// DocumentID is the collection key of a chunk.
func DocumentID(itemID string, seq int) string {
	return itemID + "-" + strconv.Itoa(seq)
}

// WriteChunks upserts one item's chunks. Zero vectors cannot be normalised
// for cosine search and are skipped.
func (m *VectorDBManager) WriteChunks(ctx context.Context, chunks []models.ChunkEmbedding) (int, error) {
	docs := make([]chromem.Document, 0, len(chunks))
	skipped := 0
	for _, c := range chunks {
		if models.IsZeroVector(c.Embedding) {
			skipped++
			continue
		}
		docs = append(docs, chromem.Document{
			ID:        DocumentID(c.ItemID, c.Seq),
			Content:   c.Text,
			Metadata:  metadata(c),
			Embedding: c.Embedding,
		})
	}
	if len(docs) == 0 {
		return skipped, nil
	}

	if err := m.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return skipped, fmt.Errorf("failed to add documents: %w", err)
	}
	return skipped, nil
}

func metadata(c models.ChunkEmbedding) map[string]string {
	return map[string]string{
		"item_id":             c.ItemID,
		"chunk_seq":           strconv.Itoa(c.Seq),
		"label":               c.Label,
		"strategy":            c.Strategy,
		"fecha_publicacion":   c.Record.FechaPublicacion,
		"seccion_codigo":      c.Record.SeccionCodigo,
		"departamento_nombre": c.Record.DepartamentoNombre,
		"epigrafe_nombre":     c.Record.EpigrafeNombre,
		"item_titulo":         c.Record.ItemTitulo,
	}
}

// Count returns the number of stored chunks.
func (m *VectorDBManager) Count() int {
	return m.collection.Count()
}

// Search returns up to k chunks by cosine similarity to query.
func (m *VectorDBManager) Search(ctx context.Context, query []float32, k int) ([]models.SearchHit, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("query embedding must be provided")
	}
	// chromem rejects nResults above the document count
	k = min(k, m.collection.Count())
	if k <= 0 {
		return nil, nil
	}

	results, err := m.collection.QueryEmbedding(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	hits := make([]models.SearchHit, len(results))
	for i, r := range results {
		seq, _ := strconv.Atoi(r.Metadata["chunk_seq"])
		hits[i] = models.SearchHit{
			ItemID:  r.Metadata["item_id"],
			Seq:     seq,
			Label:   r.Metadata["label"],
			Titulo:  r.Metadata["item_titulo"],
			Content: r.Content,
			Score:   r.Similarity,
			Source:  m.Name(),
		}
	}
	return hits, nil
}

// Reset drops the collection and everything in it, then recreates it empty.
func (m *VectorDBManager) Reset() error {
	name := m.collection.Name
	if err := m.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	c, err := m.db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create/get collection: %w", err)
	}
	m.collection = c
	m.logger.Info().Msg("collection reset")
	return nil
}
