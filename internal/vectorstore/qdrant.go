// Package vectorstore writes chunk vectors to a Qdrant collection.
package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"

	"boe-rag/internal/models"
)

// QdrantStore implements the chunk sink on Qdrant.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	logger     zerolog.Logger
}

// NewQdrantStore connects to Qdrant. urlStr is the HTTP address
// ("http://localhost:6333"); the gRPC port is the HTTP port plus one.
func NewQdrantStore(urlStr, collection string, logger zerolog.Logger) (*QdrantStore, error) {
	host, port, err := grpcAddress(urlStr)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client:     client,
		collection: collection,
		logger:     logger.With().Str("component", "qdrant").Str("collection", collection).Logger(),
	}, nil
}

func grpcAddress(urlStr string) (string, int, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			port = httpPort + 1
		}
	}
	return host, port, nil
}

func (s *QdrantStore) Name() string { return "qdrant" }

func (s *QdrantStore) Close() error { return s.client.Close() }

// PointID derives a stable UUIDv5 from a chunk key so re-ingestion overwrites.
func PointID(itemID string, seq int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(itemID+"-"+strconv.Itoa(seq))).String()
}

// EnsureCollection creates the collection with cosine distance when it does not exist.
func (s *QdrantStore) EnsureCollection(ctx context.Context, vectorSize int) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	s.logger.Info().Int("vector_size", vectorSize).Msg("creating collection")
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// points converts chunks to Qdrant points, dropping zero vectors.
func points(chunks []models.ChunkEmbedding) ([]*qdrant.PointStruct, int) {
	out := make([]*qdrant.PointStruct, 0, len(chunks))
	skipped := 0
	for _, c := range chunks {
		if models.IsZeroVector(c.Embedding) {
			skipped++
			continue
		}
		out = append(out, &qdrant.PointStruct{
			Id:      qdrant.NewID(PointID(c.ItemID, c.Seq)),
			Vectors: qdrant.NewVectors(c.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"item_id":             c.ItemID,
				"chunk_seq":           int64(c.Seq),
				"label":               c.Label,
				"strategy":            c.Strategy,
				"content":             c.Text,
				"fecha_publicacion":   c.Record.FechaPublicacion,
				"seccion_codigo":      c.Record.SeccionCodigo,
				"departamento_nombre": c.Record.DepartamentoNombre,
				"epigrafe_nombre":     c.Record.EpigrafeNombre,
				"item_titulo":         c.Record.ItemTitulo,
			}),
		})
	}
	return out, skipped
}

// WriteChunks upserts one item's chunks; zero vectors are skipped.
func (s *QdrantStore) WriteChunks(ctx context.Context, chunks []models.ChunkEmbedding) (int, error) {
	pts, skipped := points(chunks)
	if len(pts) == 0 {
		return skipped, nil
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         pts,
	})
	if err != nil {
		return skipped, fmt.Errorf("failed to upsert points: %w", err)
	}
	s.logger.Debug().Int("count", len(pts)).Msg("upserted points")
	return skipped, nil
}

// Search returns the k points nearest to query.
func (s *QdrantStore) Search(ctx context.Context, query []float32, k int) ([]models.SearchHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	limit := uint64(k)
	scored, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	hits := make([]models.SearchHit, 0, len(scored))
	for _, p := range scored {
		payload := p.GetPayload()
		hits = append(hits, models.SearchHit{
			ItemID:  payload["item_id"].GetStringValue(),
			Seq:     int(payload["chunk_seq"].GetIntegerValue()),
			Label:   payload["label"].GetStringValue(),
			Titulo:  payload["item_titulo"].GetStringValue(),
			Content: payload["content"].GetStringValue(),
			Score:   p.GetScore(),
			Source:  s.Name(),
		})
	}
	return hits, nil
}
