package db

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"boe-rag/internal/models"
)

// ChunkRow is one row of boe_chunks. The embedding is written as a pgvector
// text literal; the column has no fixed dimension so the model can change.
type ChunkRow struct {
	bun.BaseModel `bun:"table:boe_chunks,alias:c"`

	ID                 int64     `bun:"id,pk,autoincrement"`
	ItemID             string    `bun:"item_id,notnull,unique:item_chunk"`
	ChunkSeq           int       `bun:"chunk_seq,notnull,unique:item_chunk"`
	Label              string    `bun:"label"`
	Strategy           string    `bun:"strategy"`
	FechaPublicacion   string    `bun:"fecha_publicacion"`
	SeccionCodigo      string    `bun:"seccion_codigo"`
	DepartamentoNombre string    `bun:"departamento_nombre"`
	EpigrafeNombre     string    `bun:"epigrafe_nombre"`
	ItemTitulo         string    `bun:"item_titulo"`
	Content            string    `bun:"content,notnull"`
	Tokens             int       `bun:"tokens"`
	Embedding          Vector    `bun:"embedding,notnull,type:vector"`
	CreatedAt          time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

func NewChunkRow(c models.ChunkEmbedding) ChunkRow {
	return ChunkRow{
		ItemID:             c.ItemID,
		ChunkSeq:           c.Seq,
		Label:              c.Label,
		Strategy:           c.Strategy,
		FechaPublicacion:   c.Record.FechaPublicacion,
		SeccionCodigo:      c.Record.SeccionCodigo,
		DepartamentoNombre: c.Record.DepartamentoNombre,
		EpigrafeNombre:     c.Record.EpigrafeNombre,
		ItemTitulo:         c.Record.ItemTitulo,
		Content:            c.Text,
		Tokens:             c.Tokens,
		Embedding:          Vector(c.Embedding),
	}
}

// WriteChunks inserts one item's chunks. Rows already present for the same
// (item_id, chunk_seq) are left untouched and counted as skipped.
func (s *Store) WriteChunks(ctx context.Context, chunks []models.ChunkEmbedding) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	rows := make([]ChunkRow, len(chunks))
	for i, c := range chunks {
		rows[i] = NewChunkRow(c)
	}

	res, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (item_id, chunk_seq) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("insert chunks for %s: %w", chunks[0].ItemID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return len(rows) - int(n), nil
}

type hitRow struct {
	ItemID     string  `bun:"item_id"`
	ChunkSeq   int     `bun:"chunk_seq"`
	Label      string  `bun:"label"`
	ItemTitulo string  `bun:"item_titulo"`
	Content    string  `bun:"content"`
	Distance   float32 `bun:"distance"`
}

// Search returns the k chunks nearest to query by L2 distance.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]models.SearchHit, error) {
	var rows []hitRow
	err := s.db.NewSelect().
		Model((*ChunkRow)(nil)).
		Column("item_id", "chunk_seq", "label", "item_titulo", "content").
		ColumnExpr("embedding <-> ?::vector AS distance", Vector(query)).
		OrderExpr("distance").
		Limit(k).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	hits := make([]models.SearchHit, len(rows))
	for i, r := range rows {
		hits[i] = models.SearchHit{
			ItemID:  r.ItemID,
			Seq:     r.ChunkSeq,
			Label:   r.Label,
			Titulo:  r.ItemTitulo,
			Content: r.Content,
			Score:   -r.Distance,
			Source:  s.Name(),
		}
	}
	return hits, nil
}

// Vector is a pgvector value, written and read as its "[x,y,...]" text form.
type Vector []float32

func (v Vector) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

func (v Vector) Value() (driver.Value, error) {
	return v.String(), nil
}

func (v *Vector) Scan(src any) error {
	var text string
	switch s := src.(type) {
	case nil:
		*v = nil
		return nil
	case string:
		text = s
	case []byte:
		text = string(s)
	default:
		return fmt.Errorf("scan vector from %T", src)
	}

	text = strings.Trim(strings.TrimSpace(text), "[]")
	if text == "" {
		*v = Vector{}
		return nil
	}
	parts := strings.Split(text, ",")
	out := make(Vector, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return fmt.Errorf("scan vector: %w", err)
		}
		out[i] = float32(f)
	}
	*v = out
	return nil
}
