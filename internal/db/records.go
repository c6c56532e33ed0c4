package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"boe-rag/internal/models"
)

// Record is one row of boe_metadatos.
type Record struct {
	bun.BaseModel `bun:"table:boe_metadatos,alias:m"`

	ID                 int64     `bun:"id,pk,autoincrement"`
	FechaPublicacion   time.Time `bun:"fecha_publicacion,type:date,nullzero"`
	Publicacion        string    `bun:"publicacion"`
	DiarioNumero       int64     `bun:"diario_numero,nullzero"`
	SumarioID          string    `bun:"sumario_id"`
	SumarioURLPDF      string    `bun:"sumario_url_pdf"`
	SeccionCodigo      string    `bun:"seccion_codigo"`
	SeccionNombre      string    `bun:"seccion_nombre"`
	DepartamentoCodigo int64     `bun:"departamento_codigo,nullzero"`
	DepartamentoNombre string    `bun:"departamento_nombre"`
	EpigrafeNombre     string    `bun:"epigrafe_nombre"`
	ItemID             string    `bun:"item_id,notnull,unique"`
	ItemTitulo         string    `bun:"item_titulo"`
	ItemURLPDF         string    `bun:"item_url_pdf"`
	ItemURLHTML        string    `bun:"item_url_html"`
	ItemURLXML         string    `bun:"item_url_xml"`
	Texto              string    `bun:"texto"`
	SzKBytes           int64     `bun:"szkbytes"`
	CreatedAt          time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// NewRecord converts a flat record to its row: the date becomes a date column
// and the numeric codes become integers, unparsable values staying NULL.
func NewRecord(r models.FlatRecord) Record {
	fecha, _ := time.Parse(models.SummaryDateLayout, r.FechaPublicacion)
	return Record{
		FechaPublicacion:   fecha,
		Publicacion:        r.Publicacion,
		DiarioNumero:       parseInt(r.DiarioNumero),
		SumarioID:          r.SumarioID,
		SumarioURLPDF:      r.SumarioURLPDF,
		SeccionCodigo:      r.SeccionCodigo,
		SeccionNombre:      r.SeccionNombre,
		DepartamentoCodigo: parseInt(r.DepartamentoCodigo),
		DepartamentoNombre: r.DepartamentoNombre,
		EpigrafeNombre:     r.EpigrafeNombre,
		ItemID:             r.ItemID,
		ItemTitulo:         r.ItemTitulo,
		ItemURLPDF:         r.ItemURLPDF,
		ItemURLHTML:        r.ItemURLHTML,
		ItemURLXML:         r.ItemURLXML,
		Texto:              r.Texto,
		SzKBytes:           r.SzKBytes,
	}
}

func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

// WriteRecords inserts records in batches. A batch rejected for a duplicate
// item id is skipped with a warning and counted; other errors abort.
func (s *Store) WriteRecords(ctx context.Context, _ time.Time, records []models.FlatRecord) (int, error) {
	skipped := 0
	for start := 0; start < len(records); start += s.batch {
		end := min(start+s.batch, len(records))

		rows := make([]Record, 0, end-start)
		for _, r := range records[start:end] {
			rows = append(rows, NewRecord(r))
		}

		res, err := s.db.NewInsert().Model(&rows).Exec(ctx)
		if IsDuplicate(err) {
			s.logger.Warn().Err(err).Int("batch_start", start).Int("size", len(rows)).Msg("batch with duplicates not inserted")
			skipped += len(rows)
			continue
		}
		if err != nil {
			return skipped, fmt.Errorf("insert records %d-%d: %w", start, end, err)
		}
		n, _ := res.RowsAffected()
		s.logger.Info().Int64("rows", n).Msg("inserted records into boe_metadatos")
	}
	return skipped, nil
}
