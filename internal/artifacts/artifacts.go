// Package artifacts writes a run's intermediate and output files under one directory.
package artifacts

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"boe-rag/internal/config"
	"boe-rag/internal/models"
)

// Subdirectories of the artifacts root.
const (
	dirJSON   = "json"
	dirXML    = "xml"
	dirChunks = "chunks"
	dirCSV    = "csv"
	dirXLSX   = "xlsx"
)

// DataFileName is the base name shared by the per-date outputs.
func DataFileName(date time.Time, ext string) string {
	return "boe_data_" + date.Format(models.SummaryDateLayout) + ext
}

// Store writes artifacts below its root directory.
type Store struct {
	cfg    config.ArtifactsConfig
	md     goldmark.Markdown
	logger zerolog.Logger
}

func New(cfg config.ArtifactsConfig, logger zerolog.Logger) *Store {
	return &Store{
		cfg: cfg,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		logger: logger.With().Str("component", "artifacts").Logger(),
	}
}

func (s *Store) path(dir, name string) string {
	return filepath.Join(s.cfg.Dir, dir, name)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// safeName keeps item ids usable as file names.
func safeName(id string) string {
	if id == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, id)
}

// SaveSummary stores the raw summary document for date.
func (s *Store) SaveSummary(date time.Time, raw []byte) (string, error) {
	p := s.path(dirJSON, DataFileName(date, ".json"))
	if err := writeFile(p, raw); err != nil {
		return "", fmt.Errorf("save summary: %w", err)
	}
	return p, nil
}

// SaveXML stores an item's XML body when enabled.
func (s *Store) SaveXML(itemID string, data []byte) error {
	if !s.cfg.SaveXML || len(data) == 0 {
		return nil
	}
	if err := writeFile(s.path(dirXML, safeName(itemID)+".xml"), data); err != nil {
		return fmt.Errorf("save xml for %s: %w", itemID, err)
	}
	return nil
}

// SaveChunks writes an item's chunks as markdown, and as HTML when enabled.
func (s *Store) SaveChunks(rec models.FlatRecord, chunks []models.Chunk) error {
	if !s.cfg.SaveChunks || len(chunks) == 0 {
		return nil
	}

	md := ChunkMarkdown(rec, chunks)
	base := safeName(rec.ItemID)
	if err := writeFile(s.path(dirChunks, base+".md"), md); err != nil {
		return fmt.Errorf("save chunks for %s: %w", rec.ItemID, err)
	}
	if !s.cfg.RenderHTML {
		return nil
	}

	var buf bytes.Buffer
	if err := s.md.Convert(md, &buf); err != nil {
		return fmt.Errorf("render chunks for %s: %w", rec.ItemID, err)
	}
	if err := writeFile(s.path(dirChunks, base+".html"), buf.Bytes()); err != nil {
		return fmt.Errorf("save chunks html for %s: %w", rec.ItemID, err)
	}
	return nil
}

// ChunkMarkdown renders an item header followed by one section per chunk.
func ChunkMarkdown(rec models.FlatRecord, chunks []models.Chunk) []byte {
	var b strings.Builder
	title := rec.ItemTitulo
	if title == "" {
		title = rec.ItemID
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- item_id: %s\n", rec.ItemID)
	fmt.Fprintf(&b, "- fecha: %s\n", rec.FechaPublicacion)
	fmt.Fprintf(&b, "- seccion: %s %s\n", rec.SeccionCodigo, rec.SeccionNombre)
	fmt.Fprintf(&b, "- departamento: %s\n", rec.DepartamentoNombre)
	if rec.EpigrafeNombre != "" {
		fmt.Fprintf(&b, "- epigrafe: %s\n", rec.EpigrafeNombre)
	}
	if rec.ItemURLHTML != "" {
		fmt.Fprintf(&b, "- url: %s\n", rec.ItemURLHTML)
	}

	for _, c := range chunks {
		fmt.Fprintf(&b, "\n## %s (%s, ~%d tokens)\n\n%s\n", c.Label, c.Strategy, c.Tokens, c.Text)
	}
	return []byte(b.String())
}
