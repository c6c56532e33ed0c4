package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"boe-rag/internal/models"
)

// Body sources.
const (
	SourceNone = ""
	SourceXML  = "xml"
	SourcePDF  = "pdf"
)

// Fetcher is the slice of fetch.Fetcher the extractor needs.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Body is what an item's published documents yielded.
type Body struct {
	XML    []byte
	Text   string
	Blocks []models.Block
	Source string
}

type Extractor struct {
	fetcher     Fetcher
	logger      zerolog.Logger
	pdfFallback bool
}

func NewExtractor(f Fetcher, logger zerolog.Logger, pdfFallback bool) *Extractor {
	return &Extractor{
		fetcher:     f,
		logger:      logger.With().Str("component", "extractor").Logger(),
		pdfFallback: pdfFallback,
	}
}

// Parse fetches the XML document at url and returns its body text.
// A failed fetch is logged and yields "".
func (e *Extractor) Parse(ctx context.Context, url string) string {
	data, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		e.logger.Warn().Err(err).Str("url", url).Msg("xml fetch failed")
		return ""
	}
	return ExtractText(data)
}

// Extract fetches and parses the body of rec. When the XML yields no text and
// the record has a PDF, the PDF text is used instead, one paragraph per page.
//
// The returned error reports a failed XML fetch; the Body is usable either way
// and is empty when nothing could be read.
func (e *Extractor) Extract(ctx context.Context, rec models.FlatRecord) (Body, error) {
	var body Body
	var fetchErr error

	if rec.ItemURLXML != "" {
		data, err := e.fetcher.Fetch(ctx, rec.ItemURLXML)
		if err != nil {
			fetchErr = fmt.Errorf("fetching xml for %s: %w", rec.ItemID, err)
		} else {
			body.XML = data
			body.Text = ExtractText(data)
			if body.Text != "" {
				body.Blocks = Blocks(data)
				body.Source = SourceXML
				return body, nil
			}
		}
	}

	if !e.pdfFallback || rec.ItemURLPDF == "" || ctx.Err() != nil {
		return body, fetchErr
	}

	pages, err := e.pdfPages(ctx, rec.ItemURLPDF)
	if err != nil {
		e.logger.Warn().Err(err).Str("item_id", rec.ItemID).Msg("pdf fallback failed")
		return body, fetchErr
	}

	var texts []string
	for _, p := range pages {
		if p == "" {
			continue
		}
		texts = append(texts, p)
		body.Blocks = append(body.Blocks, models.Block{Kind: models.BlockParagraph, Text: p})
	}
	if len(texts) > 0 {
		body.Text = strings.Join(texts, " ")
		body.Source = SourcePDF
	}
	return body, fetchErr
}

func (e *Extractor) pdfPages(ctx context.Context, url string) ([]string, error) {
	data, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return PDFPages(data)
}
