package parser

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boe-rag/internal/models"
)

type mapFetcher struct {
	bodies map[string][]byte
	calls  []string
}

func (m *mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	m.calls = append(m.calls, url)
	body, ok := m.bodies[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return body, nil
}

func TestExtractor_Parse(t *testing.T) {
	f := &mapFetcher{bodies: map[string][]byte{"http://x/1.xml": []byte(itemXML)}}
	e := NewExtractor(f, zerolog.Nop(), false)

	assert.Equal(t, "Primero Segundo A&#124;B c1 c2", e.Parse(context.Background(), "http://x/1.xml"))
	assert.Equal(t, "", e.Parse(context.Background(), "http://x/missing.xml"))
}

func TestExtractor_ExtractXML(t *testing.T) {
	f := &mapFetcher{bodies: map[string][]byte{"http://x/1.xml": []byte(itemXML)}}
	e := NewExtractor(f, zerolog.Nop(), true)

	body, err := e.Extract(context.Background(), models.FlatRecord{
		ItemID:     "BOE-A-2025-7001",
		ItemURLXML: "http://x/1.xml",
		ItemURLPDF: "http://x/1.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, SourceXML, body.Source)
	assert.Equal(t, []byte(itemXML), body.XML)
	assert.NotEmpty(t, body.Blocks)
	assert.Equal(t, []string{"http://x/1.xml"}, f.calls, "pdf not requested when xml has text")
}

func TestExtractor_FetchFailureDegrades(t *testing.T) {
	f := &mapFetcher{bodies: map[string][]byte{"http://x/1.pdf": []byte("not a pdf")}}
	e := NewExtractor(f, zerolog.Nop(), true)

	body, err := e.Extract(context.Background(), models.FlatRecord{
		ItemID:     "BOE-A-2025-7001",
		ItemURLXML: "http://x/1.xml",
		ItemURLPDF: "http://x/1.pdf",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOE-A-2025-7001")
	assert.Equal(t, SourceNone, body.Source)
	assert.Empty(t, body.Text)
	assert.Empty(t, body.Blocks)
	assert.Equal(t, []string{"http://x/1.xml", "http://x/1.pdf"}, f.calls)
}

func TestExtractor_NoFallbackWhenDisabled(t *testing.T) {
	f := &mapFetcher{bodies: map[string][]byte{"http://x/1.xml": []byte(`<documento/>`)}}
	e := NewExtractor(f, zerolog.Nop(), false)

	body, err := e.Extract(context.Background(), models.FlatRecord{
		ItemURLXML: "http://x/1.xml",
		ItemURLPDF: "http://x/1.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, SourceNone, body.Source)
	assert.Equal(t, []string{"http://x/1.xml"}, f.calls)
}

func TestPDFPages_Invalid(t *testing.T) {
	_, err := PDFPages([]byte("%PDF-garbage"))
	assert.Error(t, err)
}

func TestPDFPages(t *testing.T) {
	data, err := os.ReadFile("testdata/anuncio.pdf")
	require.NoError(t, err)

	pages, err := PDFPages(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Anexo A&#124;B", "", "Fin del anuncio"}, pages)
}

func TestExtractor_PDFFallback(t *testing.T) {
	pdf, err := os.ReadFile("testdata/anuncio.pdf")
	require.NoError(t, err)
	f := &mapFetcher{bodies: map[string][]byte{
		"http://x/1.xml": []byte(`<documento><texto>  </texto></documento>`),
		"http://x/1.pdf": pdf,
	}}
	e := NewExtractor(f, zerolog.Nop(), true)

	body, err := e.Extract(context.Background(), models.FlatRecord{
		ItemID:     "BOE-B-2025-12001",
		ItemURLXML: "http://x/1.xml",
		ItemURLPDF: "http://x/1.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, SourcePDF, body.Source)
	assert.Equal(t, "Anexo A&#124;B Fin del anuncio", body.Text)
	assert.Equal(t, []models.Block{
		{Kind: models.BlockParagraph, Text: "Anexo A&#124;B"},
		{Kind: models.BlockParagraph, Text: "Fin del anuncio"},
	}, body.Blocks)
	assert.Equal(t, []string{"http://x/1.xml", "http://x/1.pdf"}, f.calls)
}
