package summary

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"boe-rag/internal/models"
)

func loadFixture(t *testing.T) []byte {
	t.Helper()
	doc, err := os.ReadFile("testdata/sumario_20250417.json")
	require.NoError(t, err)
	return doc
}

func TestNormalize_Fixture(t *testing.T) {
	records := Normalize(loadFixture(t))

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ItemID
	}
	assert.Equal(t, []string{
		"BOE-A-2025-7001",
		"BOE-A-2025-7002",
		"BOE-A-2025-7003",
		"BOE-A-2025-7004",
		"BOE-B-2025-1001",
		"BOE-B-2025-1002",
	}, ids)

	first := records[0]
	assert.Equal(t, "20250417", first.FechaPublicacion)
	assert.Equal(t, "BOE", first.Publicacion)
	assert.Equal(t, "93", first.DiarioNumero)
	assert.Equal(t, "BOE-S-2025-93", first.SumarioID)
	assert.Equal(t, "https://www.boe.es/boe/dias/2025/04/17/pdfs/BOE-S-2025-93.pdf", first.SumarioURLPDF)
	assert.Equal(t, "1", first.SeccionCodigo)
	assert.Equal(t, "7723", first.DepartamentoCodigo)
	assert.Equal(t, "Acuerdos internacionales", first.EpigrafeNombre)
	assert.Equal(t, "https://www.boe.es/boe/dias/2025/04/17/pdfs/BOE-A-2025-7001.pdf", first.ItemURLPDF)
	assert.Equal(t, int64(176), first.SzKBytes)

	// string url_pdf carries no size
	assert.Equal(t, "https://www.boe.es/boe/dias/2025/04/17/pdfs/BOE-A-2025-7002.pdf", records[1].ItemURLPDF)
	assert.Zero(t, records[1].SzKBytes)
}

func TestNormalize_EpigrafeAttribution(t *testing.T) {
	byID := map[string]models.FlatRecord{}
	for _, r := range Normalize(loadFixture(t)) {
		byID[r.ItemID] = r
	}

	assert.Equal(t, models.EpigrafeTexto, byID["BOE-A-2025-7003"].EpigrafeNombre, "texto wrapper")
	assert.Equal(t, "", byID["BOE-A-2025-7004"].EpigrafeNombre, "bare department item")
	assert.Equal(t, "Licitaciones", byID["BOE-B-2025-1001"].EpigrafeNombre)
	assert.Equal(t, "", byID["BOE-B-2025-1002"].EpigrafeNombre)
}

func TestNormalize_WrapperDepartmentsBeforeDirect(t *testing.T) {
	var depts []string
	for _, r := range Normalize(loadFixture(t)) {
		if r.SeccionCodigo == "5A" {
			depts = append(depts, r.DepartamentoCodigo)
		}
	}
	assert.Equal(t, []string{"6110", "6120"}, depts)
}

func TestNormalize_MissingOptionalFieldsAreEmpty(t *testing.T) {
	doc := []byte(`{"data":{"sumario":{"diario":{"seccion":{"departamento":{"item":{"identificador":"X"}}}}}}}`)
	records := Normalize(doc)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "X", r.ItemID)
	for i, v := range r.Row() {
		if models.RecordColumns[i] == "item_id" || models.RecordColumns[i] == "szKBytes" {
			continue
		}
		assert.Equal(t, "", v, models.RecordColumns[i])
	}
}

func TestNormalize_NothingPublished(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "no data", doc: `{"status":{"code":"404"}}`},
		{name: "no sumario", doc: `{"data":{}}`},
		{name: "sumario not an object", doc: `{"data":{"sumario":"none"}}`},
		{name: "not json", doc: `<html>404</html>`},
		{name: "empty", doc: ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := Normalize([]byte(tt.doc))
			assert.NotNil(t, records)
			assert.Empty(t, records)
		})
	}
}

func TestNormalize_SingleObjectEqualsSingleElementList(t *testing.T) {
	single := []byte(`{"data":{"sumario":{"diario":[{"numero":"1","seccion":[{"codigo":"2A",
		"departamento":{"codigo":"10","nombre":"D","epigrafe":{"nombre":"E","item":{"identificador":"A-1"}}}}]}]}}}`)
	list := []byte(`{"data":{"sumario":{"diario":[{"numero":"1","seccion":[{"codigo":"2A",
		"departamento":[{"codigo":"10","nombre":"D","epigrafe":[{"nombre":"E","item":[{"identificador":"A-1"}]}]}]}]}]}}}`)

	assert.Equal(t, Normalize(list), Normalize(single))
	assert.Len(t, Normalize(single), 1)
}

func TestNormalize_CountMatchesReachableItems(t *testing.T) {
	doc := loadFixture(t)

	// count items independently through every traversal path
	count := 0
	for _, diario := range sequence(gjson.GetBytes(doc, "data.sumario.diario")) {
		for _, seccion := range sequence(diario.Get("seccion")) {
			for _, container := range departmentContainers {
				for _, dept := range sequence(seccion.Get(container)) {
					count += len(sequence(dept.Get("texto.item")))
					count += len(sequence(dept.Get("item")))
					for _, epi := range sequence(dept.Get("epigrafe")) {
						count += len(sequence(epi.Get("item")))
					}
				}
			}
		}
	}

	assert.Equal(t, count, len(Normalize(doc)))
}

func TestNormalize_Idempotent(t *testing.T) {
	doc := loadFixture(t)
	assert.Equal(t, Normalize(doc), Normalize(doc))
}

func TestReference(t *testing.T) {
	assert.Equal(t, "a", reference(gjson.Parse(`"a"`)))
	assert.Equal(t, "b", reference(gjson.Parse(`{"texto":"b"}`)))
	assert.Equal(t, "c", reference(gjson.Parse(`{"url":"c"}`)))
	assert.Equal(t, "", reference(gjson.Parse(`null`)))
	assert.Equal(t, "", reference(gjson.Parse(`[1]`)))
}
