// Package summary retrieves the daily BOE summary and flattens it into one
// record per published item.
//
// The summary nests diario > seccion > departamento > epigrafe > item, and any
// of those collections may arrive either as a JSON array or as a single
// object. Every collection access goes through sequence, and the places items
// can hang from are listed once in departmentContainers and itemSources.
package summary

import (
	"github.com/tidwall/gjson"

	"boe-rag/internal/models"
)

// departmentContainers are the section-relative paths holding departments, in emission order.
var departmentContainers = []string{
	"texto.departamento",
	"departamento",
}

// itemSource describes one place items are attached to a department.
type itemSource struct {
	// epigrafes is the collection of intermediate epigrafes; empty when items hang off the department.
	epigrafes string
	items     string
	epigrafe  func(parent gjson.Result) string
}

var itemSources = []itemSource{
	{items: "texto.item", epigrafe: fixedName(models.EpigrafeTexto)},
	{epigrafes: "epigrafe", items: "item", epigrafe: func(e gjson.Result) string { return scalar(e.Get("nombre")) }},
	{items: "item", epigrafe: fixedName("")},
}

func fixedName(name string) func(gjson.Result) string {
	return func(gjson.Result) string { return name }
}

// Normalize flattens a raw summary document. It never fails: a document without
// data.sumario, or one that is not JSON at all, yields no records.
func Normalize(doc []byte) []models.FlatRecord {
	records := []models.FlatRecord{}
	Walk(doc, func(r models.FlatRecord) {
		records = append(records, r)
	})
	return records
}

// Walk calls emit once per item in document order.
func Walk(doc []byte, emit func(models.FlatRecord)) {
	if !gjson.ValidBytes(doc) {
		return
	}
	sumario := gjson.GetBytes(doc, "data.sumario")
	if !sumario.IsObject() {
		return
	}

	meta := sumario.Get("metadatos")
	base := models.FlatRecord{
		FechaPublicacion: scalar(meta.Get("fecha_publicacion")),
		Publicacion:      scalar(meta.Get("publicacion")),
	}

	for _, diario := range sequence(sumario.Get("diario")) {
		d := base
		d.DiarioNumero = scalar(diario.Get("numero"))
		sd := diario.Get("sumario_diario")
		d.SumarioID = scalar(sd.Get("identificador"))
		d.SumarioURLPDF = reference(sd.Get("url_pdf"))

		for _, seccion := range sequence(diario.Get("seccion")) {
			s := d
			s.SeccionCodigo = scalar(seccion.Get("codigo"))
			s.SeccionNombre = scalar(seccion.Get("nombre"))

			for _, container := range departmentContainers {
				for _, dept := range sequence(seccion.Get(container)) {
					dp := s
					dp.DepartamentoCodigo = scalar(dept.Get("codigo"))
					dp.DepartamentoNombre = scalar(dept.Get("nombre"))

					for _, src := range itemSources {
						src.walk(dept, dp, emit)
					}
				}
			}
		}
	}
}

func (s itemSource) walk(dept gjson.Result, rec models.FlatRecord, emit func(models.FlatRecord)) {
	parents := []gjson.Result{dept}
	if s.epigrafes != "" {
		parents = sequence(dept.Get(s.epigrafes))
	}
	for _, parent := range parents {
		rec.EpigrafeNombre = s.epigrafe(parent)
		for _, item := range sequence(parent.Get(s.items)) {
			emit(itemRecord(rec, item))
		}
	}
}

func itemRecord(rec models.FlatRecord, item gjson.Result) models.FlatRecord {
	rec.ItemID = scalar(item.Get("identificador"))
	rec.ItemTitulo = scalar(item.Get("titulo"))
	pdf := item.Get("url_pdf")
	rec.ItemURLPDF = reference(pdf)
	if pdf.IsObject() {
		rec.SzKBytes = pdf.Get("szKBytes").Int()
	}
	rec.ItemURLHTML = reference(item.Get("url_html"))
	rec.ItemURLXML = reference(item.Get("url_xml"))
	return rec
}
