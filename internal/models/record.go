package models

import "strconv"

// FlatRecord is one published item with its classification path flattened out.
// ItemID is the join key for every artifact derived from the item.
type FlatRecord struct {
	FechaPublicacion   string `json:"fecha_publicacion"`
	Publicacion        string `json:"publicacion"`
	DiarioNumero       string `json:"diario_numero"`
	SumarioID          string `json:"sumario_id"`
	SumarioURLPDF      string `json:"sumario_url_pdf"`
	SeccionCodigo      string `json:"seccion_codigo"`
	SeccionNombre      string `json:"seccion_nombre"`
	DepartamentoCodigo string `json:"departamento_codigo"`
	DepartamentoNombre string `json:"departamento_nombre"`
	EpigrafeNombre     string `json:"epigrafe_nombre"`
	ItemID             string `json:"item_id"`
	ItemTitulo         string `json:"item_titulo"`
	ItemURLPDF         string `json:"item_url_pdf"`
	ItemURLHTML        string `json:"item_url_html"`
	ItemURLXML         string `json:"item_url_xml"`
	Texto              string `json:"texto"`
	SzKBytes           int64  `json:"szKBytes"`
}

// RecordColumns is the column order of the tabular output.
var RecordColumns = []string{
	"fecha_publicacion",
	"publicacion",
	"diario_numero",
	"sumario_id",
	"sumario_url_pdf",
	"seccion_codigo",
	"seccion_nombre",
	"departamento_codigo",
	"departamento_nombre",
	"epigrafe_nombre",
	"item_id",
	"item_titulo",
	"item_url_pdf",
	"item_url_html",
	"item_url_xml",
	"texto",
	"szKBytes",
}

// Row renders the record in RecordColumns order.
func (r FlatRecord) Row() []string {
	return []string{
		r.FechaPublicacion,
		r.Publicacion,
		r.DiarioNumero,
		r.SumarioID,
		r.SumarioURLPDF,
		r.SeccionCodigo,
		r.SeccionNombre,
		r.DepartamentoCodigo,
		r.DepartamentoNombre,
		r.EpigrafeNombre,
		r.ItemID,
		r.ItemTitulo,
		r.ItemURLPDF,
		r.ItemURLHTML,
		r.ItemURLXML,
		r.Texto,
		strconv.FormatInt(r.SzKBytes, 10),
	}
}
