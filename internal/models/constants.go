package models

const (
	// SummaryURLTemplate is the BOE open-data summary endpoint, keyed by YYYYMMDD.
	SummaryURLTemplate = "https://www.boe.es/datosabiertos/api/boe/sumario/%s"
	SummaryDateLayout  = "20060102"

	// EpigrafeTexto names items reached through a department's texto wrapper.
	EpigrafeTexto = "Texto"

	// PipeEscape replaces "|" in extracted text, pipe being the tabular field delimiter.
	PipeEscape = "&#124;"

	// ZeroVectorDimension is the all-MiniLM-L6-v2 output size.
	ZeroVectorDimension = 384
)

// Chunking strategy names.
const (
	StrategyGeneric            = "generic"
	StrategyWholeDocument      = "whole_document"
	StrategyIntroPlusEachList  = "intro_plus_each_list"
	StrategyIntroPlusEachTable = "intro_plus_each_table"
	StrategyDefinitionLists    = "definition_lists"
	StrategyBlocksAndTables    = "blocks_and_tables"
)

const (
	AnswerSystemPrompt = `You answer questions about the Spanish Official State Gazette (BOE). Use only the provided excerpts, cite item ids in brackets, and answer in the language of the question. If the excerpts do not contain the answer, say so.`

	AnswerPromptTemplate = `<excerpts>
%s</excerpts>

Question: %s`
)
