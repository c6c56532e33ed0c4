package parser

import (
	"strings"

	"github.com/beevik/etree"

	"boe-rag/internal/models"
)

// Blocks derives the content blocks of an item document in document order.
// A document without a body, or one that fails to parse, yields nil.
func Blocks(data []byte) []models.Block {
	doc, err := ParseXML(data)
	if err != nil {
		return nil
	}
	body := findBody(doc)
	if body == nil {
		return nil
	}
	return blocksOf(body, false)
}

// blocksOf renders the children of parent. Loose text and inline markup between
// block elements become paragraphs of their own; nested marks blocks that sit
// below a wrapper rather than directly under the body.
func blocksOf(parent *etree.Element, nested bool) []models.Block {
	var blocks []models.Block
	add := func(kind models.BlockKind, text string) {
		if text != "" {
			blocks = append(blocks, models.Block{Kind: kind, Text: text, Nested: nested})
		}
	}

	var run strings.Builder
	flush := func() {
		add(models.BlockParagraph, collapseSpace(run.String()))
		run.Reset()
	}

	for _, tok := range parent.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			run.WriteString(t.Data)
		case *etree.Element:
			if inlineTags[strings.ToLower(t.Tag)] {
				writeText(&run, t)
				continue
			}
			flush()
			switch strings.ToLower(t.Tag) {
			case "table":
				add(models.BlockTable, renderTable(t))
			case "ol", "ul":
				add(models.BlockList, renderList(t))
			case "dl":
				add(models.BlockDefinitionList, renderDefinitionList(t))
			default:
				if isContainer(t) {
					blocks = append(blocks, blocksOf(t, true)...)
					continue
				}
				add(models.BlockParagraph, innerText(t))
			}
		}
	}
	flush()
	return blocks
}

// isContainer reports whether el is split into blocks instead of rendered as one
// paragraph: it holds a table or list, or only wraps other block elements.
func isContainer(el *etree.Element) bool {
	for _, child := range el.ChildElements() {
		if blockTags[strings.ToLower(child.Tag)] {
			return true
		}
	}
	return len(el.ChildElements()) > 0 && !hasOwnText(el) && !isInline(el)
}

var blockTags = map[string]bool{"table": true, "ol": true, "ul": true, "dl": true}

// isInline reports whether el only wraps inline markup, so it renders as one paragraph.
func isInline(el *etree.Element) bool {
	for _, child := range el.ChildElements() {
		if !inlineTags[strings.ToLower(child.Tag)] {
			return false
		}
	}
	return true
}

func hasOwnText(el *etree.Element) bool {
	for _, tok := range el.Child {
		if cd, ok := tok.(*etree.CharData); ok && strings.TrimSpace(cd.Data) != "" {
			return true
		}
	}
	return false
}

var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "em": true, "i": true,
	"span": true, "strong": true, "sub": true, "sup": true, "u": true,
}

func renderTable(table *etree.Element) string {
	var lines []string
	for _, row := range descendants(table, "tr") {
		var cells []string
		for _, cell := range row.ChildElements() {
			switch strings.ToLower(cell.Tag) {
			case "td", "th":
				cells = append(cells, innerText(cell))
			}
		}
		if strings.TrimSpace(strings.Join(cells, "")) == "" {
			continue
		}
		lines = append(lines, strings.Join(cells, " | "))
	}
	return strings.Join(lines, "\n")
}

func descendants(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if strings.ToLower(child.Tag) == tag {
			out = append(out, child)
			continue
		}
		out = append(out, descendants(child, tag)...)
	}
	return out
}

func renderList(list *etree.Element) string {
	var lines []string
	for _, li := range list.ChildElements() {
		if strings.ToLower(li.Tag) != "li" {
			continue
		}
		if t := innerText(li); t != "" {
			lines = append(lines, "- "+t)
		}
	}
	return strings.Join(lines, "\n")
}

func renderDefinitionList(dl *etree.Element) string {
	var lines []string
	afterTerm := false
	for _, el := range dl.ChildElements() {
		switch strings.ToLower(el.Tag) {
		case "dt":
			lines = append(lines, "**"+innerText(el)+"**")
			afterTerm = true
		case "dd":
			if afterTerm {
				lines = append(lines, ": "+innerText(el))
			}
			afterTerm = false
		default:
			afterTerm = false
		}
	}
	return strings.Join(lines, "\n")
}

// innerText flattens all character data below el into one whitespace-normalised line.
func innerText(el *etree.Element) string {
	var sb strings.Builder
	writeText(&sb, el)
	return collapseSpace(sb.String())
}

// writeText appends the character data below el, separating block-level children by a space.
func writeText(sb *strings.Builder, el *etree.Element) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			if inlineTags[strings.ToLower(t.Tag)] {
				writeText(sb, t)
				continue
			}
			sb.WriteByte(' ')
			writeText(sb, t)
			sb.WriteByte(' ')
		}
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
