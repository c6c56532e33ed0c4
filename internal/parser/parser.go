// Package parser turns item bodies into text and structural blocks.
package parser

import (
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	"boe-rag/internal/models"
)

// bodyTag is the element holding an item's body, wherever it sits in the tree.
const bodyTag = "texto"

// ParseXML reads an item document, honouring a non-UTF-8 charset declared in its prolog.
func ParseXML(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	return doc, nil
}

// findBody returns the first texto element anywhere in the document, or nil.
func findBody(doc *etree.Document) *etree.Element {
	return firstDescendant(&doc.Element, bodyTag)
}

// firstDescendant searches depth-first, in document order, for an element named tag.
func firstDescendant(el *etree.Element, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return child
		}
		if found := firstDescendant(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// ExtractText returns the body text of an item document: the direct text of
// every element below texto, trimmed and joined with single spaces, with pipes
// escaped. Documents without a body, or that fail to parse, yield "".
func ExtractText(data []byte) string {
	doc, err := ParseXML(data)
	if err != nil {
		return ""
	}
	body := findBody(doc)
	if body == nil {
		return ""
	}

	var fragments []string
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, child := range el.ChildElements() {
			if t := strings.TrimSpace(child.Text()); t != "" {
				fragments = append(fragments, t)
			}
			walk(child)
		}
	}
	walk(body)

	return EscapePipes(strings.Join(fragments, " "))
}

// EscapePipes replaces the tabular field delimiter with its character reference.
func EscapePipes(s string) string {
	return strings.ReplaceAll(s, "|", models.PipeEscape)
}
