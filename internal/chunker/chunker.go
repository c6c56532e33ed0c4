// Package chunker segments item bodies into token-bounded chunks that never
// split a structural block.
package chunker

import (
	"fmt"
	"strings"

	"boe-rag/internal/models"
)

// Chunk labels.
const (
	LabelFull       = "full"
	labelPartFormat = "part-%d"
)

// blockSeparator joins block texts inside a chunk.
const blockSeparator = "\n\n"

type Chunker struct {
	budget   Budget
	selector *Selector
}

func New(counter TokenCounter, maxTokens int, selector *Selector) *Chunker {
	return &Chunker{
		budget:   Budget{Counter: counter, MaxTokens: maxTokens},
		selector: selector,
	}
}

// Chunk groups blocks with the strategy selected for rec. A single chunk is
// labelled full; several are labelled part-1, part-2, ... in document order.
func (c *Chunker) Chunk(rec models.FlatRecord, blocks []models.Block) []models.Chunk {
	name := c.selector.Select(rec)
	strategy, ok := Lookup(name)
	if !ok {
		name, strategy = models.StrategyGeneric, generic
	}

	groups := strategy(blocks, c.budget)
	chunks := make([]models.Chunk, 0, len(groups))
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		texts := make([]string, len(group))
		tokens := 0
		for i, b := range group {
			texts[i] = b.Text
			tokens += c.budget.Counter.Count(b.Text)
		}
		chunks = append(chunks, models.Chunk{
			ItemID:   rec.ItemID,
			Seq:      len(chunks),
			Strategy: name,
			Blocks:   group,
			Text:     strings.Join(texts, blockSeparator),
			Tokens:   tokens,
		})
	}

	for i := range chunks {
		if len(chunks) == 1 {
			chunks[i].Label = LabelFull
		} else {
			chunks[i].Label = fmt.Sprintf(labelPartFormat, i+1)
		}
	}
	return chunks
}
