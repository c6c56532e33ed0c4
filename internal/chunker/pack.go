package chunker

import "boe-rag/internal/models"

// Budget bounds the estimated size of a packed chunk.
type Budget struct {
	Counter   TokenCounter
	MaxTokens int
}

// Pack groups blocks greedily in document order. A group is closed when the
// next block would push it over MaxTokens; a block that alone exceeds
// MaxTokens is always a group of its own. Blocks are never split.
func (b Budget) Pack(blocks []models.Block) [][]models.Block {
	var groups [][]models.Block
	var open []models.Block
	sum := 0

	flush := func() {
		if len(open) > 0 {
			groups = append(groups, open)
			open, sum = nil, 0
		}
	}

	for _, block := range blocks {
		tokens := b.Counter.Count(block.Text)
		if tokens > b.MaxTokens {
			flush()
			groups = append(groups, []models.Block{block})
			continue
		}
		if len(open) > 0 && sum+tokens > b.MaxTokens {
			flush()
		}
		open = append(open, block)
		sum += tokens
	}
	flush()

	return groups
}
