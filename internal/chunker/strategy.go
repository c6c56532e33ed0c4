package chunker

import "boe-rag/internal/models"

// Strategy groups an item's blocks into chunks. Groups must cover every block
// exactly once, in order.
type Strategy func(blocks []models.Block, budget Budget) [][]models.Block

var strategies = map[string]Strategy{
	models.StrategyGeneric:            generic,
	models.StrategyWholeDocument:      wholeDocument,
	models.StrategyIntroPlusEachList:  introPlusEach(models.BlockList),
	models.StrategyIntroPlusEachTable: introPlusEach(models.BlockTable),
	models.StrategyDefinitionLists:    isolate(topLevel(models.BlockDefinitionList)),
	models.StrategyBlocksAndTables:    isolate(ofKind(models.BlockTable)),
}

// Lookup returns the strategy registered under name.
func Lookup(name string) (Strategy, bool) {
	s, ok := strategies[name]
	return s, ok
}

func generic(blocks []models.Block, budget Budget) [][]models.Block {
	return budget.Pack(blocks)
}

func wholeDocument(blocks []models.Block, _ Budget) [][]models.Block {
	if len(blocks) == 0 {
		return nil
	}
	return [][]models.Block{blocks}
}

// introPlusEach emits the blocks before the first kind block as one chunk,
// then one chunk per kind block running up to the next one.
func introPlusEach(kind models.BlockKind) Strategy {
	return func(blocks []models.Block, _ Budget) [][]models.Block {
		var groups [][]models.Block
		start := 0
		for i, block := range blocks {
			if block.Kind == kind && i > start {
				groups = append(groups, blocks[start:i])
				start = i
			}
		}
		if start < len(blocks) {
			groups = append(groups, blocks[start:])
		}
		return groups
	}
}

func ofKind(kind models.BlockKind) func(models.Block) bool {
	return func(b models.Block) bool { return b.Kind == kind }
}

// topLevel matches kind blocks sitting directly under the body.
func topLevel(kind models.BlockKind) func(models.Block) bool {
	return func(b models.Block) bool { return b.Kind == kind && !b.Nested }
}

// isolate emits every matching block as a chunk of its own regardless of budget
// and packs the runs of other blocks between them.
func isolate(match func(models.Block) bool) Strategy {
	return func(blocks []models.Block, budget Budget) [][]models.Block {
		var groups [][]models.Block
		start := 0
		for i, block := range blocks {
			if !match(block) {
				continue
			}
			groups = append(groups, budget.Pack(blocks[start:i])...)
			groups = append(groups, blocks[i:i+1])
			start = i + 1
		}
		return append(groups, budget.Pack(blocks[start:])...)
	}
}
