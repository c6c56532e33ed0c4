package chunker

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boe-rag/internal/models"
)

// wordTokens counts one token per word, so block sizes are readable in tests.
type wordTokens struct{}

func (wordTokens) Count(text string) int { return len(strings.Fields(text)) }

func para(words int) models.Block {
	return models.Block{Kind: models.BlockParagraph, Text: strings.TrimSpace(strings.Repeat("w ", words))}
}

func block(kind models.BlockKind, words int) models.Block {
	b := para(words)
	b.Kind = kind
	return b
}

func newChunker(t *testing.T, maxTokens int) *Chunker {
	t.Helper()
	sel, err := NewSelector(nil)
	require.NoError(t, err)
	return New(wordTokens{}, maxTokens, sel)
}

func TestPack_OversizedBlockStandsAlone(t *testing.T) {
	c := newChunker(t, 500)
	chunks := c.Chunk(models.FlatRecord{ItemID: "BOE-A-1", SeccionCodigo: "1"}, []models.Block{para(50), para(2000)})

	require.Len(t, chunks, 2)
	assert.Equal(t, []models.Block{para(50)}, chunks[0].Blocks)
	assert.Equal(t, []models.Block{para(2000)}, chunks[1].Blocks)
	assert.Equal(t, 50, chunks[0].Tokens)
	assert.Equal(t, 2000, chunks[1].Tokens)
	assert.Equal(t, "part-1", chunks[0].Label)
	assert.Equal(t, "part-2", chunks[1].Label)
	assert.Equal(t, 0, chunks[0].Seq)
	assert.Equal(t, 1, chunks[1].Seq)
	assert.Equal(t, models.StrategyGeneric, chunks[0].Strategy)
}

func TestPack_OversizedClosesOpenChunk(t *testing.T) {
	b := Budget{Counter: wordTokens{}, MaxTokens: 10}
	groups := b.Pack([]models.Block{para(3), para(4), para(11), para(2)})

	assert.Equal(t, [][]models.Block{
		{para(3), para(4)},
		{para(11)},
		{para(2)},
	}, groups)
}

func TestPack_ExactBudgetFits(t *testing.T) {
	b := Budget{Counter: wordTokens{}, MaxTokens: 10}
	groups := b.Pack([]models.Block{para(4), para(6), para(1)})
	assert.Equal(t, [][]models.Block{{para(4), para(6)}, {para(1)}}, groups)
}

func TestPack_Empty(t *testing.T) {
	b := Budget{Counter: wordTokens{}, MaxTokens: 10}
	assert.Empty(t, b.Pack(nil))
}

func flatten(groups [][]models.Block) []models.Block {
	var out []models.Block
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func randomBlocks(r *rand.Rand) []models.Block {
	kinds := []models.BlockKind{models.BlockParagraph, models.BlockTable, models.BlockList, models.BlockDefinitionList}
	blocks := make([]models.Block, r.Intn(40))
	for i := range blocks {
		blocks[i] = block(kinds[r.Intn(len(kinds))], 1+r.Intn(120))
	}
	return blocks
}

func TestStrategies_CoverEveryBlockInOrder(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for name, strategy := range strategies {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				blocks := randomBlocks(r)
				budget := Budget{Counter: wordTokens{}, MaxTokens: 1 + r.Intn(300)}
				groups := strategy(blocks, budget)

				assert.Equal(t, len(blocks), len(flatten(groups)))
				if len(blocks) > 0 {
					assert.Equal(t, blocks, flatten(groups))
				}
				for _, g := range groups {
					assert.NotEmpty(t, g)
				}
			}
		})
	}
}

func TestPack_BudgetRespected(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		blocks := randomBlocks(r)
		budget := Budget{Counter: wordTokens{}, MaxTokens: 1 + r.Intn(300)}
		for _, g := range budget.Pack(blocks) {
			sum := 0
			for _, b := range g {
				n := budget.Counter.Count(b.Text)
				if n > budget.MaxTokens {
					assert.Len(t, g, 1, "oversized block must be alone")
				}
				sum += n
			}
			if len(g) > 1 {
				assert.LessOrEqual(t, sum, budget.MaxTokens)
			}
		}
	}
}

func TestStrategy_DefinitionLists(t *testing.T) {
	dl := func(n int) models.Block { return block(models.BlockDefinitionList, n) }
	s, ok := Lookup(models.StrategyDefinitionLists)
	require.True(t, ok)

	budget := Budget{Counter: wordTokens{}, MaxTokens: 10}
	groups := s([]models.Block{para(2), para(3), dl(50), dl(1), para(4)}, budget)
	assert.Equal(t, [][]models.Block{
		{para(2), para(3)},
		{dl(50)},
		{dl(1)},
		{para(4)},
	}, groups)

	// no definition list behaves like generic packing
	plain := []models.Block{para(6), para(6), para(6)}
	assert.Equal(t, budget.Pack(plain), s(plain, budget))

	// a list wrapped in another element is packed like any other block
	wrapped := dl(2)
	wrapped.Nested = true
	assert.Equal(t, [][]models.Block{{para(2), wrapped, para(3)}}, s([]models.Block{para(2), wrapped, para(3)}, budget))
}

func TestStrategy_BlocksAndTables(t *testing.T) {
	table := func(n int) models.Block { return block(models.BlockTable, n) }
	s, _ := Lookup(models.StrategyBlocksAndTables)

	groups := s([]models.Block{table(1), para(2), para(2), table(3)}, Budget{Counter: wordTokens{}, MaxTokens: 100})
	assert.Equal(t, [][]models.Block{
		{table(1)},
		{para(2), para(2)},
		{table(3)},
	}, groups)
}

func TestStrategy_IntroPlusEachList(t *testing.T) {
	list := func(n int) models.Block { return block(models.BlockList, n) }
	s, _ := Lookup(models.StrategyIntroPlusEachList)
	budget := Budget{Counter: wordTokens{}, MaxTokens: 1}

	assert.Equal(t, [][]models.Block{
		{para(1), para(2)},
		{list(3), para(4)},
		{list(5)},
	}, s([]models.Block{para(1), para(2), list(3), para(4), list(5)}, budget))

	// leading list: no intro chunk
	assert.Equal(t, [][]models.Block{{list(1), para(1)}}, s([]models.Block{list(1), para(1)}, budget))
}

func TestStrategy_WholeDocument(t *testing.T) {
	s, _ := Lookup(models.StrategyWholeDocument)
	blocks := []models.Block{para(400), para(400)}
	assert.Equal(t, [][]models.Block{blocks}, s(blocks, Budget{Counter: wordTokens{}, MaxTokens: 10}))
	assert.Empty(t, s(nil, Budget{}))
}

func TestChunk_Labels(t *testing.T) {
	c := newChunker(t, 500)
	rec := models.FlatRecord{ItemID: "BOE-A-2", SeccionCodigo: "1"}

	chunks := c.Chunk(rec, []models.Block{para(10), para(10)})
	require.Len(t, chunks, 1)
	assert.Equal(t, LabelFull, chunks[0].Label)
	assert.Equal(t, "BOE-A-2", chunks[0].ItemID)
	assert.Equal(t, para(10).Text+"\n\n"+para(10).Text, chunks[0].Text)

	assert.Empty(t, c.Chunk(rec, nil))
}

func TestChunk_UsesSelectedStrategy(t *testing.T) {
	c := newChunker(t, 5)
	rec := models.FlatRecord{ItemID: "BOE-A-3", SeccionCodigo: "5C"}

	chunks := c.Chunk(rec, []models.Block{para(10), para(10)})
	require.Len(t, chunks, 1)
	assert.Equal(t, models.StrategyWholeDocument, chunks[0].Strategy)
}

func TestChunk_Idempotent(t *testing.T) {
	c := newChunker(t, 50)
	rec := models.FlatRecord{ItemID: "BOE-B-1", SeccionCodigo: "5A"}
	blocks := randomBlocks(rand.New(rand.NewSource(3)))

	assert.Equal(t, c.Chunk(rec, blocks), c.Chunk(rec, blocks))
}

func TestWordCounter(t *testing.T) {
	var c WordCounter
	assert.Equal(t, 0, c.Count(""))
	assert.Equal(t, 4, c.Count("uno dos tres"))
	assert.Equal(t, 2, c.Count("uno"))
}

func TestNewTokenCounter_EmptyEncoding(t *testing.T) {
	assert.IsType(t, WordCounter{}, NewTokenCounter("", zerolog.Nop()))
	assert.IsType(t, WordCounter{}, NewTokenCounter("no-such-encoding", zerolog.Nop()))
}
