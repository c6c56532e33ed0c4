package models

// BlockKind tags the structural element a block was rendered from.
type BlockKind string

const (
	BlockParagraph      BlockKind = "paragraph"
	BlockTable          BlockKind = "table"
	BlockList           BlockKind = "list"
	BlockDefinitionList BlockKind = "definition_list"
)

// Block is an atomic rendered unit of an item body. Blocks are never split.
type Block struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text"`
	// Nested is set for blocks found inside a wrapper element rather than directly under the body.
	Nested bool `json:"nested,omitempty"`
}

// Chunk is a contiguous run of blocks from one item, handed to embedding as a unit.
type Chunk struct {
	ItemID   string  `json:"item_id"`
	Seq      int     `json:"chunk_seq"`
	Label    string  `json:"label"`
	Strategy string  `json:"strategy"`
	Blocks   []Block `json:"blocks"`
	Text     string  `json:"text"`
	Tokens   int     `json:"tokens"`
}

// ChunkEmbedding pairs a chunk with its vector and the record it came from.
type ChunkEmbedding struct {
	Chunk
	Embedding []float32
	Record    FlatRecord
}

type PromptResponse struct {
	Query   string
	Source  string
	Content string
}

// SearchHit is one nearest-neighbour result from a chunk store.
type SearchHit struct {
	ItemID  string  `json:"item_id"`
	Seq     int     `json:"chunk_seq"`
	Label   string  `json:"label"`
	Titulo  string  `json:"item_titulo"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
	Source  string  `json:"source"`
}

// IsZeroVector reports whether v is the placeholder stored for a failed embedding.
func IsZeroVector(v []float32) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}
