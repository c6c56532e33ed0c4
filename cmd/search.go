package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"boe-rag/internal/helper"
	"boe-rag/internal/llmservice"
	"boe-rag/internal/rag"
)

var (
	flagQuery  string
	flagLimit  int
	flagStore  string
	flagAnswer bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find the chunks nearest to a query",
	Example: `  boe-rag search --query "becas de formación del profesorado"
  boe-rag search --query "licitaciones de defensa" --store chromem --answer`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&flagQuery, "query", "", "Query text")
	searchCmd.Flags().IntVar(&flagLimit, "limit", 5, "Number of chunks to return")
	searchCmd.Flags().StringVar(&flagStore, "store", "postgres", "Store to search: postgres, chromem or qdrant")
	searchCmd.Flags().BoolVar(&flagAnswer, "answer", false, "Answer the query from the retrieved chunks with the answer model")
	_ = searchCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := log.Logger

	switch flagStore {
	case "postgres":
		cfg.Database.Enabled = true
		cfg.Chromem.Enabled, cfg.Qdrant.Enabled = false, false
	case "chromem":
		cfg.Chromem.Enabled = true
		cfg.Database.Enabled, cfg.Qdrant.Enabled = false, false
	case "qdrant":
		cfg.Qdrant.Enabled = true
		cfg.Database.Enabled, cfg.Chromem.Enabled = false, false
	default:
		return fmt.Errorf("unknown store %q", flagStore)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	embedder, err := newEmbedder(cfg, logger)
	if err != nil {
		return err
	}
	pg, chroma, qd, closer, err := openStores(ctx, cfg, logger)
	defer closer.Close()
	if err != nil {
		return err
	}

	var searcher rag.Searcher
	switch {
	case pg != nil:
		searcher = pg
	case chroma != nil:
		searcher = chroma
	default:
		searcher = qd
	}

	var r *rag.RAG
	if flagAnswer {
		model, err := cfg.AnswerModel()
		if err != nil {
			return err
		}
		llm, err := llmservice.New(model)
		if err != nil {
			return fmt.Errorf("answer model: %w", err)
		}
		r = rag.NewRAG(searcher, embedder, llm)
	} else {
		r = rag.NewRAG(searcher, embedder, nil)
	}

	hits, err := r.Search(ctx, flagQuery, flagLimit)
	if err != nil {
		return err
	}
	if !flagAnswer {
		return helper.PrettyPrint(os.Stdout, hits)
	}

	resp, err := r.Answer(ctx, flagQuery, hits)
	if err != nil {
		return err
	}
	return helper.PrettyPrint(os.Stdout, resp)
}
