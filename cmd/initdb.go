package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"boe-rag/internal/chromemdb"
	"boe-rag/internal/db"
)

var flagDrop bool

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the pgvector extension and the records and chunks tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg.Database.Enabled = true
		if err := cfg.Validate(); err != nil {
			return err
		}

		store, err := db.Open(ctx, &cfg.Database, log.Logger)
		if err != nil {
			return err
		}
		defer store.Close()

		if flagDrop {
			if err := store.DropTables(ctx); err != nil {
				return err
			}
			log.Info().Msg("tables dropped")

			if cfg.Chromem.Enabled {
				m, err := chromemdb.NewVectorDBManager(cfg.Chromem.Path, cfg.Chromem.Collection, cfg.Chromem.Compress, log.Logger)
				if err != nil {
					return err
				}
				if err := m.Reset(); err != nil {
					return err
				}
			}
		}
		if err := store.InitDB(ctx); err != nil {
			return err
		}
		log.Info().Msg("database initialised")
		return nil
	},
}

func init() {
	initDBCmd.Flags().BoolVar(&flagDrop, "drop", false, "Drop existing tables (and the chromem collection when enabled) first")
	rootCmd.AddCommand(initDBCmd)
}
