// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taibuivan/epaper/internal/bootstrap"
	"github.com/taibuivan/epaper/internal/news"
	"github.com/taibuivan/epaper/internal/platform/config"
	"github.com/taibuivan/epaper/internal/platform/migration"
	"github.com/taibuivan/epaper/pkg/uuid"
)

const appName = "newsctl"

func newRootCommand() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:           appName,
		Short:         "Operate the ePaper ingestion service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&debug, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newIngestCommand(&debug), newMigrateCommand(&debug))
	return root
}

func newIngestCommand(debug *bool) *cobra.Command {
	var uploadedBy string

	cmd := &cobra.Command{
		Use:   "ingest <file.pdf>",
		Short: "Rasterize a PDF edition, upload its pages and record it",
		Long: `Runs the ingestion pipeline used by POST /api/v1/news/upload.
The edition date is taken from the file name (DDMMYYYY_*.pdf).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !uuid.Valid(uploadedBy) {
				return fmt.Errorf("--uploaded-by must be an account id, got %q", uploadedBy)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := bootstrap.NewLogger(appName, *debug || cfg.Debug)

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, cfg.IngestTimeout)
			defer cancel()

			infra, err := bootstrap.Open(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer infra.Close()

			ingestor, err := infra.NewIngestor(cfg, news.NewPostgresRepository(infra.Pool))
			if err != nil {
				return err
			}

			publication, err := ingestor.Ingest(ctx, news.Upload{
				FileName:   filepath.Base(args[0]),
				Content:    content,
				UploadedBy: uploadedBy,
			})
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(publication)
		},
	}

	cmd.Flags().StringVar(&uploadedBy, "uploaded-by", "", "account id recorded as the uploader (required)")
	_ = cmd.MarkFlagRequired("uploaded-by")
	return cmd
}

func newMigrateCommand(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadMigration()
			if err != nil {
				return err
			}
			return migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, bootstrap.NewLogger(appName, *debug))
		},
	}
}
