package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bdragon300/doublehash/doublehash"
	"github.com/bdragon300/doublehash/internal/config"
	"github.com/bdragon300/doublehash/internal/logutil"
	"github.com/bdragon300/doublehash/internal/prompt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	var (
		configPath   string
		logLevel     string
		baseCapacity int
	)

	cmd := &cobra.Command{
		Use:   "htable",
		Short: "Interactive string hash table",
		Long:  "Insert, search and delete string keys in a double hashing table from an interactive prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if cmd.Flags().Changed("base-capacity") {
				cfg.Table.BaseCapacity = baseCapacity
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, in, out)
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.IntVar(&baseCapacity, "base-capacity", doublehash.DefaultBaseCapacity, "initial base capacity of the table")
	return cmd
}

func run(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) error {
	logger, err := logutil.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	table, err := doublehash.NewHashTable(cfg.Table.BaseCapacity)
	if err != nil {
		return err
	}
	table.Logger = logger.Named("table")
	defer table.Destroy()

	logger.Info("session started", zap.Int("capacity", table.Cap()))
	err = prompt.New(table, in, out, logger.Named("prompt")).Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("session interrupted", zap.Int("count", table.Len()))
		return nil
	case err != nil:
		logger.Error("session failed", zap.Error(err))
		return err
	}
	logger.Info("session finished", zap.Int("count", table.Len()))
	return nil
}
