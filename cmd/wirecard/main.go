package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Adda-Baaj/wirecard-go/internal/app"
	"github.com/Adda-Baaj/wirecard-go/internal/config"
	"github.com/Adda-Baaj/wirecard-go/internal/logger"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "wirecard: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("wirecard", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	limit := fs.Int("limit", 20, "number of entries shown by history")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: wirecard [flags] <operation> [id] [payload-file|-]\n       wirecard [flags] history\n\noperations:\n  %s\n\nflags:\n",
			strings.Join(app.Operations(), "\n  "))
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		return fmt.Errorf("missing operation")
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.DebugObj("wirecard starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := app.Build(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize runner", "error", err.Error())
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			logger.ErrorObj("runner close failed", "error", err.Error())
		}
	}()

	if strings.EqualFold(args[0], "history") {
		entries, err := runner.History(*limit)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	cmd, err := app.ParseCommand(args, os.Stdin)
	if err != nil {
		return err
	}
	out, err := runner.Run(ctx, cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, out)
	return nil
}
