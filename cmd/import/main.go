package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/spendboard/internal/app"
	"github.com/MrJamesThe3rd/spendboard/internal/config"
	"github.com/MrJamesThe3rd/spendboard/internal/importer"
)

type importFlags struct {
	file      string
	limit     int
	batchSize int
	dryRun    bool
}

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "spendboard-import",
		Short: "Import an accounting JSON export into the transactions table",
		Long: `Reads an accounting export (groups of rows keyed by period), validates every row
and inserts them into the remote transactions table in batches.

Any invalid row aborts the import before anything is written.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "path to the JSON export (required)")
	cmd.Flags().IntVarP(&flags.limit, "limit", "n", 0, "import at most this many rows (0 for all)")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", 0, "rows per insert (defaults to IMPORT_BATCH_SIZE)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "validate the export without writing")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(ctx context.Context, flags importFlags) error {
	f, err := os.Open(flags.file)
	if err != nil {
		return fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	if flags.dryRun {
		txs, err := importer.NewService(nil, flags.batchSize).Parse(f)
		if err != nil {
			return fmt.Errorf("invalid export: %w", err)
		}

		fmt.Printf("%d rows are valid, nothing was written\n", len(txs))

		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if flags.batchSize != 0 {
		if err := config.ValidateBatchSize(flags.batchSize); err != nil {
			return fmt.Errorf("invalid --batch-size: %w", err)
		}

		cfg.Import.BatchSize = flags.batchSize
	}

	a, err := app.Wire(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer a.Close()

	txs, err := a.Importer.Parse(f)
	if err != nil {
		return fmt.Errorf("invalid export: %w", err)
	}

	if flags.limit > 0 && len(txs) > flags.limit {
		txs = txs[:flags.limit]
	}

	bar := newProgressBar(len(txs))

	res, err := a.Importer.Write(ctx, txs, importer.Options{
		Progress: func(p importer.Progress) {
			if err := bar.Set(p.Done); err != nil {
				slog.Warn("failed to update progress bar", "error", err)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("import interrupted after %d rows: %w", res.Inserted, err)
	}

	_ = bar.Finish()

	if res.Inserted > 0 {
		if err := a.Loader.ClearCache(ctx); err != nil {
			slog.Warn("failed to clear local cache", "error", err)
		}
	}

	fmt.Printf("Inserted %d of %d rows\n", res.Inserted, res.Total)

	for _, rowErr := range res.Errors {
		fmt.Fprintf(os.Stderr, "  %v\n", rowErr)
	}

	if res.Failed > 0 {
		return fmt.Errorf("%d rows failed to insert", res.Failed)
	}

	return nil
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Importing transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}
