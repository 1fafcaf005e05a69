// Command seqdbcat is a small CLI wrapping package seqdb: given an
// index-file path, it opens the companion header and sequence files,
// decodes every record, and prints a one-line summary per record to
// stdout. Path derivation, output formatting, and process exit
// handling live here, outside the core decoders.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go"
	charmlog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Schaudge/seqdb/dblog"
	"github.com/Schaudge/seqdb/seqdb"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func newRootCmd() *cobra.Command {
	var (
		workers   int
		forceZstd bool
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "seqdbcat <index-file> [output-dir]",
		Short: "Decode a legacy sequence database and print its records",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if quiet {
				dblog.SetOutput(charmlog.New(io.Discard))
			}
			var outDir string
			if len(args) == 2 {
				outDir = args[1]
			}
			return run(cmd.Context(), args[0], outDir, workers, forceZstd)
		},
		SilenceUsage: true,
	}

	cmd.Flags().IntVar(&workers, "workers", 1, "number of goroutines to decode records with")
	cmd.Flags().BoolVar(&forceZstd, "zstd", false, "force zstd decompression of the companion files")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress per-record warning logging")

	cobra.OnInitialize(func() { initConfig(cmd, &workers, &forceZstd) })
	return cmd
}

// initConfig layers defaults from ~/.seqdbcat.yaml under whatever the
// command line already set.
func initConfig(cmd *cobra.Command, workers *int, forceZstd *bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	viper.AddConfigPath(home)
	viper.SetConfigName(".seqdbcat")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return
	}
	if viper.IsSet("workers") && !cmd.Flags().Changed("workers") {
		*workers = viper.GetInt("workers")
	}
	if viper.IsSet("zstd") && !cmd.Flags().Changed("zstd") {
		*forceZstd = viper.GetBool("zstd")
	}
}

func run(ctx context.Context, indexPath, outDir string, workers int, forceZstd bool) error {
	correlation := uuid.New().String()

	indexDir := filepath.Dir(indexPath)
	base := strings.TrimSuffix(filepath.Base(indexPath), filepath.Ext(indexPath))
	headerPath := filepath.Join(indexDir, base+".phr")
	seqPath := filepath.Join(indexDir, base+".psq")

	var v *seqdb.Volume
	var warnings []string
	err := retry.Do(
		func() error {
			var openErr error
			v, warnings, openErr = seqdb.OpenVolume(indexPath, headerPath, seqPath, seqdb.Options{ForceZstd: forceZstd})
			return openErr
		},
		retry.Attempts(3),
		retry.Delay(100*time.Millisecond),
		retry.MaxDelay(time.Second),
	)
	if err != nil {
		return fmt.Errorf("seqdbcat: %w", err)
	}
	for _, w := range warnings {
		dblog.Warnf(w, "correlation", correlation, "index", indexPath)
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("seqdbcat: %w", err)
		}
	}

	records, err := seqdb.DecodeAll(ctx, v, workers)
	if err != nil {
		return fmt.Errorf("seqdbcat: %w", err)
	}

	for _, rec := range records {
		for _, w := range rec.Warnings {
			dblog.Warnf(w, "correlation", correlation, "record", rec.Index)
		}
		fmt.Printf("%d\t%d definition line(s)\t%d residue(s)\n", rec.Index, len(rec.DefLines), len(rec.Sequence))

		if outDir != "" {
			blob, err := v.HeaderBlob(rec.Index)
			if err != nil {
				dblog.Errorf("could not re-slice header blob for dump", "correlation", correlation, "record", rec.Index, "err", err)
				continue
			}
			outPath := filepath.Join(outDir, fmt.Sprintf("header_%d.bin", rec.Index))
			if err := os.WriteFile(outPath, blob, 0o644); err != nil {
				return fmt.Errorf("seqdbcat: writing %q: %w", outPath, err)
			}
		}
	}
	return nil
}
