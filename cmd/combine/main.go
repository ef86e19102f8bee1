// Command combine merges the CoNLL-2003 and WNUT-17 English corpora into one
// TOKEN<TAB>LABEL dataset for each of the train, validation and test splits.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/baditaflorin/go_ner_combine/internal/adapters/logger"
	"github.com/baditaflorin/go_ner_combine/internal/adapters/storage"
	"github.com/baditaflorin/go_ner_combine/internal/config"
	"github.com/baditaflorin/go_ner_combine/internal/core/combine"
	"github.com/baditaflorin/go_ner_combine/internal/core/conll"
	"github.com/baditaflorin/go_ner_combine/internal/ports"
)

func main() {
	legacyDir := flag.String("legacy-dir", config.DefaultLegacyDir, "Directory holding the CoNLL-2003 train.txt, valid.txt and test.txt")
	normalizedDir := flag.String("normalized-dir", config.DefaultNormalizedDir, "Directory holding the WNUT-17 splits")
	outputDir := flag.String("output-dir", config.DefaultOutputDir, "Existing directory the combined splits are written to")
	logFile := flag.String("log-file", "", "Log file path (empty = stdout)")
	jsonLogs := flag.Bool("json-logs", false, "Write logs as JSON")
	flag.Parse()

	log, err := logger.NewFileLogger(*logFile, *jsonLogs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	layout := config.Layout{
		LegacyDir:     *legacyDir,
		NormalizedDir: *normalizedDir,
		OutputDir:     *outputDir,
	}

	err = run(context.Background(), layout, config.DefaultSplits(), log, os.Stdout)
	log.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run combines every split in order and returns the first error.
func run(ctx context.Context, layout config.Layout, splits []config.Split, log ports.Logger, out io.Writer) error {
	normalizer, err := conll.NewNormalizer(conll.DefaultConfig(), log)
	if err != nil {
		return err
	}
	combiner := combine.NewCombiner(storage.NewFilesystem(log), normalizer, log, out)

	results, err := combiner.RunSplits(ctx, layout, splits)
	if err != nil {
		log.Error("Combination failed", "completed_splits", len(results), "error", err)
		return err
	}

	log.Info("All splits combined", "splits", len(results))
	return nil
}
