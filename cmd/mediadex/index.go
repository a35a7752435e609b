package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kpetrov/mediadex/internal/index"
	"github.com/kpetrov/mediadex/internal/scan"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Crawl a directory tree and update its index",
	Long: `Crawl a directory tree and reconcile the SQLite index with it.
Entries that vanished since the previous run are removed and the tag
index is rebuilt from directory names.`,
	RunE: runIndex,
}

var (
	indexRoot    string
	indexDB      string
	indexFollow  bool
	indexWorkers int
	indexBatch   int
	indexMinFreq int
)

func init() {
	indexCmd.Flags().StringVarP(&indexRoot, "root", "r", ".", "Root directory to index")
	indexCmd.Flags().StringVarP(&indexDB, "db", "d", "media_index.db", "Location of the index database")
	indexCmd.Flags().BoolVar(&indexFollow, "follow-symlinks", false, "Follow symbolic links while crawling")
	indexCmd.Flags().IntVarP(&indexWorkers, "workers", "w", 0, "Number of scanner workers (0 = derive from CPU count)")
	indexCmd.Flags().IntVar(&indexBatch, "batch-size", scan.DefaultBatchSize, "Entries buffered before each database flush")
	indexCmd.Flags().IntVar(&indexMinFreq, "min-tag-frequency", scan.DefaultMinTagFrequency, "Directories a token must match to become a tag")

	// Every knob is overridable through MEDIADEX_* environment variables.
	viper.SetEnvPrefix("mediadex")
	viper.AutomaticEnv()
	viper.BindPFlag("workers", indexCmd.Flags().Lookup("workers"))
	viper.BindPFlag("batch_size", indexCmd.Flags().Lookup("batch-size"))
	viper.BindPFlag("min_tag_frequency", indexCmd.Flags().Lookup("min-tag-frequency"))
}

func runIndex(cmd *cobra.Command, args []string) error {
	ix, err := index.New(indexRoot, indexDB, indexFollow)
	if err != nil {
		return err
	}
	defer ix.Close()
	ix.SetLogger(logger)

	opts := scan.DefaultOptions().
		WithWorkers(viper.GetInt("workers")).
		WithBatchSize(viper.GetInt("batch_size")).
		WithMinTagFrequency(viper.GetInt("min_tag_frequency"))

	start := time.Now()
	if err := ix.BuildIndex(opts); err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	stats, err := ix.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %s in %s\n", ix.Root(), time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Entries: %d (%d directories, %d files)\n", stats.Entries, stats.Dirs, stats.Files)
	fmt.Printf("  Total size: %s\n", humanize.IBytes(uint64(stats.TotalBytes)))
	return nil
}
