package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kpetrov/mediadex/internal/db"
)

var queryDB string

func init() {
	for _, cmd := range []*cobra.Command{lsCmd, tagsCmd, taggedCmd, infoCmd} {
		cmd.Flags().StringVarP(&queryDB, "db", "d", "media_index.db", "Location of the index database")
	}
}

var lsCmd = &cobra.Command{
	Use:   "ls [PATH]",
	Short: "List the indexed children of a directory",
	Long:  `List the indexed contents of a directory, "." (the root) by default.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent := "."
		if len(args) == 1 {
			parent = args[0]
		}

		store, err := db.Open(queryDB)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.ListChildren(parent)
		if err != nil {
			return err
		}
		for _, e := range entries {
			mtime := time.Unix(0, int64(e.Mtime*float64(time.Second)))
			if e.IsDir {
				fmt.Printf("%10s  %s  %s/\n", "-", mtime.Format("2006-01-02 15:04"), e.Path)
			} else {
				fmt.Printf("%10s  %s  %s\n", humanize.IBytes(uint64(e.Size)), mtime.Format("2006-01-02 15:04"), e.Path)
			}
		}
		return nil
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List tags with their directory counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Open(queryDB)
		if err != nil {
			return err
		}
		defer store.Close()

		tags, err := store.ListTags()
		if err != nil {
			return err
		}
		for _, t := range tags {
			fmt.Printf("%5d  %s\n", t.DirCount, t.DisplayName)
		}
		return nil
	},
}

var taggedCmd = &cobra.Command{
	Use:   "tagged NAME",
	Short: "List the directories carrying a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Open(queryDB)
		if err != nil {
			return err
		}
		defer store.Close()

		dirs, err := store.ListDirectoriesByTag(args[0])
		if err != nil {
			return err
		}
		for _, dir := range dirs {
			fmt.Println(dir)
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show summary statistics for an index",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Open(queryDB)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats()
		if err != nil {
			return err
		}
		tags, err := store.ListTags()
		if err != nil {
			return err
		}

		fmt.Printf("Entries: %d\n", stats.Entries)
		fmt.Printf("  Directories: %d\n", stats.Dirs)
		fmt.Printf("  Files: %d\n", stats.Files)
		fmt.Printf("  Total size: %s\n", humanize.IBytes(uint64(stats.TotalBytes)))
		fmt.Printf("Tags: %d\n", len(tags))
		return nil
	},
}
