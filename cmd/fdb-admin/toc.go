package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ecmwf/fdb-go/pkg/toc"
)

var tocCmd = &cobra.Command{
	Use:   "toc",
	Short: "Inspect a raw TOC file's record log",
}

var tocDumpCmd = &cobra.Command{
	Use:   "dump <path>",
	Short: "Print every record in a TOC file, in append order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := toc.ReadAll(args[0])
		if err != nil {
			return err
		}
		for i, r := range records {
			decoded, err := toc.Decode(r)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			fmt.Printf("%4d  %-14s uid=%d pid=%d %s  %+v\n",
				i, r.Header.Tag, r.Header.UID, r.Header.PID,
				time.Unix(r.Header.Timestamp, 0).UTC().Format(time.RFC3339), decoded)
		}
		return nil
	},
}

var tocPurgeCmd = &cobra.Command{
	Use:   "purge <dir>",
	Short: "Classify and reclaim index files a DB directory's TOC no longer considers live",
	Long: `purge scans dir for *.idx files, classifies each against dir/toc as
reachable, duplicate (once referenced but since cleared or wiped) or
orphan (never referenced at all), and reports the bytes each class
occupies. Pass --doit to actually remove duplicate and orphan files;
without it, purge only lists what a real run would reclaim.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		doit, _ := cmd.Flags().GetBool("doit")

		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		var onDisk []string
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ".idx" {
				onDisk = append(onDisk, e.Name())
			}
		}

		report, err := toc.Classify(filepath.Join(dir, "toc"), onDisk)
		if err != nil {
			return err
		}
		reclaimed, err := toc.Execute(dir, report, doit)
		if err != nil {
			return err
		}

		fmt.Printf("reachable: %d, duplicate: %d, orphan: %d\n",
			len(report.Reachable), len(report.Duplicate), len(report.Orphan))
		if doit {
			fmt.Printf("reclaimed %d bytes\n", reclaimed)
		} else {
			fmt.Printf("would reclaim %d bytes (pass --doit to remove)\n", reclaimed)
		}
		return nil
	},
}

func init() {
	tocPurgeCmd.Flags().Bool("doit", false, "Actually remove duplicate and orphan index files")
	tocCmd.AddCommand(tocDumpCmd)
	tocCmd.AddCommand(tocPurgeCmd)
}
