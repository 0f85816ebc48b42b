package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ecmwf/fdb-go/pkg/database"
	"github.com/ecmwf/fdb-go/pkg/fdbconfig"
	"github.com/ecmwf/fdb-go/pkg/toc"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Initialise and inspect database directories",
}

var dbInitCmd = &cobra.Command{
	Use:   "init <key>",
	Short: "Create (or open) the database directory for a database-level key",
	Long: `init resolves key against the configured roots and opens it for
writing, creating the TOC and copying the master schema on first use, then
closes it immediately. Example key: class=od,stream=oper,expver=0001`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigFromFlags(cmd)
		if err != nil {
			return err
		}
		key, err := parseKeyArg(args[0])
		if err != nil {
			return err
		}
		mgr := database.NewManager(cfg, "toc")
		db, err := mgr.Open(key, database.ModeWrite)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", key.String(), db.Dir())
		return db.Close()
	},
}

var dbWipeCmd = &cobra.Command{
	Use:   "wipe <key>",
	Short: "Mask every index a database has recorded, without removing any file",
	Long: `wipe resolves key against the configured roots, opens its TOC for
writing, and appends a TOC_WIPE record. Every index the DB has recorded
becomes unreachable to future readers; the underlying index and data
files are left on disk for a subsequent "toc purge --doit" to reclaim.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigFromFlags(cmd)
		if err != nil {
			return err
		}
		key, err := parseKeyArg(args[0])
		if err != nil {
			return err
		}
		mgr := database.NewManager(cfg, "toc")
		db, err := mgr.Open(key, database.ModeWrite)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Wipe(); err != nil {
			return err
		}
		fmt.Printf("%s: wiped\n", db.Dir())
		return nil
	},
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats <dir>",
	Short: "Report the live index set recorded in a database directory's TOC",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		live, err := toc.Live(filepath.Join(dir, "toc"))
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d live index(es)\n", dir, len(live))
		for _, ip := range live {
			fmt.Printf("  %s -> %s\n", ip.Key, ip.IndexPath)
		}
		return nil
	},
}

func init() {
	dbCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	dbCmd.PersistentFlags().StringSlice("root", nil, "Root directory (repeatable); overrides config roots")
	dbCmd.PersistentFlags().String("schema", "", "Path to the master schema file")

	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbWipeCmd)
	dbCmd.AddCommand(dbStatsCmd)
}

func loadConfigFromFlags(cmd *cobra.Command) (fdbconfig.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := fdbconfig.Load(configPath)
	if err != nil {
		return fdbconfig.Config{}, err
	}
	if roots, _ := cmd.Flags().GetStringSlice("root"); len(roots) > 0 {
		cfg.Roots = nil
		for _, r := range roots {
			cfg.Roots = append(cfg.Roots, fdbconfig.RootSpec{Path: r, Visit: true})
		}
	}
	if schemaFile, _ := cmd.Flags().GetString("schema"); schemaFile != "" {
		cfg.SchemaFile = schemaFile
	}
	return cfg, nil
}
