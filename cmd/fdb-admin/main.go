// Command fdb-admin is the operator CLI for a field database: validating
// and inspecting schemas, initialising and inspecting database directories,
// dumping a TOC's record log, and serving Prometheus metrics and health
// endpoints for a running installation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ecmwf/fdb-go/pkg/log"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fdb-admin",
	Short: "Inspect and administer a field database installation",
	Long: `fdb-admin validates schemas, initialises and inspects database
directories, dumps a TOC's record log, and serves the metrics and health
endpoints a running archiver/retriever process would expose.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"fdb-admin version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(tocCmd)
	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}
