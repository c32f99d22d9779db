package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/sift/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "sift validates documents against schemas",
	Long: `sift checks JSON and YAML documents against schemas declared in definition
files, and serves a catalog of schemas over HTTP and MCP.

Definitions come from a directory (--catalog), Redis (--redis) or SQLite (--sqlite).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, cli.ErrValidationFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("catalog", "", "Directory of definition documents (.yaml, .json, .md)")
	flags.String("redis", "", "Redis address holding definitions")
	flags.String("redis-password", "", "Redis password")
	flags.Int("redis-db", 0, "Redis database")
	flags.String("sqlite", "", "SQLite database holding definitions")
	flags.String("log-level", "", "Log level: debug, info, warn, error (default off)")
	flags.Int("max-depth", 0, "Maximum input nesting depth (default 128)")
}

// options reads the persistent flags.
func options(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	var opts cli.Options
	opts.Store.CatalogDir, _ = flags.GetString("catalog")
	opts.Store.RedisAddr, _ = flags.GetString("redis")
	opts.Store.RedisPassword, _ = flags.GetString("redis-password")
	opts.Store.RedisDB, _ = flags.GetInt("redis-db")
	opts.Store.SQLitePath, _ = flags.GetString("sqlite")
	opts.LogLevel, _ = flags.GetString("log-level")
	opts.MaxDepth, _ = flags.GetInt("max-depth")
	return opts
}

// withSession opens a session for the duration of fn.
func withSession(opts cli.Options, fn func(*cli.Session) error) error {
	s, err := cli.NewSession(opts)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
