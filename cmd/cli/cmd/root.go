// Package cmd provides the CLI commands for glassquote.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"glassquote/adapters/storage"
	"glassquote/core/configstore"
	"glassquote/internal/config"
	"glassquote/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "glassquote",
	Short: "Quote pricing for glass and mirror work",
	Long: `glassquote computes itemized price quotes for cut glass and mirror.

It prices a piece from the reference price table, enforces the shop's
manufacturing rules, and applies the configured final pricing formula.

Examples:
  glassquote quote --thickness 1/4 --type clear --area 8 --perimeter 14 --polish
  glassquote formula show
  glassquote formula set --mode custom --expression "max(total * 3, 100)" --actor jane
  glassquote serve --addr :8080`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.glassquote.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(formulaCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + "/.glassquote.json"
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// openStore opens the configured database and wraps it in a formula
// config manager. The caller closes the store.
func openStore(ctx context.Context) (*storage.Store, *configstore.Manager, error) {
	store, err := storage.Open(ctx, config.Get().Database.Path)
	if err != nil {
		return nil, nil, err
	}
	return store, configstore.NewManager(store), nil
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("glassquote version 0.1.0")
	},
}
