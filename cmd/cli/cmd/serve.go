// Package cmd - CLI command: glassquote serve
package cmd

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"glassquote/api"
	"glassquote/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, configs, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := config.Get()
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	minArea := decimal.NewFromFloat(cfg.Pricing.MinimumBillableSqFt)
	server := api.NewServer(store, configs, minArea, "0.1.0")
	return server.ListenAndServe(addr)
}
