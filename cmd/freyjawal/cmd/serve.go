/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/freyjawal/pkg/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP log writer service",
	Long: `Start the freyjawal HTTP service. The service owns the configured log
file and exposes append, batch, flush and stats endpoints under /api/v1, plus
Prometheus metrics on /metrics.

With security.api_key set to "auto" a key is generated for this run and printed.

Examples:
  freyjawal serve
  freyjawal serve --port 9400 --bind 0.0.0.0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := container.GetConfig()
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Bind, _ = cmd.Flags().GetString("bind")
		}

		apiKey, err := resolveAPIKey(cfg)
		if err != nil {
			return err
		}
		if apiKey != cfg.Security.APIKey {
			cmd.Printf("Generated API key for this run: %s\n", apiKey)
		}

		svc, err := container.GetServiceFactory().CreateService(container, apiKey)
		if err != nil {
			return err
		}
		defer func() {
			if err := svc.Close(); err != nil {
				container.GetLogger().Error("failed to close log", "error", err)
			}
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cmd.Printf("🚀 Starting freyjawal on %s:%d\n", cfg.Bind, cfg.Port)
		cmd.Printf("📁 Log file: %s\n", cfg.WALPath())

		if err := svc.Server.ListenAndServe(ctx, container.GetRegistry()); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 9300, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
}

// resolveAPIKey turns the "auto" placeholder into a fresh key
func resolveAPIKey(cfg *config.Config) (string, error) {
	if cfg.Security.APIKey != "auto" {
		return cfg.Security.APIKey, nil
	}
	key, err := config.GenerateSecureKey(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}
	return key, nil
}
