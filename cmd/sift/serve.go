package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/sift/internal/cli"
	"github.com/aretw0/sift/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP validation server",
	Long: `Serves the catalog over HTTP: schema listing and description, validation,
the OpenAPI document and Prometheus metrics. Definitions from a directory or
Redis are reloaded when they change.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		opts := options(cmd)
		opts.Metrics = true

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withSession(opts, func(s *cli.Session) error {
			return cli.Serve(ctx, s, cli.ServeOptions{
				Port:   port,
				Banner: tui.IsTerminal(os.Stdout),
			}, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
