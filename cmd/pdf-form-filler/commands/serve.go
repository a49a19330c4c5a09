package commands

import (
	"log"
	"os/signal"
	"syscall"

	"github.com/a3tai/pdf-form-filler/internal/mcp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the form tools over the Model Context Protocol",
		Long: `Starts an MCP server on stdin/stdout exposing the taxform_fill, taxform_check,
taxform_fields and taxform_list tools. Logs are written to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, cfg, err := newService(cmd)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(cfg, service)
			if err != nil {
				return err
			}

			// Set up context for graceful shutdown
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Run(ctx)
			}()

			select {
			case <-ctx.Done():
				log.Printf("Received shutdown signal, stopping server")
				return nil
			case err := <-errCh:
				if err != nil && cfg.IsDebug() {
					log.Printf("Server error: %v", err)
				}
				return err
			}
		},
	}
}
