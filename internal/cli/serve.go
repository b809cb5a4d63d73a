package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nycstandup/showcatalog/internal/api"
)

func (a *app) serveCmd() *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over the read-only JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if bind == "" {
				bind = a.cfg.API.Bind
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return api.New(store, a.log).ListenAndServe(ctx, bind)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default from [api] bind)")
	return cmd
}
