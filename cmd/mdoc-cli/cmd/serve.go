package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mdoc/internal/adapters/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Long: `Serve the documentation catalog, pages, navigation and history as JSON.

Prometheus metrics are exposed on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a := GetApp()
		srv := httpapi.NewServer(httpapi.Options{
			Catalog:     a.Catalog,
			History:     a.History,
			Freshness:   a.Freshness,
			Searcher:    a,
			Metrics:     a.Metrics,
			BaseURL:     a.Config.Site.BaseURL,
			EditBaseURL: a.Config.Site.EditBaseURL,
			Logger:      a.Logger,
		})
		return srv.ListenAndServe(ctx, a.Config.HTTP.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8080)")
	v.BindPFlag("http.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
