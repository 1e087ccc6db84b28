package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var prerenderOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the blog over HTTP",
	Long: `serve starts the HTTP server and runs until interrupted. With --prerender
the home page and the newest posts are generated into the page cache first.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if prerenderOnStart {
			paths, err := app.Prerender(ctx)
			if err != nil {
				app.Echo.Logger.Warnf("prerender: %v", err)
			}
			app.Echo.Logger.Infof("prerendered %d pages", len(paths))
		}

		errc := make(chan error, 1)
		go func() {
			app.Echo.Logger.Infof("%s listening on %s", app.Config.Name, app.Config.Addr)
			errc <- app.Start()
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		app.Echo.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&prerenderOnStart, "prerender", false, "generate the home page and newest posts before serving")
}
