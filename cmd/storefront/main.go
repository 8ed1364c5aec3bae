// Package main boots the storefront HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/storefront-cart/internal/catalog"
	"github.com/fairyhunter13/storefront-cart/internal/config"
	httpapi "github.com/fairyhunter13/storefront-cart/internal/http"
	"github.com/fairyhunter13/storefront-cart/internal/money"
	"github.com/fairyhunter13/storefront-cart/internal/obs"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "storefront",
		Short:        "Catalog storefront with a cart and messaging checkout",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), catalogCmd())
	return root
}

// loadCatalog falls back to an empty catalog when the document is unusable;
// the grid then simply renders nothing.
func loadCatalog(path string) *catalog.Catalog {
	cat, err := catalog.Load(path)
	if err != nil {
		obs.Logger.Warn("catalog_invalid", "path", path, "error", err)
		return catalog.Empty()
	}
	obs.Logger.Info("catalog_loaded", "path", path, "products", cat.Len())
	return cat
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			obs.InitLogger()
			obs.Logger.Info("service_starting")

			f, err := money.NewFormatter(cfg.Locale, cfg.Currency)
			if err != nil {
				return err
			}
			app := httpapi.NewApp(cfg, loadCatalog(cfg.CatalogPath), f, config.Contact)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			app.Sessions.Start(ctx, cfg.SessionSweepInterval)
			defer app.Sessions.Stop()

			srv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           httpapi.NewRouter(app),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      30 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					obs.Logger.Error("http_server_error", "error", err)
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				obs.Logger.Info("shutdown_signal")
				ctxSrv, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(ctxSrv); err != nil {
					obs.Logger.Error("http_shutdown_error", "error", err)
					return err
				}
				return nil
			})
			err = g.Wait()
			obs.Logger.Info("service_stopped")
			return err
		},
	}
}

func catalogCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate the catalog and list its products",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if path == "" {
				path = cfg.CatalogPath
			}
			f, err := money.NewFormatter(cfg.Locale, cfg.Currency)
			if err != nil {
				return err
			}
			cat, err := catalog.Load(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range cat.Products() {
				fmt.Fprintf(out, "%s\t%s\t%s\n", p.ID, p.Name, f.Format(p.Price))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "catalog file (default $CATALOG_PATH or the built-in catalog)")
	return cmd
}
