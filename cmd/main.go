package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"shopapi/internal/config"
	httpapi "shopapi/internal/http"
	"shopapi/internal/repository"
	"shopapi/internal/service"

	_ "shopapi/docs"
)

var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:           "shopapi",
	Short:         "HTTP CRUD service for products, buyers and purchases",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.ApplyEnv(cmd.Flags(), nil); err != nil {
			return err
		}
		return cfg.Validate()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), cfg)
	},
}

func init() {
	cfg.RegisterFlags(rootCmd.Flags())
}

// @title shopapi
// @version 1.0
// @description CRUD over products, buyers and purchases.
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Printf("shopapi: %+v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	gin.SetMode(cfg.GinMode)

	dialect, err := repository.DialectByName(cfg.DBDriver)
	if err != nil {
		return err
	}
	db, err := repository.Open(ctx, dialect, cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.InitSchema(ctx); err != nil {
		return err
	}
	log.Printf("%s store ready", dialect.Name)

	ordersRepo := repository.NewSQLOrders(db)
	productsSvc := service.NewProductService(repository.NewSQLProducts(db))
	buyersSvc := service.NewBuyerService(repository.NewSQLBuyers(db), ordersRepo, db)
	ordersSvc := service.NewOrderService(ordersRepo)

	srv := httpapi.NewServer(productsSvc, buyersSvc, ordersSvc)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Engine(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- errors.Wrap(err, "server error")
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	return nil
}
