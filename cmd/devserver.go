package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linkup/database"
	"linkup/handlers"
	"linkup/logger"
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local LinkUp backend for development",
	Long: `Run a local backend that speaks the LinkUp REST and chat socket
protocol, backed by SQLite. Requires JWT_SECRET.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.JWTSecret == "" {
			return errors.New("JWT_SECRET must be set")
		}

		db, err := database.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()

		hub := handlers.NewHub(logger.Log)
		go hub.Run()
		defer hub.Stop()

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handlers.NewServer(db, hub, cfg.JWTSecret, cfg.MediaDir, logger.Log).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			logger.Log.Info("devserver_listening",
				zap.String("addr", srv.Addr),
				zap.String("database", cfg.DatabasePath),
				zap.String("media_dir", cfg.MediaDir))
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Log.Info("devserver_shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(devserverCmd)
}
