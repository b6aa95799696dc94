package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"boardsync/internal/hub"
)

func newServeCmd(app *App) *cobra.Command {
	var (
		dbPath string
		listen string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a boardsync hub",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := app.logger()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := hub.OpenDB(ctx, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			srv := hub.NewServer(db, log)
			defer srv.Close()

			httpSrv := &http.Server{
				Addr:              listen,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				httpSrv.Shutdown(shutdownCtx)
			}()

			log.Info("hub listening", zap.String("addr", listen), zap.String("db", dbPath))
			if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "board.db", "SQLite database path")
	cmd.Flags().StringVar(&listen, "listen", ":8333", "Listen address")
	return cmd
}
