// cmd/serve.go
package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/prospector/internal/assembler"
	"github.com/xkilldash9x/prospector/internal/auth"
	"github.com/xkilldash9x/prospector/internal/browser"
	"github.com/xkilldash9x/prospector/internal/cache"
	"github.com/xkilldash9x/prospector/internal/config"
	"github.com/xkilldash9x/prospector/internal/humanoid"
	"github.com/xkilldash9x/prospector/internal/observability"
	"github.com/xkilldash9x/prospector/internal/server"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			log := observability.GetLogger()

			manager := browser.NewManager(cfg, log)
			asm := newAssembler(cfg, manager, log)
			store := cache.New(cfg.Cache, log)
			srv := server.New(cfg, asm, store, log)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				manager.Shutdown(context.Background())
				return err
			case <-ctx.Done():
			}

			log.Info("shutdown signal received")
			shutdownCtx := context.Background()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("http shutdown incomplete", zap.Error(err))
			}
			return manager.Shutdown(shutdownCtx)
		},
	}
}

// newAssembler wires the scrape engine over a browser manager.
func newAssembler(cfg *config.Config, manager *browser.Manager, log *zap.Logger) *assembler.Assembler {
	sim := humanoid.New(cfg.Humanoid, log)
	authn := auth.New(*cfg, sim, log)
	sessions := func(ctx context.Context) (assembler.Page, error) {
		s, err := manager.NewSession(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return assembler.New(cfg, sessions, authn, sim, log)
}
