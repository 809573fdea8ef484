// cmd/scrape.go
package cmd

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/prospector/api/schemas"
	"github.com/xkilldash9x/prospector/internal/browser"
	"github.com/xkilldash9x/prospector/internal/config"
	"github.com/xkilldash9x/prospector/internal/observability"
)

func newScrapeCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "scrape <profile-url>",
		Short: "Extract one profile and print it as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			log := observability.GetLogger()

			manager := browser.NewManager(cfg, log)
			defer manager.Shutdown(context.Background())

			asm := newAssembler(cfg, manager, log)
			creds := schemas.Credentials{Email: email, Password: password}

			record, err := asm.Scrape(ctx, args[0], creds)
			if err != nil {
				return err
			}

			out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(record, "", "  ")
			if err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login identifier (defaults to configured account)")
	cmd.Flags().StringVar(&password, "password", "", "login secret (defaults to configured account)")
	return cmd
}
