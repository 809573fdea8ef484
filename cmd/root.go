// cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/prospector/internal/config"
	"github.com/xkilldash9x/prospector/internal/observability"
)

// NewRootCommand builds the command tree. A fresh tree per invocation keeps
// flag state from leaking between runs.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:          "prospector",
		Short:        "Prospector extracts public profile data through a real browser session.",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := initializeViper(cfgFile)
			if err != nil {
				return err
			}
			cfg, err := config.NewFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "prospector"})
				return fmt.Errorf("load configuration: %w", err)
			}
			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Info("starting prospector", zap.String("version", Version))

			cmd.SetContext(config.IntoContext(cmd.Context(), cfg))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(newServeCommand())
	root.AddCommand(newScrapeCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the command tree under ctx and flushes logs on the way out.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	err := root.ExecuteContext(ctx)
	observability.Sync()
	return err
}

func initializeViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PROSPECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; defaults plus env cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return v, nil
}
