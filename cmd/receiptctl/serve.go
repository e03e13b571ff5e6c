package main

import (
	"context"
	"strings"
	"time"

	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/bootstrap"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

func serveCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the expense ingestion HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := strings.TrimSpace(v.GetString("serve.addr"))
			app := fx.New(
				bootstrap.API(),
				fx.Decorate(func(cfg config.Config) config.Config {
					if addr != "" {
						cfg.HTTPAddr = addr
					}
					return cfg
				}),
			)
			if err := app.Err(); err != nil {
				return err
			}
			if err := app.Start(cmd.Context()); err != nil {
				return err
			}
			<-cmd.Context().Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return app.Stop(stopCtx)
		},
	}
	cmd.Flags().String("addr", "", "listen address, overrides HTTP_ADDR")
	_ = v.BindPFlag("serve.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
