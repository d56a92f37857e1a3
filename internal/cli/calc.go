package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/CheerlessCloud/veendor/internal/app"
)

func newCalcCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "calc",
		Short: "Print the bundle fingerprint for the current project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalc(cmd.Context(), cmd)
		},
	}
}

func runCalc(ctx context.Context, cmd *cobra.Command) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	service, err := app.NewService()
	if err != nil {
		return err
	}
	hash, err := service.Calc(ctx, app.CalcRequest{
		Dir:        dir,
		ConfigPath: viper.GetString("config"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
