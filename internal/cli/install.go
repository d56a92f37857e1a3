package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/CheerlessCloud/veendor/internal/app"
)

type installOptions struct {
	Force bool
}

func newInstallCommand() *cobra.Command {
	opts := installOptions{}
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Materialize node_modules from a cached bundle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Replace an existing node_modules")
	_ = viper.BindPFlag("force", cmd.Flags().Lookup("force"))
	return cmd
}

func runInstall(ctx context.Context, opts installOptions) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	service, err := app.NewService()
	if err != nil {
		return err
	}
	return service.Install(ctx, app.InstallRequest{
		Dir:        dir,
		ConfigPath: viper.GetString("config"),
		Force:      opts.Force || viper.GetBool("force"),
	})
}
