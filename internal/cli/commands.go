package cli

import (
	"io"

	"github.com/GNPower/Vitis/internal/app"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newCreateCommand(o *options, errW io.Writer, appOpts []app.Option) *cobra.Command {
	return &cobra.Command{
		Use:   "create PROJECT",
		Short: "Create the platform, domains and applications of a project, build them and activate it",
		Args:  projectArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.newApp(errW, appOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Create(cmd.Context(), args[0])
			renderReport(cmd.OutOrStdout(), report)
			return err
		},
	}
}

func newUpdateCommand(o *options, errW io.Writer, appOpts []app.Option) *cobra.Command {
	var opts app.UpdateOptions
	cmd := &cobra.Command{
		Use:   "update PROJECT",
		Short: "Re-apply a project's configuration to its existing entities",
		Long: `update runs the same steps as create against entities that already
exist. A missing platform, domain or application is an error; run create
first.`,
		Args: projectArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.newApp(errW, appOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Update(cmd.Context(), args[0], opts)
			renderReport(cmd.OutOrStdout(), report)
			return err
		},
	}
	cmd.Flags().BoolVar(&opts.Platform, "platform", false, "Update only the platform and its domains.")
	cmd.Flags().BoolVar(&opts.Application, "application", false, "Update only the applications.")
	cmd.Flags().BoolVar(&opts.NoBuild, "no-build", false, "Skip the builds.")
	return cmd
}

// buildFlags returns the flags selecting the build executor.
func buildFlags(opts *app.BuildOptions) *pflag.FlagSet {
	fs := pflag.NewFlagSet("build", pflag.ContinueOnError)
	fs.BoolVar(&opts.Ninja, "ninja", false, "Run the toolchain's bundled ninja directly instead of the integrated builder.")
	fs.BoolVar(&opts.SystemNinja, "system-ninja", false, "Run ninja from PATH (implies --ninja).")
	fs.BoolVar(&opts.Clean, "clean", false, "Run 'ninja clean' before building.")
	return fs
}

func newBuildCommand(o *options, errW io.Writer, appOpts []app.Option) *cobra.Command {
	var opts app.BuildOptions
	cmd := &cobra.Command{
		Use:   "build PROJECT",
		Short: "Build the platform and applications of an existing project and activate it",
		Args:  projectArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.newApp(errW, appOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Build(cmd.Context(), args[0], opts)
			renderReport(cmd.OutOrStdout(), report)
			return err
		},
	}
	cmd.Flags().AddFlagSet(buildFlags(&opts))
	return cmd
}

func newActivateCommand(o *options, errW io.Writer, appOpts []app.Option) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "activate PROJECT",
		Short: "Point the shared IDE tooling files at a project",
		Long: `activate writes .clangd and a merged compile_commands.json at the
common ancestor of every project's sources. Records for files shared by
several projects come from the active project.`,
		Args: projectArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.newApp(errW, appOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			if watch {
				return a.Watch(cmd.Context(), args[0])
			}
			res, err := a.Activate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderActivation(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep refreshing while compiler databases change, until interrupted.")
	return cmd
}
