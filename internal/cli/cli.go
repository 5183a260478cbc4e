package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/GNPower/Vitis/internal/app"
	"github.com/GNPower/Vitis/internal/config"
	"github.com/GNPower/Vitis/internal/ini"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// options are the flags shared by every command.
type options struct {
	sourceRoot string
	settings   string
	logLevel   string
	logFormat  string
}

// globalFlags returns the flags accepted by every command.
func (o *options) globalFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("global", pflag.ContinueOnError)
	fs.StringVar(&o.sourceRoot, "source-root", "", "Directory holding Top/ and Projects/ (default: current directory).")
	fs.StringVar(&o.settings, "settings", "", "Settings file (default: <source-root>/vitisgen.hcl).")
	fs.StringVar(&o.logLevel, "log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	fs.StringVar(&o.logFormat, "log-format", "", "Log output format. Options: 'text' or 'json'.")
	return fs
}

// newApp builds the App for one command invocation.
func (o *options) newApp(outW io.Writer, appOpts []app.Option) (*app.App, error) {
	root := o.sourceRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	cfg, err := app.NewConfig(app.Config{
		SourceRoot:   root,
		SettingsPath: o.settings,
		LogLevel:     strings.ToLower(o.logLevel),
		LogFormat:    strings.ToLower(o.logFormat),
	})
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	return app.NewApp(outW, cfg, appOpts...)
}

// NewRootCommand assembles the command tree. Logs go to errW; reports go
// to outW. appOpts are passed to every App the commands create.
func NewRootCommand(outW, errW io.Writer, appOpts ...app.Option) *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "vitisgen",
		Short: "Synthesize Vitis embedded workspaces from declarative project files",
		Long: `vitisgen turns the project configuration under Top/<project>/ into a
vendor workspace: platform, domains, applications, builds and launch
configurations. Every command is safe to re-run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.PersistentFlags().AddFlagSet(o.globalFlags())
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	})

	root.AddCommand(
		newCreateCommand(o, errW, appOpts),
		newUpdateCommand(o, errW, appOpts),
		newBuildCommand(o, errW, appOpts),
		newActivateCommand(o, errW, appOpts),
	)
	return root
}

// projectArg requires exactly one project name.
func projectArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 || args[0] == "" {
		return &ExitError{Code: ExitUsage, Message: fmt.Sprintf("%s requires exactly one project name", cmd.CommandPath())}
	}
	return nil
}

// Execute runs the command line args and maps the outcome to an ExitError.
func Execute(ctx context.Context, outW, errW io.Writer, args []string, appOpts ...app.Option) error {
	root := NewRootCommand(outW, errW, appOpts...)
	root.SetArgs(args)
	return exitError(root.ExecuteContext(ctx))
}

// exitError classifies err: configuration and usage problems exit with
// ExitUsage, everything else with ExitFailure.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	var (
		syntaxErr     *ini.SyntaxError
		collectionErr *ini.CollectionError
		validationErr *config.ValidationError
	)
	switch {
	case errors.As(err, &syntaxErr), errors.As(err, &collectionErr), errors.As(err, &validationErr):
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	case strings.HasPrefix(err.Error(), "unknown command"):
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	return &ExitError{Code: ExitFailure, Message: err.Error()}
}
