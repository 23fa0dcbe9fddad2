// Package cli implements the sessionctl command tree.
package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/MrEthical07/goSession/authclient"
	"github.com/MrEthical07/goSession/internal/config"
	"github.com/MrEthical07/goSession/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Deps overrides the collaborators normally built from configuration.
// Zero fields fall back to the configured defaults.
type Deps struct {
	Config  *config.AppConfig
	Storage storage.Storage
	Client  authclient.Client
	Logger  *zerolog.Logger
	Out     io.Writer
	Now     func() time.Time
}

// NewRootCommand builds the command tree.
func NewRootCommand(deps Deps) *cobra.Command {
	a := &app{deps: deps}

	root := &cobra.Command{
		Use:   "sessionctl",
		Short: "Drive a NutraCall client session from the terminal",
		Long: `sessionctl signs in to NutraCall, keeps the session in durable storage
and answers route-guard questions about it.

Examples:
  sessionctl login --email usuario@nutracall.com --password secret
  sessionctl whoami
  sessionctl visit /admin --role admin --role super_admin
  sessionctl serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default is ./config.yaml or $XDG_CONFIG_HOME/nutracall/config.yaml)")

	if deps.Out != nil {
		root.SetOut(deps.Out)
		root.SetErr(deps.Out)
	}

	root.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newUpdateCmd(a),
		newVisitCmd(a),
		newServeCmd(a),
	)
	return root
}

// Execute runs the command tree with process defaults.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the command tree with ctx as the command context.
func ExecuteContext(ctx context.Context) error {
	root := NewRootCommand(Deps{Out: os.Stdout})
	return root.ExecuteContext(ctx)
}
