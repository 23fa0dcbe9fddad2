package cli

import (
	"fmt"

	"github.com/MrEthical07/goSession/guard"
	"github.com/MrEthical07/goSession/navigation"
	"github.com/MrEthical07/goSession/session"
	"github.com/spf13/cobra"
)

func newVisitCmd(a *app) *cobra.Command {
	var roles []string

	cmd := &cobra.Command{
		Use:   "visit <path>",
		Short: "Ask the route guard what happens at path",
		Long: `Evaluate the route guard for path against the persisted session and
print the outcome followed by the resulting location.

Examples:
  sessionctl visit /agents
  sessionctl visit /admin --role admin --role super_admin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			at := navigation.At(args[0])
			if !navigation.IsLocalPath(at.Path) {
				return fmt.Errorf("path must be local, got %q", args[0])
			}
			required := make([]session.Role, 0, len(roles))
			for _, r := range roles {
				role, err := session.ParseRole(r)
				if err != nil {
					return err
				}
				required = append(required, role)
			}

			ws, err := a.open(ctx, cmd, at)
			if err != nil {
				return err
			}
			defer ws.close()

			d := guard.NewGate(ws.store, ws.history, ws.routes).Enter(ctx, at, required...)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", d.Outcome, ws.history.Current().URL())
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role allowed to view the path (repeatable)")
	return cmd
}
