package cli

import (
	"encoding/json"
	"fmt"

	"github.com/MrEthical07/goSession/forms"
	"github.com/MrEthical07/goSession/navigation"
	"github.com/MrEthical07/goSession/session"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password, from string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session",
		Long: `Sign in with email and password. On success the token and profile are
written to the configured storage and the command prints where the
dashboard would land (the --from intent, or home).

Examples:
  sessionctl login --email usuario@nutracall.com --password secret
  sessionctl login --email usuario@nutracall.com --password secret --from /agents`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			view := navigation.At(a.cfg.Session.LoginPath)
			if from != "" {
				if !navigation.IsLocalPath(from) {
					return fmt.Errorf("--from must be a local path, got %q", from)
				}
				view = view.WithFrom(navigation.At(from))
			}

			ws, err := a.open(ctx, cmd, view)
			if err != nil {
				return err
			}
			defer ws.close()

			form := forms.NewLoginForm(ws.store, ws.history, ws.toasts, ws.routes, view)
			if err := form.Submit(ctx, email, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "-> %s\n", ws.history.Current().URL())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&from, "from", "", "location to return to after signing in")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ws, err := a.open(ctx, cmd, navigation.At("/signup"))
			if err != nil {
				return err
			}
			defer ws.close()

			form := forms.NewSignupForm(ws.store, ws.history, ws.toasts, ws.routes)
			if err := form.Submit(ctx, email, password, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "-> %s\n", ws.history.Current().URL())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (at least 6 characters)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ws, err := a.open(ctx, cmd, navigation.At(a.cfg.Session.HomePath))
			if err != nil {
				return err
			}
			defer ws.close()

			forms.Logout(ctx, ws.store, ws.history, ws.toasts, ws.routes)
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the restored session as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ws, err := a.open(ctx, cmd, navigation.At(a.cfg.Session.HomePath))
			if err != nil {
				return err
			}
			defer ws.close()

			user := ws.store.User()
			if user == nil {
				return ErrNotSignedIn
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(user)
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Patch the persisted profile",
		Long: `Merge the given fields into the persisted profile. Only flags that are
set are changed.

Examples:
  sessionctl update --name "Ana" --timezone Europe/Lisbon
  sessionctl update --plan pro --credits 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			patch, err := patchFromFlags(cmd)
			if err != nil {
				return err
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to update")
			}

			ws, err := a.open(ctx, cmd, navigation.At(a.cfg.Session.HomePath))
			if err != nil {
				return err
			}
			defer ws.close()

			if !ws.store.IsAuthenticated() {
				return ErrNotSignedIn
			}
			if err := ws.store.UpdateUser(ctx, patch); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "profile updated")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("name", "", "display name")
	flags.String("email", "", "email address")
	flags.String("phone", "", "phone number")
	flags.String("timezone", "", "IANA time zone")
	flags.String("language", "", "language tag")
	flags.String("avatar", "", "avatar URL")
	flags.String("role", "", "role")
	flags.String("plan", "", "plan")
	flags.Float64("credits", 0, "credit balance")
	return cmd
}

func patchFromFlags(cmd *cobra.Command) (session.Patch, error) {
	var p session.Patch
	flags := cmd.Flags()

	strField := func(name string, dst **string) {
		if flags.Changed(name) {
			v, _ := flags.GetString(name)
			*dst = &v
		}
	}
	strField("name", &p.Name)
	strField("email", &p.Email)
	strField("phone", &p.Phone)
	strField("timezone", &p.Timezone)
	strField("language", &p.Language)
	strField("avatar", &p.AvatarURL)

	if flags.Changed("role") {
		v, _ := flags.GetString("role")
		role, err := session.ParseRole(v)
		if err != nil {
			return session.Patch{}, err
		}
		p.Role = &role
	}
	if flags.Changed("plan") {
		v, _ := flags.GetString("plan")
		plan, err := session.ParsePlan(v)
		if err != nil {
			return session.Patch{}, err
		}
		p.Plan = &plan
	}
	if flags.Changed("credits") {
		v, _ := flags.GetFloat64("credits")
		p.Credits = &v
	}
	return p, nil
}
