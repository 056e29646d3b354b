package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/lingo/internal/auth"
	"github.com/hay-kot/lingo/internal/printer"
	"github.com/hay-kot/lingo/internal/styles"
)

type AuthCmd struct {
	flags *Flags

	email    string
	password string
}

// NewAuthCmd creates a new auth command
func NewAuthCmd(flags *Flags) *AuthCmd {
	return &AuthCmd{flags: flags}
}

// Register adds the auth command to the application
func (cmd *AuthCmd) Register(app *cli.Command) *cli.Command {
	credentialFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "email",
			Aliases:     []string{"e"},
			Usage:       "account email",
			Sources:     cli.EnvVars("LINGO_EMAIL"),
			Destination: &cmd.email,
		},
		&cli.StringFlag{
			Name:        "password",
			Usage:       "account password (prompted when omitted)",
			Sources:     cli.EnvVars("LINGO_PASSWORD"),
			Destination: &cmd.password,
		},
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "auth",
		Usage: "Sign up, sign in and out",
		Description: `Manages the signed-in account. Missing credentials are prompted for
when stdin is a terminal.`,
		Commands: []*cli.Command{
			{
				Name:   "signup",
				Usage:  "Create an account and sign in",
				Flags:  credentialFlags,
				Action: cmd.runSignUp,
			},
			{
				Name:    "login",
				Aliases: []string{"signin"},
				Usage:   "Sign in",
				Flags:   credentialFlags,
				Action:  cmd.runSignIn,
			},
			{
				Name:    "logout",
				Aliases: []string{"signout"},
				Usage:   "Sign out",
				Action:  cmd.runSignOut,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in account",
				Action: cmd.runWhoAmI,
			},
		},
	})

	return app
}

func (cmd *AuthCmd) runSignUp(ctx context.Context, _ *cli.Command) error {
	if err := cmd.prompt(true); err != nil {
		return err
	}

	user, err := cmd.flags.Service.SignUp(ctx, cmd.email, cmd.password)
	if err != nil {
		return authError("sign up", err)
	}

	printer.Ctx(ctx).Successf("Signed up as %s", user.Email)
	return nil
}

func (cmd *AuthCmd) runSignIn(ctx context.Context, _ *cli.Command) error {
	if err := cmd.prompt(false); err != nil {
		return err
	}

	user, err := cmd.flags.Service.SignIn(ctx, cmd.email, cmd.password)
	if err != nil {
		return authError("sign in", err)
	}

	printer.Ctx(ctx).Successf("Signed in as %s", user.Email)
	return nil
}

func (cmd *AuthCmd) runSignOut(ctx context.Context, _ *cli.Command) error {
	if err := cmd.flags.Service.SignOut(ctx); err != nil {
		return authError("sign out", err)
	}

	printer.Ctx(ctx).Successf("Signed out")
	return nil
}

func (cmd *AuthCmd) runWhoAmI(ctx context.Context, c *cli.Command) error {
	user, err := cmd.flags.Service.CurrentUser(ctx)
	if auth.HasReason(err, auth.ReasonNotSignedIn) {
		printer.Ctx(ctx).Infof("Not signed in")
		return nil
	}
	if err != nil {
		return authError("current user", err)
	}

	_, err = fmt.Fprintf(c.Root().Writer, "%s (%s, %s)\n", user.Email, user.UID, user.Provider)
	return err
}

// prompt asks for whatever credentials were not passed as flags.
func (cmd *AuthCmd) prompt(confirm bool) error {
	if cmd.email != "" && cmd.password != "" {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("--email and --password are required when stdin is not a terminal")
	}

	var repeat string
	fields := []huh.Field{
		huh.NewInput().
			Title("Email").
			Value(&cmd.email).
			Validate(required("email")),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&cmd.password).
			Validate(minLength(auth.MinPasswordLength)),
	}
	if confirm {
		fields = append(fields, huh.NewInput().
			Title("Repeat password").
			EchoMode(huh.EchoModePassword).
			Value(&repeat).
			Validate(func(s string) error {
				if s != cmd.password {
					return errors.New("passwords do not match")
				}
				return nil
			}))
	}

	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(styles.FormTheme()).Run()
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func minLength(n int) func(string) error {
	return func(s string) error {
		if len(s) < n {
			return fmt.Errorf("must be at least %d characters", n)
		}
		return nil
	}
}

// authError maps auth reasons to messages a user can act on.
func authError(action string, err error) error {
	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		return fmt.Errorf("%s: %w", action, err)
	}

	switch authErr.Reason {
	case auth.ReasonInvalidEmail:
		return fmt.Errorf("%s: that email address is not valid", action)
	case auth.ReasonWeakPassword:
		return fmt.Errorf("%s: password must be at least %d characters", action, auth.MinPasswordLength)
	case auth.ReasonEmailInUse:
		return fmt.Errorf("%s: an account with that email already exists", action)
	case auth.ReasonInvalidCredentials:
		return fmt.Errorf("%s: wrong email or password", action)
	case auth.ReasonNotSignedIn:
		return fmt.Errorf("%s: not signed in", action)
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}
