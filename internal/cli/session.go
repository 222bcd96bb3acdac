package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"trackerdesk/internal/api"
	"trackerdesk/internal/session"
)

func (e *env) sessionCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "session", Short: "Sign in and out"}

	var access, refresh string
	login := &cobra.Command{
		Use:   "login",
		Short: "Print the Google sign-in link, or store the tokens it returned",
		Long: `Without flags, login prints the Google sign-in link. After signing in the
browser lands on a page carrying the tokens; pass them with --access and
--refresh to store them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			if access == "" {
				u, err := a.Client.LoginURL(cmd.Context())
				if err != nil {
					return err
				}
				printInfo(e.out, "Sign in with Google, then run login again with --access:")
				_, err = fmt.Fprintln(e.out, u.URL)
				return err
			}
			if err := a.Tokens.SetTokens(cmd.Context(), access, refresh); err != nil {
				return err
			}
			a.Toasts.Success("Signed in.")
			return nil
		},
	}
	login.Flags().StringVar(&access, "access", "", "access token")
	login.Flags().StringVar(&refresh, "refresh", "", "refresh token")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			if err := a.Tokens.Clear(cmd.Context()); err != nil {
				return err
			}
			a.Toasts.Info("Signed out.")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show whether a usable token is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			_, err = a.Tokens.Token(ctx)
			if err != nil && !errors.Is(err, session.ErrNoToken) {
				return err
			}
			signedIn := err == nil
			expires := "-"
			if exp, ok, err := a.Tokens.Expiry(ctx); err == nil && ok {
				expires = fmt.Sprintf("%s (%s)", exp.In(a.Settings().Location).Format("2006-01-02 15:04"), humanize.RelTime(exp, timeNow(), "ago", "from now"))
			}
			rt, err := a.Tokens.RefreshToken(ctx)
			if err != nil {
				return err
			}
			return printPairs(e.out, [][2]string{
				{"Signed in", yesNo(signedIn)},
				{"Expired", yesNo(signedIn && a.Tokens.IsExpired(ctx))},
				{"Expires", expires},
				{"Refresh token", yesNo(rt != "")},
			})
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			u, err := a.Client.Me(cmd.Context())
			if errors.Is(err, api.ErrUnauthorized) {
				return errors.New("not signed in or session expired; run: trackerdesk session login")
			}
			if err != nil {
				return err
			}
			return printPairs(e.out, [][2]string{
				{"Name", orDash(u.DisplayName)},
				{"Email", u.Email},
				{"WhatsApp", orDash(u.WhatsAppPhone)},
				{"WhatsApp verified", yesNo(u.WhatsAppVerified)},
			})
		},
	}

	whatsapp := &cobra.Command{
		Use:   "whatsapp <phone>",
		Short: "Link a WhatsApp number to the account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			if err := a.Client.LinkWhatsApp(cmd.Context(), strings.TrimSpace(args[0])); err != nil {
				a.Toasts.Error("Failed to link WhatsApp.")
				return err
			}
			a.Toasts.Success("WhatsApp linked.")
			return nil
		},
	}

	cmd.AddCommand(login, logout, status, whoami, whatsapp)
	return cmd
}

func (e *env) prefsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "prefs", Short: "Language and theme"}

	lang := &cobra.Command{
		Use:       "lang [en|cs|toggle]",
		Short:     "Show or set the language",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"en", "cs", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			var l session.Language
			switch {
			case len(args) == 0:
				l, err = a.Prefs.Language(ctx)
			case args[0] == "toggle":
				l, err = a.Prefs.ToggleLanguage(ctx)
			default:
				if l, err = session.ParseLanguage(args[0]); err == nil {
					err = a.Prefs.SetLanguage(ctx, l)
				}
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(e.out, l)
			return err
		},
	}

	theme := &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or set the theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"dark", "light", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			var th session.Theme
			switch {
			case len(args) == 0:
				th, err = a.Prefs.Theme(ctx)
			case args[0] == "toggle":
				th, err = a.Prefs.ToggleTheme(ctx)
			default:
				if th, err = session.ParseTheme(args[0]); err == nil {
					err = a.Prefs.SetTheme(ctx, th)
				}
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(e.out, th)
			return err
		},
	}

	cmd.AddCommand(lang, theme)
	return cmd
}

func (e *env) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			h, err := a.Client.Health(cmd.Context())
			if err != nil {
				return err
			}
			return printPairs(e.out, [][2]string{
				{"Status", h.Status},
				{"Message", orDash(h.Message)},
				{"Version", orDash(h.Version)},
			})
		},
	}
}
