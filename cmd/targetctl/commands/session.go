package commands

import (
	"bufio"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"targetkit/internal/session"
	"targetkit/pkg/secrets"
)

func newSessionCommand(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Helpers for the operator login",
	}

	var password string
	var cost int
	hash := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash suitable for AUTH_PASSWORD_HASH",
		Long:  "Reads the password from --password, or from the first line of stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw := password
			if pw == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no password given")
				}
				pw = strings.TrimSpace(line)
			}
			if pw == "" {
				return errors.New("no password given")
			}
			h, err := secrets.Hash(pw, cost)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write([]byte(h + "\n"))
			return err
		},
	}
	hash.Flags().StringVar(&password, "password", "", "Password to hash (prefer stdin)")
	hash.Flags().IntVar(&cost, "cost", secrets.DefaultCost, "bcrypt cost")

	var user string
	var ttl time.Duration
	token := &cobra.Command{
		Use:   "token",
		Short: "Issue a session cookie value for scripted API access",
		Long: `Signs a session token with SESSION_SECRET. Send it as the
` + session.CookieName + ` cookie.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth := rt.Config.Auth
			if auth.SessionSecret == "" {
				return errors.New("SESSION_SECRET must be set to issue tokens the server will accept")
			}
			if user == "" {
				user = auth.User
			}
			if user == "" {
				return errors.New("--user is required when AUTH_USER is not set")
			}
			if ttl <= 0 {
				ttl = auth.SessionTTL
			}
			tok, expiresAt, err := session.NewTokenService(auth.SessionSecret, ttl).Issue(user)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := out.Write([]byte(tok + "\n")); err != nil {
				return err
			}
			warn(cmd.ErrOrStderr(), "expires %s; use as: Cookie: %s=<token>", expiresAt.UTC().Format(time.RFC3339), session.CookieName)
			return nil
		},
	}
	token.Flags().StringVar(&user, "user", "", "Operator name (defaults to AUTH_USER)")
	token.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to SESSION_TTL)")

	cmd.AddCommand(hash, token)
	return cmd
}
