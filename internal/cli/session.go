package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or reset the cached ENS session token",
	}

	cmd.AddCommand(newSessionShowCommand())
	cmd.AddCommand(newSessionInvalidateCommand())

	return cmd
}

type sessionInfo struct {
	TokenType string    `json:"token_type"`
	Expiry    time.Time `json:"expiry"`
	ExpiresIn string    `json:"expires_in"`
}

// session show command
func newSessionShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the session token expiry, authenticating if needed",
		Long:  `Show the type and expiry of the current session token. The token itself is not printed.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx := getCliContext(cmd)
			tok, err := cctx.Client.Session().Token()
			if err != nil {
				return fmt.Errorf("failed to get session token: %w", err)
			}
			return printJSON(cmd, sessionInfo{
				TokenType: tok.TokenType,
				Expiry:    tok.Expiry.UTC(),
				ExpiresIn: time.Until(tok.Expiry).Round(time.Second).String(),
			})
		},
	}
}

// session invalidate command
func newSessionInvalidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate",
		Short: "Mark the cached session token as expired",
		Long:  `Mark the cached session token as expired so the next call by any client sharing the cache authenticates again.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx := getCliContext(cmd)
			if err := cctx.Client.Session().Invalidate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to invalidate session: %w", err)
			}
			cctx.Logger.Info("Session token invalidated")
			return printJSON(cmd, map[string]bool{"invalidated": true})
		},
	}
}
