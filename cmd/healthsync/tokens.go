package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/2beens/healthzones/internal/providers"
	"github.com/2beens/healthzones/internal/tokenstore"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Manage the stored provider tokens",
}

var tokensRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a token refresh for both providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		b, err := openBackend(ctx, "")
		if err != nil {
			return err
		}
		defer b.Close()

		out := cmd.OutOrStdout()
		var failed int
		for _, p := range providers.All {
			token, err := b.tokens.Refresh(ctx, p)
			switch {
			case errors.Is(err, tokenstore.ErrTokenNotFound):
				_, _ = fmt.Fprintf(out, "%-6s %s\n", p, color.New(color.Faint).Sprint("not connected"))
			case err != nil:
				failed++
				_, _ = fmt.Fprintf(out, "%-6s %s %s\n", p, color.RedString("failed:"), err)
			default:
				_, _ = fmt.Fprintf(out, "%-6s %s %s\n", p, color.GreenString("refreshed"), expiry(token.ExpiresAt))
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d provider token refresh(es) failed", failed)
		}
		return nil
	},
}

var tokensStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which providers are connected",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		b, err := openBackend(ctx, "")
		if err != nil {
			return err
		}
		defer b.Close()

		status, err := b.tokens.Status(ctx)
		if err != nil {
			return err
		}
		for _, p := range providers.All {
			token := status[p]
			if token == nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-6s %s\n", p, color.New(color.Faint).Sprint("not connected"))
				continue
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-6s %s %s\n", p, color.GreenString("connected"), expiry(token.ExpiresAt))
		}
		return nil
	},
}

func expiry(expiresAt *time.Time) string {
	if expiresAt == nil {
		return "(no expiry)"
	}
	return fmt.Sprintf("(expires %s)", expiresAt.Local().Format(time.DateTime))
}

func init() {
	tokensCmd.AddCommand(tokensRefreshCmd, tokensStatusCmd)
	rootCmd.AddCommand(tokensCmd)
}
