package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/iris/internal/google"
)

func newAuthCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Calendar access",
		Long: `Walk through the Google OAuth consent flow and store the token.

The OAuth client comes from the credentials file (calendar.credentials_file,
GOOGLE_CREDENTIALS_FILE or --config). The token is written to
calendar.token_file with owner-only permissions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			conf, err := google.LoadOAuthConfig(cfg.Calendar.CredentialsFile)
			if err != nil {
				return err
			}

			tokens := google.NewFileTokenProvider(cfg.Calendar.TokenFile)
			out := cmd.OutOrStdout()
			if tokens.HasToken() && !force {
				fmt.Fprintf(out, "A token is already stored at %s. Use --force to replace it.\n", tokens.Path())
				return nil
			}

			if _, err := google.AuthorizeInteractive(cmd.Context(), conf, tokens, os.Stdin, out); err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}
			fmt.Fprintf(out, "Token saved to %s\n", tokens.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing token")
	return cmd
}
