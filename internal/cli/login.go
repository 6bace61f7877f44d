package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/the-momentum/open-wearables-sync/internal/credentials"
	"github.com/the-momentum/open-wearables-sync/models"
)

// NewLoginCommand creates the credential-setup command. Obtaining the
// tokens themselves happens outside the engine; this just stores what the
// user was issued.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		accessToken  string
		refreshToken string
		apiKey       string
		userKey      string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store credentials for the collection endpoint",
		Long: `Store a bearer token pair or an API key for subsequent syncs.

With --token, the user key is read from the token's "sub" claim. With
--api-key, --user is required because a static key carries no identity.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}

			cred := models.Credential{Host: a.cfg.Remote.BaseURL}
			switch {
			case accessToken != "":
				key, err := credentials.UserKeyFromToken(accessToken)
				if err != nil {
					return fmt.Errorf("parse access token: %w", err)
				}
				cred.UserKey = key
				cred.AccessToken = accessToken
				cred.RefreshToken = refreshToken
			case apiKey != "":
				if userKey == "" {
					return errors.New("--user is required with --api-key")
				}
				cred.UserKey = userKey
				cred.APIKey = apiKey
			default:
				return errors.New("either --token or --api-key is required")
			}

			if err := a.creds.Set(cred); err != nil {
				return fmt.Errorf("store credential: %w", err)
			}

			fmt.Printf("credentials stored for %s\n", cred.UserKey)
			return nil
		},
	}

	cmd.Flags().StringVar(&accessToken, "token", "", "JWT access token")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "refresh token paired with --token")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "static API key")
	cmd.Flags().StringVar(&userKey, "user", "", "user key, required with --api-key")

	return cmd
}
