package main

import (
	"github.com/spf13/cobra"
	"github.com/yoockh/wacrm/internal/models"
	pgrepo "github.com/yoockh/wacrm/internal/repositories/postgres"
	"github.com/yoockh/wacrm/internal/services"
)

func newCredentialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage stored provider API keys",
	}
	cmd.AddCommand(newCredentialSetCmd(), newCredentialStatusCmd())
	return cmd
}

func newCredentialSetCmd() *cobra.Command {
	var keyType string

	cmd := &cobra.Command{
		Use:   "set <key_name> <key_value>",
		Short: "Store a credential (upsert by key name)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect()
			if err != nil {
				return err
			}

			// no cache here; a running server picks the change up after CREDENTIAL_CACHE_TTL
			svc := services.NewCredentialService(pgrepo.NewCredentialRepo(e.db), nil, nil, 0, e.log)
			cred, err := svc.Upsert(cmd.Context(), models.SystemPrincipal(e.cfg.Auth.DefaultPrincipalID), args[0], args[1], keyType)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cred)
		},
	}

	cmd.Flags().StringVar(&keyType, "type", "", "Key type (openai|gemini|elevenlabs); derived from the name when empty")
	return cmd
}

func newCredentialStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which provider credentials resolve, and from where",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect()
			if err != nil {
				return err
			}

			svc := services.NewCredentialService(pgrepo.NewCredentialRepo(e.db), nil, map[string]string{
				models.CredentialOpenAI:     e.cfg.OpenAI.APIKey,
				models.CredentialGemini:     e.cfg.Gemini.APIKey,
				models.CredentialElevenLabs: e.cfg.ElevenLabs.APIKey,
			}, 0, e.log)
			st, err := svc.Status(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), st)
		},
	}
}
