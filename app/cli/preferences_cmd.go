package main

import (
	"github.com/spf13/cobra"
	"github.com/yoockh/wacrm/internal/models"
	pgrepo "github.com/yoockh/wacrm/internal/repositories/postgres"
	"github.com/yoockh/wacrm/internal/services"
)

func newPreferencesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preferences",
		Short: "Manage user preferences",
	}
	cmd.AddCommand(newPreferencesSyncCmd())
	return cmd
}

func newPreferencesSyncCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Ensure a preference row exists for a user and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect()
			if err != nil {
				return err
			}
			if userID == "" {
				userID = e.cfg.Auth.DefaultPrincipalID
			}

			svc := services.NewPreferenceService(pgrepo.NewPreferenceRepo(e.db))
			pref, err := svc.Sync(cmd.Context(), models.Principal{UserID: userID, Role: models.RoleService})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), pref)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id (defaults to DEFAULT_PRINCIPAL_ID)")
	return cmd
}
