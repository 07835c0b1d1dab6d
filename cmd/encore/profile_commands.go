package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"encore/internal/submit"
)

func newProfileCommand(ctx *commandContext) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the artist profile",
	}
	profileCmd.AddCommand(newProfileUpdateCommand(ctx))
	return profileCmd
}

func newProfileUpdateCommand(ctx *commandContext) *cobra.Command {
	draft := &submit.ProfileDraft{}

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the signed-in artist's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cache, err := ctx.newOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			defer cache.Close()

			stop := watchProgress(orch.Tracker(), "uploading")
			record, err := orch.SaveProfile(cmd.Context(), draft)
			stop()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Profile saved (%s)\n", record.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.ArtistID, "artist", "", "Edit another artist's profile (admin role)")
	cmd.Flags().StringVar(&draft.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&draft.Biography, "bio", "", "Biography text")
	cmd.Flags().StringVar(&draft.Website, "website", "", "Website URL")
	cmd.Flags().StringVar(&draft.PhotoPath, "photo", "", "Path to the profile photo")
	cmd.Flags().StringVar(&draft.ExistingPhotoURL, "photo-url", "", "Reuse the stored photo")

	return cmd
}
