package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"encore/internal/submit"
)

func newPodcastCommand(ctx *commandContext) *cobra.Command {
	podcastCmd := &cobra.Command{
		Use:   "podcast",
		Short: "Manage podcast shows and episodes",
	}
	podcastCmd.AddCommand(newCreateShowCommand(ctx))
	podcastCmd.AddCommand(newCreateEpisodeCommand(ctx))
	return podcastCmd
}

func newCreateShowCommand(ctx *commandContext) *cobra.Command {
	draft := &submit.ShowDraft{}

	cmd := &cobra.Command{
		Use:   "create-show",
		Short: "Create or update a podcast show",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cache, err := ctx.newOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			defer cache.Close()

			stop := watchProgress(orch.Tracker(), "uploading")
			record, err := orch.CreateShow(cmd.Context(), draft)
			stop()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Show %s created (status %s)\n", record.ID, record.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.ID, "edit", "", "Edit the stored show with this id")
	cmd.Flags().StringVar(&draft.Title, "title", "", "Show title")
	cmd.Flags().StringVar(&draft.Author, "author", "", "Show author")
	cmd.Flags().StringVar(&draft.Description, "description", "", "Show description")
	cmd.Flags().StringVar(&draft.Language, "language", "", "Show language as a BCP 47 tag, e.g. en-US")
	cmd.Flags().StringVar(&draft.Category, "category", "", "Directory category")
	cmd.Flags().StringVar(&draft.ArtworkPath, "artwork", "", "Path to show artwork")
	cmd.Flags().StringVar(&draft.ExistingArtworkURL, "artwork-url", "", "Reuse stored artwork on an edit")

	return cmd
}

func newCreateEpisodeCommand(ctx *commandContext) *cobra.Command {
	draft := &submit.EpisodeDraft{}

	cmd := &cobra.Command{
		Use:   "create-episode",
		Short: "Create or update a podcast episode",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cache, err := ctx.newOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			defer cache.Close()

			stop := watchProgress(orch.Tracker(), "uploading")
			record, err := orch.CreateEpisode(cmd.Context(), draft)
			stop()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Episode %s created (status %s)\n", record.ID, record.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.ID, "edit", "", "Edit the stored episode with this id")
	cmd.Flags().StringVar(&draft.ShowID, "show", "", "Id of the show the episode belongs to")
	cmd.Flags().StringVar(&draft.Title, "title", "", "Episode title")
	cmd.Flags().StringVar(&draft.Description, "description", "", "Episode description")
	cmd.Flags().StringVar(&draft.AudioPath, "audio", "", "Path to the episode audio")
	cmd.Flags().StringVar(&draft.ArtworkPath, "artwork", "", "Path to episode artwork")
	cmd.Flags().StringVar(&draft.ExistingAudioURL, "audio-url", "", "Reuse stored audio on an edit")
	cmd.Flags().StringVar(&draft.ExistingArtworkURL, "artwork-url", "", "Reuse stored artwork on an edit")

	return cmd
}
