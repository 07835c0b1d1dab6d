package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"encore/internal/platform"
	"encore/internal/submit"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit releases to the platform",
	}
	submitCmd.AddCommand(newSubmitSongCommand(ctx))
	submitCmd.AddCommand(newSubmitVideoCommand(ctx))
	return submitCmd
}

func newSubmitSongCommand(ctx *commandContext) *cobra.Command {
	draft := &submit.SongDraft{}
	var trackFlags []string
	var admin bool

	cmd := &cobra.Command{
		Use:   "song",
		Short: "Submit a song single or album",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracks, err := parseTrackFlags(trackFlags)
			if err != nil {
				return err
			}
			draft.Tracks = tracks

			orch, cache, err := ctx.newOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			defer cache.Close()

			stop := watchProgress(orch.Tracker(), "uploading")
			var record *platform.SubmissionRecord
			if admin {
				record, err = orch.AdminEditSong(cmd.Context(), draft)
			} else {
				record, err = orch.SubmitSong(cmd.Context(), draft)
			}
			stop()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Submitted %s (status %s)\n", record.ID, record.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.ID, "edit", "", "Edit the stored submission with this id")
	cmd.Flags().StringVar(&draft.Title, "title", "", "Release title")
	cmd.Flags().StringVar(&draft.ArtistName, "artist", "", "Artist name")
	cmd.Flags().StringVar(&draft.Genre, "genre", "", "Genre")
	cmd.Flags().StringVar(&draft.ReleaseType, "release-type", "single", "single or album")
	cmd.Flags().StringVar(&draft.ReleaseDate, "release-date", "", "Release date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&draft.ArtworkPath, "artwork", "", "Path to cover artwork")
	cmd.Flags().StringVar(&draft.AudioPath, "audio", "", "Path to the audio file (single releases)")
	cmd.Flags().StringVar(&draft.ExistingArtworkURL, "artwork-url", "", "Reuse stored artwork on an edit")
	cmd.Flags().StringVar(&draft.ExistingAudioURL, "audio-url", "", "Reuse stored audio on an edit")
	cmd.Flags().StringArrayVar(&trackFlags, "track", nil, `Album track as "Title|Artist|audio-path" (repeatable)`)
	cmd.Flags().BoolVar(&admin, "admin", false, "Edit another user's submission (admin role)")

	return cmd
}

// parseTrackFlags converts repeated --track values into track drafts. The
// format is "Title|Artist|audio-path".
func parseTrackFlags(values []string) ([]submit.TrackDraft, error) {
	tracks := make([]submit.TrackDraft, 0, len(values))
	for i, value := range values {
		parts := strings.SplitN(value, "|", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf(`track %d: expected "Title|Artist|audio-path", got %q`, i+1, value)
		}
		tracks = append(tracks, submit.TrackDraft{
			Title:     strings.TrimSpace(parts[0]),
			Artist:    strings.TrimSpace(parts[1]),
			AudioPath: strings.TrimSpace(parts[2]),
		})
	}
	return tracks, nil
}

func newSubmitVideoCommand(ctx *commandContext) *cobra.Command {
	draft := &submit.VideoDraft{}

	cmd := &cobra.Command{
		Use:   "video",
		Short: "Submit or update a video release",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cache, err := ctx.newOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			defer cache.Close()

			stop := watchProgress(orch.Tracker(), "uploading")
			record, err := orch.SubmitVideo(cmd.Context(), draft)
			stop()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Submitted %s (status %s)\n", record.ID, record.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.ID, "edit", "", "Edit the stored submission with this id")
	cmd.Flags().StringVar(&draft.Title, "title", "", "Video title")
	cmd.Flags().StringVar(&draft.ArtistName, "artist", "", "Artist name")
	cmd.Flags().StringVar(&draft.Description, "description", "", "Description")
	cmd.Flags().StringVar(&draft.VideoPath, "video", "", "Path to the video file")
	cmd.Flags().StringVar(&draft.ThumbnailPath, "thumbnail", "", "Path to the thumbnail image")
	cmd.Flags().StringVar(&draft.ExistingVideoURL, "video-url", "", "Reuse the stored video on an edit")
	cmd.Flags().StringVar(&draft.ExistingThumbnailURL, "thumbnail-url", "", "Reuse the stored thumbnail on an edit")

	return cmd
}
