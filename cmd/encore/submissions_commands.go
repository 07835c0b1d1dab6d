package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"encore/internal/logging"
	"encore/internal/platform"
	"encore/internal/querycache"
)

func newSubmissionsCommand(ctx *commandContext) *cobra.Command {
	submissionsCmd := &cobra.Command{
		Use:   "submissions",
		Short: "Inspect submissions",
	}
	submissionsCmd.AddCommand(newSubmissionsListCommand(ctx))
	return submissionsCmd
}

func newSubmissionsListCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var kind string
	var refresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer cache.Close()

			opts := platform.ListOptions{All: all, Kind: platform.SubmissionKind(kind)}
			records, err := loadSubmissions(cmd.Context(), ctx, cache, opts, refresh)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No submissions found")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.ID, string(rec.Kind), rec.Title, rec.ArtistName, rec.Status, rec.SubmittedAt,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				renderTable([]string{"ID", "Kind", "Title", "Artist", "Status", "Submitted"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "List every user's submissions (admin role)")
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by kind (song, podcast_show, podcast_episode, video, blog_post)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the local cache")

	return cmd
}

// loadSubmissions serves an unfiltered listing from the cache when possible
// and refreshes the cache on a miss. Kind-filtered listings always hit the
// platform; only the two canonical listings are cached.
func loadSubmissions(ctx context.Context, cmdCtx *commandContext, cache *querycache.Store, opts platform.ListOptions, refresh bool) ([]platform.SubmissionRecord, error) {
	key := querycache.KeyMySubmissions
	if opts.All {
		key = querycache.KeyAllSubmissions
	}
	cacheable := opts.Kind == ""

	if cacheable && !refresh {
		var cached []platform.SubmissionRecord
		if hit, err := cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	client, err := cmdCtx.newClient()
	if err != nil {
		return nil, err
	}
	records, err := client.ListSubmissions(ctx, opts)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := cache.Put(ctx, key, records); err != nil {
			cmdCtx.ensureLogger().Warn("cache store failed", logging.Error(err))
		}
	}
	return records, nil
}
