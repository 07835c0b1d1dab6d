package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"encore/internal/submit"
)

func newBlogCommand(ctx *commandContext) *cobra.Command {
	blogCmd := &cobra.Command{
		Use:   "blog",
		Short: "Publish blog posts",
	}
	blogCmd.AddCommand(newBlogPostCommand(ctx))
	return blogCmd
}

func newBlogPostCommand(ctx *commandContext) *cobra.Command {
	draft := &submit.BlogDraft{}
	var bodyFile string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish a blog post",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bodyFile != "" {
				data, err := os.ReadFile(bodyFile)
				if err != nil {
					return fmt.Errorf("read body file: %w", err)
				}
				draft.Body = strings.TrimSpace(string(data))
			}

			orch, cache, err := ctx.newOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			defer cache.Close()

			stop := watchProgress(orch.Tracker(), "uploading")
			record, err := orch.PostBlog(cmd.Context(), draft)
			stop()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Post %s published (status %s)\n", record.ID, record.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.ID, "edit", "", "Edit the stored post with this id")
	cmd.Flags().StringVar(&draft.Title, "title", "", "Post title")
	cmd.Flags().StringVar(&draft.Body, "body", "", "Post body text")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "Read the post body from a file")
	cmd.Flags().StringVar(&draft.HeaderPath, "header", "", "Path to the header image")
	cmd.Flags().StringVar(&draft.ExistingHeaderURL, "header-url", "", "Reuse the stored header image on an edit")

	return cmd
}
