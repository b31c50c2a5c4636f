package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alexjbarnes/folder-sync/internal/models"
	"github.com/spf13/cobra"
)

func newPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <folder-id>...",
		Short: "Publish server folders",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			if err := a.client.PublishFolders(ctx, ids); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "published %d folder(s)\n", len(ids))

			return nil
		}),
	}
}

func newUnpublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpublish <folder-id>...",
		Short: "Unpublish server folders",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			if err := a.client.UnpublishFolders(ctx, ids); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "unpublished %d folder(s)\n", len(ids))

			return nil
		}),
	}
}

func newStreamStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "stream-status <video|audio> <file-id>",
		Short:     "Report whether the HLS playlist of a media file is ready",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"video", "audio"},
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid file id %q: %w", args[1], err)
			}

			var status *models.StreamStatus

			switch args[0] {
			case "video":
				status, err = a.client.VideoStatus(ctx, id)
			case "audio":
				status, err = a.client.AudioStatus(ctx, id)
			default:
				return fmt.Errorf("unknown media kind %q, want video or audio", args[0])
			}

			if err != nil {
				return err
			}

			ready := "no"
			if status.M3U8Exists {
				ready = "yes"
			}

			renderTable(cmd.OutOrStdout(), []string{"ID", "Playlist Ready"}, [][]string{{fmt.Sprint(status.ID), ready}}, "")

			return nil
		}),
	}
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))

	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid folder id %q: %w", arg, err)
		}

		ids = append(ids, id)
	}

	return ids, nil
}
