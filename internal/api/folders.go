package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/alexjbarnes/folder-sync/internal/models"
)

// PublishFolders makes the given folders public.
func (c *Client) PublishFolders(ctx context.Context, ids []int64) error {
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/folders/publish", models.FolderIDsRequest{ID: ids}, nil); err != nil {
		return fmt.Errorf("publishing folders: %w", err)
	}

	return nil
}

// UnpublishFolders makes the given folders private again.
func (c *Client) UnpublishFolders(ctx context.Context, ids []int64) error {
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/folders/unpublish", models.FolderIDsRequest{ID: ids}, nil); err != nil {
		return fmt.Errorf("unpublishing folders: %w", err)
	}

	return nil
}

// VideoStatus reports whether the HLS playlist of a video file is ready.
func (c *Client) VideoStatus(ctx context.Context, id int64) (*models.StreamStatus, error) {
	return c.streamStatus(ctx, "video_files", id)
}

// AudioStatus reports whether the HLS playlist of an audio file is ready.
func (c *Client) AudioStatus(ctx context.Context, id int64) (*models.StreamStatus, error) {
	return c.streamStatus(ctx, "audio_files", id)
}

func (c *Client) streamStatus(ctx context.Context, kind string, id int64) (*models.StreamStatus, error) {
	var status models.StreamStatus

	path := "/" + kind + "/" + strconv.FormatInt(id, 10) + ".json"
	if err := c.do(ctx, http.MethodGet, c.baseURL+path, nil, &status); err != nil {
		return nil, fmt.Errorf("checking %s %d: %w", kind, id, err)
	}

	return &status, nil
}
