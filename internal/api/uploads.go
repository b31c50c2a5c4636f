package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	syncerrors "github.com/alexjbarnes/folder-sync/internal/errors"
	"github.com/alexjbarnes/folder-sync/internal/models"
)

// Upload sends one envelope to the ingestion endpoint and returns the
// server's acknowledgement.
func (c *Client) Upload(ctx context.Context, env *models.Envelope) (*models.UploadAck, error) {
	var ack models.UploadAck
	if err := c.do(ctx, http.MethodPost, c.uploadURL, env, &ack); err != nil {
		return nil, fmt.Errorf("uploading %s: %w", env.FilePath, err)
	}

	if ack.UUID == "" && ack.ID == 0 {
		return nil, fmt.Errorf("uploading %s: %w: empty acknowledgement", env.FilePath, syncerrors.ErrAPIResponse)
	}

	return &ack, nil
}

// EncodeFolderIDs renders folder ids the way the list endpoint expects
// them: comma-joined, then standard base64.
func EncodeFolderIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}

	return base64.StdEncoding.EncodeToString([]byte(strings.Join(parts, ",")))
}

// ListUploads returns the upload records filed under the given folders.
func (c *Client) ListUploads(ctx context.Context, folderIDs []int64) ([]models.UploadWithFiles, error) {
	q := url.Values{}
	q.Set("folderIds", EncodeFolderIDs(folderIDs))

	var uploads []models.UploadWithFiles
	if err := c.do(ctx, http.MethodGet, c.uploadURL+"?"+q.Encode(), nil, &uploads); err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}

	return uploads, nil
}

// ListUploadsByUUID queries the legacy list endpoint with client-minted
// upload uuids. Servers that echo uuids in acks serve ListUploads too.
func (c *Client) ListUploadsByUUID(ctx context.Context, uuids []string) ([]models.UploadWithFiles, error) {
	req := models.UploadUUIDsRequest{UUIDs: uuids}
	if req.UUIDs == nil {
		req.UUIDs = []string{}
	}

	var uploads []models.UploadWithFiles
	if err := c.do(ctx, http.MethodPost, c.uploadURL+"/list", req, &uploads); err != nil {
		return nil, fmt.Errorf("listing uploads by uuid: %w", err)
	}

	return uploads, nil
}
