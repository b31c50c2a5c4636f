package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alexjbarnes/folder-sync/internal/models"
	"github.com/spf13/cobra"
)

func newUploadsCmd() *cobra.Command {
	var (
		folderIDs []int64
		byUUID    bool
	)

	cmd := &cobra.Command{
		Use:   "uploads",
		Short: "List uploads",
		Long: `Without flags, list the acknowledgements recorded locally. With --folder,
ask the server for the files of those folders. With --by-uuid, ask the
legacy list endpoint for every locally recorded upload.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			switch {
			case len(folderIDs) > 0:
				uploads, err := a.client.ListUploads(ctx, folderIDs)
				if err != nil {
					return err
				}

				renderFiles(out, models.FlattenFiles(uploads))

				return nil

			case byUUID:
				recs, err := a.state.AllAcks()
				if err != nil {
					return fmt.Errorf("reading acks: %w", err)
				}

				uuids := make([]string, 0, len(recs))
				for _, r := range recs {
					uuids = append(uuids, r.UUID)
				}

				uploads, err := a.client.ListUploadsByUUID(ctx, uuids)
				if err != nil {
					return err
				}

				renderFiles(out, models.FlattenFiles(uploads))

				return nil
			}

			return renderLocalAcks(out, a)
		}),
	}

	cmd.Flags().Int64SliceVar(&folderIDs, "folder", nil, "server folder id to list (repeatable)")
	cmd.Flags().BoolVar(&byUUID, "by-uuid", false, "query the legacy list endpoint with the recorded uuids")

	return cmd
}

func renderLocalAcks(out io.Writer, a *app) error {
	recs, err := a.state.AllAcks()
	if err != nil {
		return fmt.Errorf("reading acks: %w", err)
	}

	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			fmt.Sprint(r.ID),
			r.UUID,
			string(r.Source),
			r.FilePath,
			r.RecordedAt.Local().Format(time.DateTime),
		})
	}

	renderTable(out, []string{"ID", "UUID", "Source", "Path", "Recorded"}, rows, "No uploads recorded.")

	return nil
}

func renderFiles(out io.Writer, files models.Files) {
	rows := make([][]string, 0, files.Len())

	for _, f := range files.Images {
		rows = append(rows, fileRow("image", f.ID, f.Folder, f.FileName, f.FileURL))
	}

	for _, f := range files.Pdfs {
		rows = append(rows, fileRow("pdf", f.ID, f.Folder, f.FileName, f.FileURL))
	}

	for _, f := range files.Audio {
		rows = append(rows, fileRow("audio", f.ID, f.Folder, f.FileName, f.FileURL))
	}

	for _, f := range files.Video {
		rows = append(rows, fileRow("video", f.ID, f.Folder, f.FileName, f.FileURL))
	}

	for _, f := range files.Text {
		rows = append(rows, fileRow("text", f.ID, f.Folder, f.FileName, f.FileURL))
	}

	renderTable(out, []string{"Kind", "ID", "Folder", "Name", "URL"}, rows, "No files found.")
}

func fileRow(kind string, id int64, folder models.Folder, name, url string) []string {
	return []string{kind, fmt.Sprint(id), folderLabel(folder), name, url}
}

// folderLabel renders a folder as name/folder/subfolder, omitting
// missing levels.
func folderLabel(f models.Folder) string {
	label := f.Name
	if f.Folder != nil && *f.Folder != "" {
		label += "/" + *f.Folder
	}

	if f.Subfolder != nil && *f.Subfolder != "" {
		label += "/" + *f.Subfolder
	}

	return label
}
