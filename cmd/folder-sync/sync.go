package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/alexjbarnes/folder-sync/internal/config"
	"github.com/alexjbarnes/folder-sync/internal/coordinator"
	"github.com/alexjbarnes/folder-sync/internal/envelope"
	syncerrors "github.com/alexjbarnes/folder-sync/internal/errors"
	"github.com/alexjbarnes/folder-sync/internal/mimetype"
	"github.com/alexjbarnes/folder-sync/internal/models"
	"github.com/alexjbarnes/folder-sync/internal/state"
	"github.com/alexjbarnes/folder-sync/internal/tracker"
	"github.com/alexjbarnes/folder-sync/internal/uploader"
	"github.com/alexjbarnes/folder-sync/internal/walker"
	"github.com/alexjbarnes/folder-sync/internal/watcher"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newSyncCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sync [root...]",
		Short: "Walk the roots and upload every importable file",
		Long: `Walk each root folder three levels deep (root, folder, subfolder) and
upload every file whose extension is in the mime table. Roots given as
arguments replace SYNC_ROOTS and SYNC_ROOTS_FILE.`,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("watch") {
				a.cfg.Watch = watch
			}

			return runSync(ctx, a, args, cmd.OutOrStdout())
		}),
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and upload new or changed files (overrides WATCH)")

	return cmd
}

func runSync(ctx context.Context, a *app, args []string, out io.Writer) error {
	paths := a.cfg.SyncRoots
	if len(args) > 0 {
		resolved, err := config.ResolveRoots(args)
		if err != nil {
			return err
		}

		paths = resolved
	}

	if len(paths) == 0 {
		return fmt.Errorf("%w: set SYNC_ROOTS, SYNC_ROOTS_FILE or pass roots as arguments", syncerrors.ErrNoRoots)
	}

	logger := a.logger
	logger.Info("folder-sync starting",
		slog.String("version", Version),
		slog.String("backend", a.client.UploadURL()),
		slog.Int("roots", len(paths)),
		slog.Int("workers", a.cfg.UploadConcurrency),
		slog.Bool("watch", a.cfg.Watch),
	)

	fs := afero.NewOsFs()
	table := mimetype.Default()

	w := walker.New(fs, logger, walker.WithExtraIgnore(a.cfg.IgnoreNames...))
	b := envelope.NewBuilder(fs, table, logger)
	tr := tracker.New(a.state, logger)

	d, err := uploader.New(ctx, a.client, tr, logger, a.cfg.UploadConcurrency)
	if err != nil {
		return err
	}
	defer d.Close()

	c := coordinator.New(w, b, d, logger,
		coordinator.WithStore(a.state),
		coordinator.WithProgressFunc(func(p float64) {
			logger.Info("sync progress", slog.String("progress", fmt.Sprintf("%.0f%%", p*100)))
		}),
	)

	roots := make([]models.Root, 0, len(paths))
	for _, p := range paths {
		roots = append(roots, models.NewRoot(p))
	}

	c.AddRoots(roots...)

	g, gctx := errgroup.WithContext(ctx)
	passDone := make(chan struct{})

	g.Go(func() error {
		defer close(passDone)

		summaries, err := c.Sync(gctx)
		d.Wait()

		renderSyncSummary(out, summaries, d.Stats(), tr)

		return err
	})

	if a.cfg.Watch {
		// Wait must not overlap Send, so watching starts after the pass.
		g.Go(func() error {
			select {
			case <-passDone:
			case <-gctx.Done():
				return gctx.Err()
			}

			return watcher.New(w, b, d, logger).Watch(gctx, paths)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func renderSyncSummary(out io.Writer, summaries []state.RootSummary, stats uploader.Stats, tr *tracker.Tracker) {
	rows := make([][]string, 0, len(summaries))
	for _, rs := range summaries {
		rows = append(rows, []string{
			rs.Path,
			fmt.Sprint(rs.Files),
			fmt.Sprint(rs.Dispatched),
			fmt.Sprint(rs.Skipped),
			fmt.Sprint(rs.Errors),
		})
	}

	renderTable(out, []string{"Root", "Files", "Queued", "Skipped", "Errors"}, rows, "No roots synced.")

	fmt.Fprintf(out, "\nuploads: %d sent, %d acknowledged, %d failed, %d pending\n",
		stats.Sent, stats.Acked, stats.Failed, len(tr.Pending()))
}
