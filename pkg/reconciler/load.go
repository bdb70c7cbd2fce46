package reconciler

import (
	"context"
	stderrors "errors"
	"io/fs"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/inferdelta/pkg/graph"
	"github.com/agentstation/inferdelta/pkg/logging"
	"github.com/agentstation/inferdelta/pkg/rf2"
)

// snapshots holds the loaded inputs of a run.
type snapshots struct {
	stated    *graph.Graph
	inferred  *graph.Graph
	additions []*graph.Relationship
	read      map[string]rf2.ReadStats
}

// load reads the snapshots concurrently and builds one graph per view.
func (r *reconciler) load(ctx context.Context, in Inputs) (*snapshots, error) {
	snap := &snapshots{}
	var statedRead, inferredRead, additionalRead rf2.ReadStats
	opts := []graph.Option{graph.WithIsAType(r.isAType)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.stated, statedRead, err = r.loadGraph(gctx, graph.ViewStated, in.Stated, opts)
		return err
	})
	g.Go(func() error {
		var err error
		snap.inferred, inferredRead, err = r.loadGraph(gctx, graph.ViewInferred, in.Inferred, opts)
		return err
	})
	g.Go(func() error {
		var err error
		snap.additions, additionalRead, err = r.loadAdditions(gctx, in.Additional)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.read = map[string]rf2.ReadStats{
		graph.ViewStated.String():   statedRead,
		graph.ViewInferred.String(): inferredRead,
		viewAdditional:              additionalRead,
	}
	return snap, nil
}

const viewAdditional = "additional"

func (r *reconciler) loadGraph(ctx context.Context, view graph.View, path string, opts []graph.Option) (*graph.Graph, rf2.ReadStats, error) {
	logger := logging.FromContext(logging.WithView(ctx, view.String()))

	rows, stats, err := rf2.ReadFile(path)
	if err != nil {
		return nil, stats, err
	}
	g, err := graph.FromRows(view, rows, opts...)
	if err != nil {
		return nil, stats, err
	}

	logger.Info().
		Str("path", path).
		Int("rows", stats.Rows).
		Int("active", stats.Active).
		Int("concepts", g.ConceptCount()).
		Msg("Loaded snapshot")
	return g, stats, nil
}

func (r *reconciler) loadAdditions(ctx context.Context, path string) ([]*graph.Relationship, rf2.ReadStats, error) {
	logger := logging.FromContext(logging.WithView(ctx, viewAdditional))
	if path == "" {
		return nil, rf2.ReadStats{}, nil
	}

	rows, stats, err := rf2.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		logger.Info().Str("path", path).Msg("Additional file not found, no rows added")
		return nil, rf2.ReadStats{}, nil
	}
	if err != nil {
		return nil, stats, err
	}

	additions := make([]*graph.Relationship, 0, len(rows))
	for _, row := range rows {
		rel, err := graph.NewRelationship(row)
		if err != nil {
			return nil, stats, err
		}
		additions = append(additions, rel)
	}

	logger.Info().
		Str("path", path).
		Int("rows", len(additions)).
		Msg("Loaded additional relationships")
	return additions, stats, nil
}
