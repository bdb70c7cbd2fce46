// Package reconciler drives one reconciliation run: it loads the stated and
// inferred snapshots, matches orphaned stated relationships to inferred
// replacements, and writes the resulting delta.
package reconciler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/agentstation/inferdelta/pkg/delta"
	"github.com/agentstation/inferdelta/pkg/graph"
	"github.com/agentstation/inferdelta/pkg/logging"
	"github.com/agentstation/inferdelta/pkg/matcher"
)

var tracer = otel.Tracer("github.com/agentstation/inferdelta/pkg/reconciler")

// Reconciler is the main interface for reconciling a stated snapshot against
// its inferred counterpart.
type Reconciler interface {
	// Run reconciles the input files and writes the delta to in.Output,
	// unless the reconciler is in dry-run mode.
	Run(ctx context.Context, in Inputs) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	*options
	printer *message.Printer
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		options: options,
		printer: message.NewPrinter(language.English),
	}, nil
}

// Run performs reconciliation in discrete phases. Cancellation is honored
// between phases.
func (r *reconciler) Run(ctx context.Context, in Inputs) (result *Result, err error) {
	// Step 1: fail fast on inputs before reading anything
	effectiveTime, err := in.Validate()
	if err != nil {
		return nil, err
	}

	result = NewResult()
	result.RunID = uuid.NewString()
	result.Metadata.Inputs = in
	result.Metadata.EffectiveTime = effectiveTime
	result.Metadata.DryRun = r.dryRun

	ctx = logging.WithRun(ctx, result.RunID)
	ctx, span := tracer.Start(ctx, "Reconciler.Run", trace.WithAttributes(
		attribute.String("inferdelta.run_id", result.RunID),
		attribute.String("inferdelta.effective_time", effectiveTime),
		attribute.Bool("inferdelta.dry_run", r.dryRun),
	))
	defer func() {
		endSpan(span, err)
		if err == nil {
			err = r.finish(ctx, result)
		}
	}()

	logger := logging.FromContext(ctx)
	logger.Info().
		Str("stated", in.Stated).
		Str("inferred", in.Inferred).
		Str("additional", in.Additional).
		Str("output", in.Output).
		Str("effective_time", effectiveTime).
		Bool("dry_run", r.dryRun).
		Msg("Starting reconciliation")

	// Step 2: load snapshots concurrently
	var snap *snapshots
	if err = r.phase(ctx, "load", func(ctx context.Context) error {
		snap, err = r.load(ctx, in)
		return err
	}); err != nil {
		return nil, err
	}
	result.Stated, result.Inferred = snap.stated, snap.inferred
	result.Metadata.Stats.StatedRelationships = snap.stated.Len()
	result.Metadata.Stats.InferredRelationships = snap.inferred.Len()
	result.Metadata.Stats.AdditionalRelationships = len(snap.additions)
	result.Metadata.Stats.Concepts = snap.stated.ConceptCount()
	r.recorder.SetRelationships(graph.ViewStated.String(), snap.stated.Len())
	r.recorder.SetRelationships(graph.ViewInferred.String(), snap.inferred.Len())
	r.recorder.SetRelationships(viewAdditional, len(snap.additions))

	// Step 3: mark orphans and match them over the sweeps
	m := matcher.New(snap.stated, snap.inferred,
		matcher.WithIncludeIsA(r.includeIsA),
		matcher.WithProgressInterval(r.progressInterval),
	)
	if err = r.phase(ctx, "match", func(ctx context.Context) error {
		result.Matching, err = m.Run(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	orphans := m.Orphans()
	result.Unresolved = m.Unresolved()
	r.countMatches(result, orphans)
	r.logUnresolved(ctx, result.Unresolved)

	// Step 4: plan the delta
	if err = r.phase(ctx, "plan", func(ctx context.Context) error {
		result.Plan, err = delta.NewPlan(snap.stated, orphans, snap.additions, delta.Options{
			EffectiveTime:      effectiveTime,
			Identifiers:        r.identifiers,
			CharacteristicType: r.characteristicType,
		})
		return err
	}); err != nil {
		return nil, err
	}
	r.logSuppressions(ctx, result.Plan)

	// Step 5: write and commit, unless this is a dry run
	if r.dryRun {
		logger.Info().Str("output", in.Output).Msg("Dry run, delta not written")
		return result, nil
	}
	if err = r.phase(ctx, "write", func(ctx context.Context) error {
		if err := result.Plan.WriteFile(in.Output); err != nil {
			return err
		}
		return result.Plan.Commit(orphans)
	}); err != nil {
		return nil, err
	}
	result.Metadata.Stats.RowsWritten = result.Plan.Summary.TotalRows
	logger.Info().
		Str("output", in.Output).
		Str("rows", r.printer.Sprintf("%d", result.Plan.Summary.TotalRows)).
		Msg("Wrote delta")

	return result, nil
}

// phase runs fn inside a span and records its duration.
func (r *reconciler) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx = logging.WithPhase(ctx, name)
	ctx, span := tracer.Start(ctx, "Reconciler."+name)
	start := time.Now()

	err := fn(ctx)

	elapsed := time.Since(start)
	r.recorder.ObservePhase(name, elapsed)
	span.SetAttributes(attribute.Int64("inferdelta.phase_ms", elapsed.Milliseconds()))
	endSpan(span, err)
	logging.FromContext(ctx).Debug().Dur("elapsed", elapsed).Msg("Phase complete")
	return err
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// countMatches tallies the replacements in force after the last sweep.
func (r *reconciler) countMatches(result *Result, orphans []*graph.Relationship) {
	stats := &result.Metadata.Stats
	stats.Orphans = len(orphans)
	stats.Unresolved = len(result.Unresolved)
	for _, x := range orphans {
		if _, alg := x.Replacement(); alg != "" {
			stats.Matched[alg]++
		}
	}
	for alg, n := range stats.Matched {
		r.recorder.AddMatches(alg.String(), n)
	}
	for alg, n := range result.Matching.Rejected {
		r.recorder.AddRejections(alg.String(), n)
	}
	r.recorder.SetOrphans(result.Matching.Orphans)
	r.recorder.SetUnresolved(stats.Unresolved)
	r.recorder.AddDecisions(result.Matching.Ambiguous, result.Matching.Displaced, result.Matching.SiblingMoves)
}

// logUnresolved logs the first orphans without a replacement.
func (r *reconciler) logUnresolved(ctx context.Context, unresolved []*graph.Relationship) {
	if len(unresolved) == 0 {
		return
	}
	logger := logging.FromContext(ctx)
	shown := min(len(unresolved), r.maxUnresolved)
	for _, rel := range unresolved[:shown] {
		logger.Warn().
			Str("relationship", rel.String()).
			Msg("No replacement found, relationship will only be inactivated")
	}
	if rest := len(unresolved) - shown; rest > 0 {
		logger.Warn().
			Str("more", r.printer.Sprintf("%d", rest)).
			Msg("Further unresolved relationships not shown")
	}
}

func (r *reconciler) logSuppressions(ctx context.Context, plan *delta.Plan) {
	logger := logging.FromContext(ctx)
	for _, sup := range plan.Suppressions.List() {
		reasons := make([]string, 0, len(sup.Reasons))
		for _, reason := range sup.Reasons {
			r.recorder.AddSuppression(string(reason))
			reasons = append(reasons, string(reason))
		}
		event := logger.Debug()
		if sup.Has(delta.ReasonContradiction) {
			event = logger.Warn()
		}
		event.
			Str("relationship", sup.Relationship.String()).
			Strs("reasons", reasons).
			Bool("inactivation", sup.Inactivation).
			Bool("activation", sup.Activation).
			Msg("Suppressed delta row")
	}

	r.recorder.AddRows(string(delta.ChangeTypeInactivate), plan.Summary.Inactivated)
	r.recorder.AddRows(string(delta.ChangeTypeActivate), plan.Summary.Activated)
	r.recorder.AddRows(string(delta.ChangeTypeAdd), plan.Summary.Added)
	logger.Info().
		Int("inactivated", plan.Summary.Inactivated).
		Int("activated", plan.Summary.Activated).
		Int("added", plan.Summary.Added).
		Int("suppressed", plan.Summary.Suppressed).
		Msg("Planned delta")
}

// finish stamps the result and writes the metrics file if configured.
func (r *reconciler) finish(ctx context.Context, result *Result) error {
	result.Finalize()
	r.recorder.MarkFinished(result.Metadata.EndTime)
	if err := r.recorder.WriteTextfile(r.metricsFile); err != nil {
		return err
	}

	logging.FromContext(ctx).Info().
		Str("duration", result.Metadata.Duration.String()).
		Str("orphans", r.printer.Sprintf("%d", result.Metadata.Stats.Orphans)).
		Str("unresolved", r.printer.Sprintf("%d", result.Metadata.Stats.Unresolved)).
		Msg(result.Summary())
	return nil
}
