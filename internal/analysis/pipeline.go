// Package analysis wires the survey engine together: it lays out export
// grids as survey tables and runs weighting, segmentation and classification
// to produce a Report.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/surveyloom-cli/internal/classify"
	"github.com/KaramelBytes/surveyloom-cli/internal/logging"
	"github.com/KaramelBytes/surveyloom-cli/internal/segment"
	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
	"github.com/KaramelBytes/surveyloom-cli/internal/targets"
	"github.com/KaramelBytes/surveyloom-cli/internal/weighting"
)

// Weighting enables demographic raking.
type Weighting struct {
	// Questions are aligned to the reference dimensions; empty keeps the
	// question numbers stored in the reference.
	Questions []int
	Reference *targets.Reference
	// Plan skips building from Reference when set.
	Plan          *targets.Plan
	Sampling      targets.Sampling
	MaxIterations int
	Tolerance     float64
}

func (w *Weighting) plan() (*targets.Plan, error) {
	if w.Plan != nil {
		return w.Plan, nil
	}
	if w.Reference == nil {
		return nil, errors.New("weighting needs a reference or a plan")
	}
	// The reference is shared across batch runs.
	ref := w.Reference.Clone()
	if len(w.Questions) > 0 {
		if err := ref.WithQuestions(w.Questions); err != nil {
			return nil, err
		}
	}
	s := w.Sampling
	if s == (targets.Sampling{}) {
		s = targets.DefaultSampling()
	}
	return targets.Build(ref, s)
}

// Options configures one report run.
type Options struct {
	Classify classify.Options
	// Respondents overrides the unweighted respondent base.
	Respondents int
	Segments    []int
	Parallelism int
	Weighting   *Weighting
	Logger      *logging.Logger
}

// Run produces the full report for t. A classification error anywhere aborts
// the run and no report is returned.
func Run(ctx context.Context, t *survey.Table, opts Options) (*Report, error) {
	log := opts.Logger
	rep := &Report{
		ID:          uuid.NewString(),
		Source:      t.Source,
		CreatedAt:   time.Now().UTC(),
		Respondents: t.Respondents,
		Segments:    opts.Segments,
	}

	w := survey.Uniform(t.Respondents)
	base := t.Respondents
	if opts.Respondents > 0 {
		base = opts.Respondents
	}

	var plan *targets.Plan
	if opts.Weighting != nil {
		p, err := opts.Weighting.plan()
		if err != nil {
			return nil, fmt.Errorf("weighting plan: %w", err)
		}
		res, err := weighting.Rake(t, p.Dimensions, weighting.Options{
			SampleSize:    p.SampleSize,
			MaxIterations: opts.Weighting.MaxIterations,
			Tolerance:     opts.Weighting.Tolerance,
		})
		switch {
		case errors.Is(err, weighting.ErrNoOverlap):
			log.Warn("%v; report is unweighted", err)
			rep.Notes = append(rep.Notes, "weighting skipped: "+err.Error())
		case err != nil:
			return nil, fmt.Errorf("weighting: %w", err)
		default:
			for _, n := range res.Notes {
				log.Warn("%s", n)
			}
			plan = p
			w = res.Weights
			base = p.SampleSize
			rep.SampleSize = p.SampleSize
			rep.Weighting = &WeightingSummary{
				Questions:  dimensionQuestions(p),
				Population: p.Population,
				Iterations: res.Iterations,
				Converged:  res.Converged,
				MaxDelta:   res.MaxDelta,
				Weights:    res.Summarize(),
			}
			rep.Notes = append(rep.Notes, res.Notes...)
		}
	}
	rep.Base = base

	runner := func(ctx context.Context, tbl *survey.Table, w survey.Weights, n int) (*survey.AnalysisResult, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		co := opts.Classify
		co.Respondents = n
		if co.Logger == nil {
			co.Logger = log
		}
		return classify.Analyze(tbl, w, co)
	}

	var (
		result *survey.AnalysisResult
		err    error
	)
	if len(opts.Segments) == 0 {
		result, err = runner(ctx, t, w, base)
	} else {
		rep.Segmented = true
		result, err = segment.Run(ctx, t, w, segment.Options{
			Questions:   opts.Segments,
			Parallelism: opts.Parallelism,
			Base:        base,
			Size:        groupSize(plan, opts.Segments[0], log),
		}, runner)
	}
	if err != nil {
		return nil, err
	}
	rep.Result = result
	return rep, nil
}

// groupSize returns the respondent base of a segment: the target share of its
// value for the first segmentation question times the sample size when that
// question is weighted, the sample size when it is not, and the group's own
// count in unweighted mode.
func groupSize(plan *targets.Plan, first int, log *logging.Logger) func(segment.Group) int {
	if plan == nil {
		return nil
	}
	tgt, ok := plan.Target(first)
	if !ok {
		return func(segment.Group) int { return plan.SampleSize }
	}
	return func(g segment.Group) int {
		share, ok := tgt.Distribution.Lookup(g.Fragments[0].Value)
		if !ok {
			log.Warn("no target share for %s; using the sample size as its base", g.Key)
			return plan.SampleSize
		}
		return int(math.Round(share * float64(plan.SampleSize)))
	}
}

func dimensionQuestions(p *targets.Plan) []int {
	out := make([]int, len(p.Dimensions))
	for i, d := range p.Dimensions {
		out[i] = d.Question
	}
	return out
}
