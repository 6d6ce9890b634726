// Package weighting computes per-respondent weights by iterative
// proportional fitting (raking) against demographic target distributions.
package weighting

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
	"github.com/KaramelBytes/surveyloom-cli/internal/targets"
)

const (
	DefaultMaxIterations = 100
	DefaultTolerance     = 1e-6
)

// ErrNoOverlap is returned when no respondent matches every target dimension.
var ErrNoOverlap = errors.New("no respondent matches the weighting targets")

// Options bounds the fitting loop.
type Options struct {
	SampleSize    int
	MaxIterations int
	Tolerance     float64
}

// Result carries the weights and convergence diagnostics.
type Result struct {
	Weights    survey.Weights
	Iterations int
	Converged  bool
	MaxDelta   float64
	Notes      []string
}

// dimension is one weighting question resolved against the table.
type dimension struct {
	id     string
	target targets.Distribution
	// value holds each respondent's normalised answer, "" when missing
	value []string
}

// Rake fits weights so the weighted marginal of every dimension matches its
// target and the weights total SampleSize. Failing to converge within
// MaxIterations is reported in Notes, never as an error.
func Rake(t *survey.Table, dims []targets.Target, opts Options) (*Result, error) {
	if len(dims) == 0 {
		return nil, errors.New("raking needs at least one target dimension")
	}
	if opts.SampleSize <= 0 {
		return nil, fmt.Errorf("invalid sample size %d", opts.SampleSize)
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}

	res := &Result{}
	resolved := make([]dimension, 0, len(dims))
	for _, d := range dims {
		q, ok := t.Find(d.Question)
		if !ok {
			return nil, fmt.Errorf("weighting question %s not found", survey.QuestionID(d.Question))
		}
		dim := dimension{id: q.ID, target: d.Distribution, value: make([]string, t.Respondents)}
		unmatched := map[string]bool{}
		for _, a := range q.Answers {
			if a.Respondent < 0 || a.Respondent >= t.Respondents {
				continue
			}
			v := survey.NormalizeLabel(a.Value)
			dim.value[a.Respondent] = v
			if _, ok := d.Distribution.Lookup(v); v != "" && !ok && !unmatched[v] {
				unmatched[v] = true
				res.Notes = append(res.Notes, fmt.Sprintf("%s: answer %q has no target share and gets weight 0", q.ID, strings.TrimSpace(a.Value)))
			}
		}
		resolved = append(resolved, dim)
	}

	N := float64(opts.SampleSize)
	w := seed(resolved, t.Respondents, N)
	total := floats.Sum(w)
	if total == 0 {
		return nil, ErrNoOverlap
	}
	floats.Scale(N/total, w)

	prev := make([]float64, len(w))
	for res.Iterations < opts.MaxIterations {
		res.Iterations++
		copy(prev, w)
		for _, d := range resolved {
			fit(w, d)
		}
		res.MaxDelta = maxDelta(w, prev)
		if res.MaxDelta < opts.Tolerance {
			res.Converged = true
			break
		}
	}
	if !res.Converged {
		res.Notes = append(res.Notes, fmt.Sprintf("raking did not converge after %d iterations (max delta %.3g)", res.Iterations, res.MaxDelta))
	}

	if total = floats.Sum(w); total > 0 {
		floats.Scale(N/total, w)
	}
	res.Weights = survey.Weights(w)
	return res, nil
}

// seed gives each respondent the product of target*N/observed over all
// dimensions; missing or unmatched answers seed 0.
func seed(dims []dimension, n int, N float64) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	for _, d := range dims {
		observed := map[string]float64{}
		for _, v := range d.value {
			if v != "" {
				observed[v]++
			}
		}
		for i, v := range d.value {
			share, ok := d.target.Lookup(v)
			if v == "" || !ok || share == 0 || observed[v] == 0 {
				w[i] = 0
				continue
			}
			w[i] *= share * N / observed[v]
		}
	}
	return w
}

// fit rescales w in place so the weighted shares of d match its target.
func fit(w []float64, d dimension) {
	total := floats.Sum(w)
	if total == 0 {
		return
	}
	current := map[string]float64{}
	for i, v := range d.value {
		current[v] += w[i]
	}
	for i, v := range d.value {
		share, _ := d.target.Lookup(v)
		c := current[v] / total
		if v == "" || c == 0 {
			w[i] = 0
			continue
		}
		w[i] *= share / c
	}
}

func maxDelta(a, b []float64) float64 {
	var m float64
	for i := range a {
		m = math.Max(m, math.Abs(a[i]-b[i]))
	}
	return m
}

// Summary describes the weight distribution of respondents with a positive weight.
type Summary struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Zero   int
}

// Summarize returns descriptive statistics of the weights.
func (r *Result) Summarize() Summary {
	var s Summary
	data := make(stats.Float64Data, 0, len(r.Weights))
	for _, v := range r.Weights {
		if v == 0 {
			s.Zero++
			continue
		}
		data = append(data, v)
	}
	if len(data) == 0 {
		return s
	}
	s.Min, _ = data.Min()
	s.Max, _ = data.Max()
	s.Mean, _ = data.Mean()
	s.StdDev, _ = data.StandardDeviation()
	return s
}
