// Package segment splits respondents into groups by their answers to one or
// more questions and reruns aggregation per group.
package segment

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
)

// KeySeparator joins the fragments of a segment key.
const KeySeparator = " | "

// Fragment is one "<QuestionId>=<Value>" part of a segment key.
type Fragment struct {
	Question int
	Value    string
}

func (f Fragment) String() string { return survey.QuestionID(f.Question) + "=" + f.Value }

// Group is one observed combination of segmentation answers.
type Group struct {
	Key       string
	Fragments []Fragment
	Members   []int
}

// Partition groups respondents by the cartesian product of their answers to
// the given questions. Only combinations present in the data appear, in
// first-seen order; respondents with a blank answer belong to no group.
func Partition(t *survey.Table, numbers []int) ([]Group, error) {
	if len(numbers) == 0 {
		return nil, fmt.Errorf("no segmentation questions")
	}
	all := make([]int, t.Respondents)
	for i := range all {
		all[i] = i
	}
	groups := []Group{{Members: all}}

	for _, n := range numbers {
		q, ok := t.Find(n)
		if !ok {
			return nil, fmt.Errorf("segmentation question %s not found", survey.QuestionID(n))
		}
		answer := make(map[int]string, len(q.Answers))
		for _, a := range q.Answers {
			answer[a.Respondent] = strings.TrimSpace(a.Value)
		}

		var next []Group
		for _, g := range groups {
			index := map[string]int{}
			var split []Group
			for _, m := range g.Members {
				v := answer[m]
				if v == "" {
					continue
				}
				i, ok := index[v]
				if !ok {
					i = len(split)
					index[v] = i
					frags := append(append([]Fragment(nil), g.Fragments...), Fragment{Question: n, Value: v})
					split = append(split, Group{Fragments: frags})
				}
				split[i].Members = append(split[i].Members, m)
			}
			next = append(next, split...)
		}
		groups = next
	}

	for i := range groups {
		parts := make([]string, len(groups[i].Fragments))
		for j, f := range groups[i].Fragments {
			parts[j] = f.String()
		}
		groups[i].Key = strings.Join(parts, KeySeparator)
	}
	return groups, nil
}

// Runner aggregates one (possibly narrowed) table against a respondent base.
type Runner func(ctx context.Context, t *survey.Table, w survey.Weights, respondents int) (*survey.AnalysisResult, error)

// Options controls a segmented run.
type Options struct {
	Questions []int
	// Parallelism > 1 runs groups concurrently; output is identical.
	Parallelism int
	// Base is the respondent base of the Overall run.
	Base int
	// Size returns a group's respondent base; nil means its member count.
	Size func(Group) int
}

// Run aggregates every group and the whole population, tags each result with
// its segment key and concatenates them, groups first and Overall last.
// Skipped questions are reported once, from the Overall run.
func Run(ctx context.Context, t *survey.Table, w survey.Weights, opts Options, run Runner) (*survey.AnalysisResult, error) {
	groups, err := Partition(t, opts.Questions)
	if err != nil {
		return nil, err
	}
	size := opts.Size
	if size == nil {
		size = func(g Group) int { return len(g.Members) }
	}

	results := make([]*survey.AnalysisResult, len(groups))
	eg, egCtx := errgroup.WithContext(ctx)
	limit := opts.Parallelism
	if limit < 1 {
		limit = 1
	}
	eg.SetLimit(limit)
	for i, g := range groups {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			r, err := run(egCtx, t.Narrow(g.Members), w, size(g))
			if err != nil {
				return err
			}
			r.Tag(g.Key)
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	overall, err := run(ctx, t, w, opts.Base)
	if err != nil {
		return nil, err
	}
	overall.Tag(survey.OverallSegment)

	merged := &survey.AnalysisResult{}
	for _, r := range results {
		merged.Merge(r)
	}
	merged.Merge(overall)
	merged.Skipped = overall.Skipped
	return merged, nil
}
