// Package classify turns survey question columns into counted category tables
// and the NPS, CSI, TR and ROTI composite metrics.
package classify

import (
	"slices"
	"strings"

	"github.com/KaramelBytes/surveyloom-cli/internal/logging"
	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
)

// Labels names the three scale buckets.
type Labels struct {
	Top    string
	Mid    string
	Bottom string
}

var (
	DefaultScaleLabels = Labels{Top: "Great", Mid: "Good", Bottom: "Poor"}
	DefaultMoodLabels  = Labels{Top: "Excellent", Mid: "Good", Bottom: "Poor"}
	DefaultYesTokens   = []string{"yes", "да"}
	DefaultNoTokens    = []string{"no", "нет"}
)

// Options carries everything one aggregation run needs besides the data.
// Question designations are 1-based question numbers; 0 means none.
type Options struct {
	// Respondents is the base for multiple-choice percentages.
	Respondents int
	Trash       survey.TrashSet
	ScaleLabels Labels
	MoodLabels  Labels
	Mood        int
	NPS         int
	CSI         []int
	TR          int
	ROTI        int
	YesTokens   []string
	NoTokens    []string
	Logger      *logging.Logger
}

func (o Options) withDefaults(t *survey.Table) Options {
	if o.ScaleLabels == (Labels{}) {
		o.ScaleLabels = DefaultScaleLabels
	}
	if o.MoodLabels == (Labels{}) {
		o.MoodLabels = DefaultMoodLabels
	}
	if len(o.YesTokens) == 0 {
		o.YesTokens = DefaultYesTokens
	}
	if len(o.NoTokens) == 0 {
		o.NoTokens = DefaultNoTokens
	}
	if o.Respondents <= 0 {
		o.Respondents = t.Respondents
	}
	return o
}

// Analyze classifies every question of t. Any classification error aborts
// the run and no partial result is returned.
func Analyze(t *survey.Table, w survey.Weights, opts Options) (*survey.AnalysisResult, error) {
	opts = opts.withDefaults(t)
	if w == nil {
		w = survey.Uniform(t.Respondents)
	}
	res := &survey.AnalysisResult{}
	csi := newCSIBuilder(opts.CSI)
	done := map[int]bool{}

	for _, q := range t.Questions {
		switch {
		case opts.NPS != 0 && q.Number == opts.NPS:
			if done[q.Number] {
				continue
			}
			done[q.Number] = true
			tbl, err := NPS(q, w, opts.Trash)
			if err != nil {
				return nil, err
			}
			if tbl == nil {
				opts.Logger.Warn("NPS question %s has no numeric answers", q.ID)
				continue
			}
			res.NPS = append(res.NPS, *tbl)
			continue
		case csi.designated(q.Number):
			if err := csi.add(q, w, opts.Trash); err != nil {
				return nil, err
			}
			continue
		case opts.TR != 0 && q.Number == opts.TR:
			if done[q.Number] {
				continue
			}
			done[q.Number] = true
			tbl, err := TR(q, w, opts.YesTokens, opts.NoTokens)
			if err != nil {
				return nil, err
			}
			if tbl == nil {
				opts.Logger.Warn("TR question %s has no yes/no answers", q.ID)
				continue
			}
			res.TR = append(res.TR, *tbl)
			continue
		case opts.ROTI != 0 && q.Number == opts.ROTI:
			if done[q.Number] {
				continue
			}
			done[q.Number] = true
			tbl, err := ROTI(q, w, opts.Trash)
			if err != nil {
				return nil, err
			}
			if tbl == nil {
				opts.Logger.Warn("ROTI question %s has no 1..5 answers", q.ID)
				continue
			}
			res.ROTI = append(res.ROTI, *tbl)
			continue
		}

		if err := classifyOne(res, q, w, opts); err != nil {
			return nil, err
		}
	}

	if tbl, ok := csi.build(opts.Logger); ok {
		res.CSI = append(res.CSI, tbl)
	}
	return res, nil
}

func classifyOne(res *survey.AnalysisResult, q *survey.Question, w survey.Weights, opts Options) error {
	var (
		tbl *survey.QuestionTable
		err error
	)
	switch {
	case q.Type == survey.TypeScale:
		labels := opts.ScaleLabels
		if opts.Mood != 0 && q.Number == opts.Mood {
			labels = opts.MoodLabels
		}
		tbl, err = Scale(q, w, opts.Trash, labels)
	case q.Type == survey.TypeSingleChoice:
		tbl = SingleChoice(q, w, opts.Trash)
	case q.Type.IsMultiple():
		tbl = MultipleChoice(q, w, opts.Trash, opts.Respondents)
	case q.Type.IsMatrix():
		tbl, err = Matrix(q, w, opts.Trash, opts.ScaleLabels)
	case q.Type == survey.TypeFreeText:
		if e := FreeText(q, q.Name); len(e.Answers) > 0 {
			res.FreeText = append(res.FreeText, e)
		}
	case q.Type == survey.TypeFreeTextGroup:
		if e := FreeText(q, q.Label); len(e.Answers) > 0 {
			res.FreeText = append(res.FreeText, e)
		}
	case q.Type.IsSkipped():
		res.Skipped = append(res.Skipped, survey.SkippedQuestion{ID: q.ID, Type: typeName(q), Name: q.Name})
	default:
		return survey.NewClassificationError(survey.CodeUnknownType, q, "unknown question type %q", q.RawType)
	}
	if err != nil {
		return err
	}
	if tbl != nil {
		res.Questions = append(res.Questions, *tbl)
	}
	return nil
}

func typeName(q *survey.Question) string {
	if q.RawType != "" {
		return q.RawType
	}
	return q.Type.String()
}

// tally groups the non-blank answers of q by trimmed value, minus trash.
func tally(q *survey.Question, w survey.Weights, trash survey.TrashSet) *survey.Accumulator {
	acc := survey.NewAccumulator()
	for _, a := range q.Answers {
		v := strings.TrimSpace(a.Value)
		if v == "" || trash.Contains(v) {
			continue
		}
		acc.Add(v, w.At(a.Respondent))
	}
	return acc
}

func matchesToken(v string, tokens []string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return slices.ContainsFunc(tokens, func(t string) bool {
		return strings.ToLower(strings.TrimSpace(t)) == v
	})
}
