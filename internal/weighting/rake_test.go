package weighting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
	"github.com/KaramelBytes/surveyloom-cli/internal/targets"
)

func demographic(n int, values []string) *survey.Question {
	q := &survey.Question{ID: survey.QuestionID(n), Number: n, Type: survey.TypeSingleChoice}
	for i, v := range values {
		q.Answers = append(q.Answers, survey.Answer{Respondent: i, Value: v})
	}
	return q
}

func repeat(v string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func target(t *testing.T, q int, cats ...targets.Category) targets.Target {
	t.Helper()
	d, err := targets.Normalize(cats)
	require.NoError(t, err)
	return targets.Target{Question: q, Distribution: d}
}

func weightedShare(w survey.Weights, q *survey.Question, value string) float64 {
	var hit, total float64
	for _, a := range q.Answers {
		total += w[a.Respondent]
		if a.Value == value {
			hit += w[a.Respondent]
		}
	}
	return hit / total
}

func TestRakeSingleDimension(t *testing.T) {
	q := demographic(1, append(repeat("A", 40), repeat("B", 60)...))
	tbl := &survey.Table{Respondents: 100, Questions: []*survey.Question{q}}

	res, err := Rake(tbl, []targets.Target{target(t, 1,
		targets.Category{Label: "a", Count: 60}, targets.Category{Label: "b", Count: 40})},
		Options{SampleSize: 100})
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.InDelta(t, 100, floats.Sum(res.Weights), 1e-6)
	assert.InDelta(t, 0.6, weightedShare(res.Weights, q, "A"), 1e-6)
	assert.Empty(t, res.Notes)
}

func TestRakeTwoDimensions(t *testing.T) {
	gender := demographic(1, []string{"Male", "Male", "Male", "Female", "Female", "Male", "Female", "Male"})
	age := demographic(2, []string{"Young", "Old", "Young", "Young", "Old", "Old", "Young", "Young"})
	tbl := &survey.Table{Respondents: 8, Questions: []*survey.Question{gender, age}}

	dims := []targets.Target{
		target(t, 1, targets.Category{Label: "male", Count: 50}, targets.Category{Label: "female", Count: 50}),
		target(t, 2, targets.Category{Label: "young", Count: 30}, targets.Category{Label: "old", Count: 70}),
	}
	res, err := Rake(tbl, dims, Options{SampleSize: 200, MaxIterations: 500, Tolerance: 1e-9})
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.InDelta(t, 200, floats.Sum(res.Weights), 1e-6)
	assert.InDelta(t, 0.5, weightedShare(res.Weights, gender, "Male"), 1e-4)
	assert.InDelta(t, 0.3, weightedShare(res.Weights, age, "Young"), 1e-4)

	again, err := Rake(tbl, dims, Options{SampleSize: 200, MaxIterations: 500, Tolerance: 1e-9})
	require.NoError(t, err)
	assert.Equal(t, res.Weights, again.Weights)
}

func TestRakeNonConvergenceIsANote(t *testing.T) {
	gender := demographic(1, []string{"M", "M", "F", "F", "M"})
	age := demographic(2, []string{"Y", "O", "Y", "O", "Y"})
	tbl := &survey.Table{Respondents: 5, Questions: []*survey.Question{gender, age}}
	dims := []targets.Target{
		target(t, 1, targets.Category{Label: "M", Count: 1}, targets.Category{Label: "F", Count: 3}),
		target(t, 2, targets.Category{Label: "Y", Count: 1}, targets.Category{Label: "O", Count: 4}),
	}
	res, err := Rake(tbl, dims, Options{SampleSize: 50, MaxIterations: 1, Tolerance: 1e-15})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Iterations)
	assert.False(t, res.Converged)
	require.NotEmpty(t, res.Notes)
	assert.Contains(t, res.Notes[len(res.Notes)-1], "did not converge")
	assert.InDelta(t, 50, floats.Sum(res.Weights), 1e-6)
}

func TestRakeUnmatchedAnswersWeighZero(t *testing.T) {
	q := demographic(1, []string{"A", "A", "Other", ""})
	tbl := &survey.Table{Respondents: 4, Questions: []*survey.Question{q}}
	res, err := Rake(tbl, []targets.Target{target(t, 1,
		targets.Category{Label: "A", Count: 1})}, Options{SampleSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Weights[2])
	assert.Equal(t, 0.0, res.Weights[3])
	assert.InDelta(t, 5, res.Weights[0], 1e-9)
	assert.Len(t, res.Notes, 1)

	s := res.Summarize()
	assert.Equal(t, 2, s.Zero)
	assert.InDelta(t, 5, s.Mean, 1e-9)
}

func TestRakeNoOverlap(t *testing.T) {
	q := demographic(1, []string{"x", "y"})
	tbl := &survey.Table{Respondents: 2, Questions: []*survey.Question{q}}
	_, err := Rake(tbl, []targets.Target{target(t, 1, targets.Category{Label: "z", Count: 1})}, Options{SampleSize: 10})
	assert.True(t, errors.Is(err, ErrNoOverlap))

	_, err = Rake(tbl, []targets.Target{target(t, 9, targets.Category{Label: "x", Count: 1})}, Options{SampleSize: 10})
	assert.ErrorContains(t, err, "D1_9")
}
