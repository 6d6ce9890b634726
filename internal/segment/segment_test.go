package segment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/surveyloom-cli/internal/classify"
	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
)

func column(n int, typ survey.QuestionType, values ...string) *survey.Question {
	q := &survey.Question{ID: survey.QuestionID(n), Number: n, Name: "Q", Type: typ, RawType: typ.String()}
	for i, v := range values {
		q.Answers = append(q.Answers, survey.Answer{Respondent: i, Value: v})
	}
	return q
}

func fixture() *survey.Table {
	gender := column(1, survey.TypeSingleChoice, "M", "F", "M", "F", "M", "F", "M", "F", "M", "F")
	age := column(2, survey.TypeSingleChoice, "young", "young", "old", "old", "young", "", "old", "young", "young", "old")
	rating := column(3, survey.TypeScale, "9", "10", "3", "7", "8", "2", "10", "9", "1", "5")
	choice := column(4, survey.TypeSingleChoice, "a", "b", "a", "c", "b", "a", "a", "b", "c", "a")
	email := column(5, survey.TypeEmail)
	return &survey.Table{Respondents: 10, Questions: []*survey.Question{gender, age, rating, choice, email}}
}

func runner(ctx context.Context, t *survey.Table, w survey.Weights, respondents int) (*survey.AnalysisResult, error) {
	return classify.Analyze(t, w, classify.Options{Respondents: respondents})
}

func TestPartitionCartesian(t *testing.T) {
	groups, err := Partition(fixture(), []int{1, 2})
	require.NoError(t, err)

	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	assert.Equal(t, []string{
		"D1_1=M | D1_2=young",
		"D1_1=M | D1_2=old",
		"D1_1=F | D1_2=young",
		"D1_1=F | D1_2=old",
	}, keys)
	assert.Equal(t, []int{0, 4, 8}, groups[0].Members)
	assert.Equal(t, []int{3, 9}, groups[3].Members, "blank answer of respondent 5 belongs to no group")

	_, err = Partition(fixture(), []int{42})
	assert.Error(t, err)
}

func categoryCounts(res *survey.AnalysisResult, segment string) map[string]float64 {
	out := map[string]float64{}
	for _, q := range res.Questions {
		if q.Segment != segment {
			continue
		}
		for _, r := range q.Rows {
			out[q.QuestionID+"/"+r.Answer] += r.Count
		}
	}
	return out
}

func TestRunOverallIsSumOfGroups(t *testing.T) {
	tbl := fixture()
	res, err := Run(context.Background(), tbl, survey.Uniform(10), Options{Questions: []int{1}, Base: 10}, runner)
	require.NoError(t, err)

	segments := []string{}
	for _, q := range res.Questions {
		if len(segments) == 0 || segments[len(segments)-1] != q.Segment {
			segments = append(segments, q.Segment)
		}
	}
	assert.Equal(t, []string{"D1_1=M", "D1_1=F", survey.OverallSegment}, segments)

	male, female, overall := categoryCounts(res, "D1_1=M"), categoryCounts(res, "D1_1=F"), categoryCounts(res, survey.OverallSegment)
	require.NotEmpty(t, overall)
	for k, v := range overall {
		assert.InDelta(t, v, male[k]+female[k], 1e-9, k)
	}
	assert.Equal(t, "\n D1_5 Email: Q", res.SkippedLog(), "skipped questions come from the overall run only")
}

func TestRunParallelMatchesSequential(t *testing.T) {
	tbl := fixture()
	seq, err := Run(context.Background(), tbl, survey.Uniform(10), Options{Questions: []int{1, 2}}, runner)
	require.NoError(t, err)
	par, err := Run(context.Background(), tbl, survey.Uniform(10), Options{Questions: []int{1, 2}, Parallelism: 4}, runner)
	require.NoError(t, err)
	assert.Equal(t, seq, par)
}

func TestRunGroupSize(t *testing.T) {
	var bases []int
	sizes := func(ctx context.Context, t *survey.Table, w survey.Weights, respondents int) (*survey.AnalysisResult, error) {
		bases = append(bases, respondents)
		return &survey.AnalysisResult{}, nil
	}
	_, err := Run(context.Background(), fixture(), nil, Options{
		Questions: []int{1},
		Base:      100,
		Size:      func(g Group) int { return len(g.Members) * 10 },
	}, sizes)
	require.NoError(t, err)
	assert.Equal(t, []int{50, 50, 100}, bases)
}

func TestRunStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	failing := func(ctx context.Context, t *survey.Table, w survey.Weights, respondents int) (*survey.AnalysisResult, error) {
		return nil, boom
	}
	res, err := Run(context.Background(), fixture(), nil, Options{Questions: []int{1}, Parallelism: 2}, failing)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
}
