package classify

import (
	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/surveyloom-cli/internal/percent"
	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
)

const (
	bucketTop = iota
	bucketMid
	bucketBottom
)

// buckets holds weighted sums and raw counts of the three tiers.
type buckets struct {
	weight [3]float64
	raw    [3]int
}

func (b buckets) total() float64 { return b.weight[0] + b.weight[1] + b.weight[2] }

// tenPoint reports whether the observed maximum implies a 10-point scale.
func tenPoint(values []float64) bool {
	hi, err := stats.Max(values)
	return err == nil && hi > 5
}

// bucketOf places v on a 10-point (>8, 7..8, <=6) or 5-point (5, 4, <4) scale.
func bucketOf(v int, ten bool) int {
	if ten {
		switch {
		case v > 8:
			return bucketTop
		case v > 6:
			return bucketMid
		default:
			return bucketBottom
		}
	}
	switch {
	case v >= 5:
		return bucketTop
	case v == 4:
		return bucketMid
	default:
		return bucketBottom
	}
}

// scaleBuckets requires every remaining key of acc to be an integer.
func scaleBuckets(q *survey.Question, acc *survey.Accumulator, code string) (buckets, error) {
	var b buckets
	items := acc.Items()
	keys := make([]int, len(items))
	values := make([]float64, len(items))
	for i, it := range items {
		n, ok := survey.ParseInt(it.Key)
		if !ok {
			return b, survey.NewClassificationError(code, q,
				"scale question must contain only numeric values, got %q", it.Key)
		}
		keys[i] = n
		values[i] = float64(n)
	}
	ten := tenPoint(values)
	for i, it := range items {
		k := bucketOf(keys[i], ten)
		b.weight[k] += it.Weight
		b.raw[k] += it.Count
	}
	return b, nil
}

// Scale buckets a numeric rating question into top, mid and bottom tiers.
// Empty buckets are omitted; a question with no answers yields nil.
func Scale(q *survey.Question, w survey.Weights, trash survey.TrashSet, labels Labels) (*survey.QuestionTable, error) {
	acc := tally(q, w, trash)
	if acc.Len() == 0 {
		return nil, nil
	}
	b, err := scaleBuckets(q, acc, survey.CodeNonNumericScale)
	if err != nil {
		return nil, err
	}
	return scaleTable(q, q.Name, q.Name, b, labels), nil
}

func scaleTable(q *survey.Question, name, scale string, b buckets, labels Labels) *survey.QuestionTable {
	pct := percent.Reconcile(b.weight[:]...)
	names := [3]string{labels.Top, labels.Mid, labels.Bottom}
	tbl := &survey.QuestionTable{QuestionID: q.ID, Question: name, Type: q.Type}
	for i := range names {
		if b.weight[i] == 0 {
			continue
		}
		tbl.Rows = append(tbl.Rows, survey.CategoryRow{
			Scale:   scale,
			Answer:  names[i],
			Count:   b.weight[i],
			Raw:     b.raw[i],
			Percent: pct[i],
		})
	}
	if len(tbl.Rows) == 0 {
		return nil
	}
	return tbl
}
