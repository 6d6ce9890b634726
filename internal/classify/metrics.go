package classify

import (
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/surveyloom-cli/internal/logging"
	"github.com/KaramelBytes/surveyloom-cli/internal/percent"
	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
)

// NPS computes promoters, passives and detractors of a Scale or DropDown
// question. It returns nil when no answer is left after trash removal.
func NPS(q *survey.Question, w survey.Weights, trash survey.TrashSet) (*survey.NPSTable, error) {
	if q.Type != survey.TypeScale && q.Type != survey.TypeDropDown {
		return nil, survey.NewClassificationError(survey.CodeNPSType, q,
			"NPS question must be a scale or a drop-down, got %s", typeName(q))
	}
	acc := tally(q, w, trash)
	if acc.Len() == 0 {
		return nil, nil
	}
	b, err := scaleBuckets(q, acc, survey.CodeNonNumericScale)
	if err != nil {
		return nil, err
	}
	total := b.total()
	if total == 0 {
		return nil, nil
	}
	share := func(i int) survey.Bucket {
		return survey.Bucket{Count: b.weight[i], Percent: b.weight[i] / total}
	}
	return &survey.NPSTable{
		QuestionID: q.ID,
		Question:   q.Name,
		Promoters:  share(bucketTop),
		Passives:   share(bucketMid),
		Detractors: share(bucketBottom),
		Total:      total,
		Score:      (b.weight[bucketTop] - b.weight[bucketBottom]) / total,
	}, nil
}

// TR computes the weighted yes rate of a single-choice question. Answers
// matching neither token list are ignored.
func TR(q *survey.Question, w survey.Weights, yes, no []string) (*survey.TRTable, error) {
	if q.Type != survey.TypeSingleChoice {
		return nil, survey.NewClassificationError(survey.CodeTRType, q,
			"TR question must be a single choice, got %s", typeName(q))
	}
	tbl := &survey.TRTable{QuestionID: q.ID, Question: q.Name}
	for _, a := range q.Answers {
		switch {
		case matchesToken(a.Value, yes):
			tbl.Yes += w.At(a.Respondent)
		case matchesToken(a.Value, no):
			tbl.No += w.At(a.Respondent)
		}
	}
	if tbl.Yes+tbl.No == 0 {
		return nil, nil
	}
	tbl.Rate = tbl.Yes / (tbl.Yes + tbl.No)
	return tbl, nil
}

// ROTI builds the weighted 1..5 histogram of a Scale question. Average is the
// share of 4 and 5 scores among valid scores.
func ROTI(q *survey.Question, w survey.Weights, trash survey.TrashSet) (*survey.ROTITable, error) {
	if q.Type != survey.TypeScale {
		return nil, survey.NewClassificationError(survey.CodeROTIType, q,
			"ROTI question must be a scale, got %s", typeName(q))
	}
	tbl := &survey.ROTITable{QuestionID: q.ID, Question: q.Name}
	for _, it := range tally(q, w, trash).Items() {
		n, ok := survey.ParseInt(it.Key)
		if !ok {
			return nil, survey.NewClassificationError(survey.CodeNonNumericScale, q,
				"scale question must contain only numeric values, got %q", it.Key)
		}
		if n < 1 || n > 5 {
			continue
		}
		tbl.Histogram[n-1] += it.Weight
		tbl.Total += it.Weight
	}
	if tbl.Total == 0 {
		return nil, nil
	}
	tbl.Average = (tbl.Histogram[3] + tbl.Histogram[4]) / tbl.Total
	return tbl, nil
}

// csiBuilder gathers per-criterion means from the designated matrix columns.
type csiBuilder struct {
	ids      []int
	order    []string
	means    map[string][]float64
	imp, rat map[string]float64
	seen     map[string]int
}

func newCSIBuilder(ids []int) *csiBuilder {
	return &csiBuilder{
		ids:   ids,
		means: map[string][]float64{},
		imp:   map[string]float64{},
		rat:   map[string]float64{},
		seen:  map[string]int{},
	}
}

func (c *csiBuilder) designated(n int) bool {
	for _, id := range c.ids {
		if id != 0 && id == n {
			return true
		}
	}
	return false
}

func (c *csiBuilder) add(q *survey.Question, w survey.Weights, trash survey.TrashSet) error {
	if !q.Type.IsMatrix() {
		return survey.NewClassificationError(survey.CodeCSIType, q,
			"CSI question must be a matrix or a 3-D matrix, got %s", typeName(q))
	}
	var xs, ws []float64
	for _, a := range q.Answers {
		v := strings.TrimSpace(a.Value)
		if v == "" || trash.Contains(v) {
			continue
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
		if err != nil {
			return survey.NewClassificationError(survey.CodeNonNumericScale, q,
				"CSI question must contain only numeric values, got %q", v)
		}
		xs = append(xs, f)
		ws = append(ws, w.At(a.Respondent))
	}
	if len(xs) == 0 {
		return nil
	}
	mean := stat.Mean(xs, ws)
	crit := q.Label
	if _, ok := c.seen[crit]; !ok {
		c.order = append(c.order, crit)
	}
	c.seen[crit]++

	switch {
	case len(c.ids) >= 2 && q.Number == c.ids[0]:
		c.imp[crit] = mean
	case len(c.ids) >= 2:
		c.rat[crit] = mean
	case c.seen[crit] == 1:
		c.imp[crit] = mean
	default:
		c.rat[crit] = mean
	}
	return nil
}

func (c *csiBuilder) build(log *logging.Logger) (survey.CSITable, bool) {
	tbl := survey.CSITable{}
	for _, id := range c.ids {
		if id != 0 {
			tbl.QuestionIDs = append(tbl.QuestionIDs, survey.QuestionID(id))
		}
	}
	var products []float64
	for _, crit := range c.order {
		imp, okI := c.imp[crit]
		rat, okR := c.rat[crit]
		if !okI || !okR {
			log.Warn("CSI criterion %q lacks an importance or a rating, skipped", crit)
			continue
		}
		p := rat * imp
		products = append(products, p)
		tbl.Rows = append(tbl.Rows, survey.CSIRow{
			Parameter:  crit,
			Importance: percent.Round2(imp),
			Rating:     percent.Round2(rat),
			CSI:        percent.Round2(p),
		})
	}
	if len(products) == 0 {
		if len(c.ids) > 0 {
			log.Warn("CSI questions %v produced no criteria", c.ids)
		}
		return tbl, false
	}
	tbl.Overall = percent.Round2(stat.Mean(products, nil))
	return tbl, true
}
