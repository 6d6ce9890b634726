package classify

import (
	"github.com/KaramelBytes/surveyloom-cli/internal/percent"
	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
)

// SingleChoice counts literal answers, most frequent first, with percentages
// of the total weight.
func SingleChoice(q *survey.Question, w survey.Weights, trash survey.TrashSet) *survey.QuestionTable {
	return singleChoiceTable(q, q.Name, q.Name, tally(q, w, trash))
}

func singleChoiceTable(q *survey.Question, name, scale string, acc *survey.Accumulator) *survey.QuestionTable {
	items := acc.ByWeight()
	weights := make([]float64, len(items))
	for i, it := range items {
		weights[i] = it.Weight
	}
	pct := percent.Reconcile(weights...)
	tbl := &survey.QuestionTable{QuestionID: q.ID, Question: name, Type: q.Type}
	for i, it := range items {
		if it.Weight == 0 {
			continue
		}
		tbl.Rows = append(tbl.Rows, survey.CategoryRow{
			Scale:   scale,
			Answer:  it.Key,
			Count:   it.Weight,
			Raw:     it.Count,
			Percent: pct[i],
		})
	}
	if len(tbl.Rows) == 0 {
		return nil
	}
	return tbl
}

// MultipleChoice counts literal answers against the respondent base, since
// one respondent may pick several options.
func MultipleChoice(q *survey.Question, w survey.Weights, trash survey.TrashSet, respondents int) *survey.QuestionTable {
	items := tally(q, w, trash).ByWeight()
	if len(items) == 0 {
		return nil
	}
	tbl := &survey.QuestionTable{QuestionID: q.ID, Question: q.Name, Type: q.Type}
	for _, it := range items {
		var p float64
		if respondents > 0 {
			p = percent.Round2(it.Weight / float64(respondents))
		}
		tbl.Rows = append(tbl.Rows, survey.CategoryRow{
			Scale:   q.Name,
			Answer:  it.Key,
			Count:   it.Weight,
			Raw:     it.Count,
			Percent: p,
		})
	}
	return tbl
}

// Matrix classifies one matrix column as a scale when any answer is an
// integer, otherwise as single choice. The criterion label becomes the scale
// column; 3-D matrices take their name from the label and the scale from the
// sub-label.
func Matrix(q *survey.Question, w survey.Weights, trash survey.TrashSet, labels Labels) (*survey.QuestionTable, error) {
	name, scale := q.Name, q.Label
	if q.Type == survey.TypeMatrix3D {
		name, scale = q.Label, q.SubLabel
	}
	acc := tally(q, w, trash)
	if acc.Len() == 0 {
		return nil, nil
	}
	if !anyInteger(acc) {
		return singleChoiceTable(q, name, scale, acc), nil
	}
	b, err := scaleBuckets(q, acc, survey.CodeNonNumericScale)
	if err != nil {
		return nil, err
	}
	return scaleTable(q, name, scale, b, labels), nil
}

func anyInteger(acc *survey.Accumulator) bool {
	for _, it := range acc.Items() {
		if _, ok := survey.ParseInt(it.Key); ok {
			return true
		}
	}
	return false
}
