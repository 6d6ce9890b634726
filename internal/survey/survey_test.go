package survey

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestionType(t *testing.T) {
	cases := map[string]QuestionType{
		"Шкала":                    TypeScale,
		"  Одиночный   выбор ":     TypeSingleChoice,
		"Multiple Choice":          TypeMultipleChoice,
		"Выпадающий список":        TypeDropDown,
		"Матрица 3D":               TypeMatrix3D,
		"Группа свободных ответов": TypeFreeTextGroup,
		"Загрузка файла":           TypeFileUpload,
		"Ranking":                  TypeUnknown,
	}
	for tag, want := range cases {
		assert.Equal(t, want, ParseQuestionType(tag), tag)
	}
	assert.True(t, TypeAreaChoice.IsMultiple())
	assert.False(t, TypeSingleChoice.IsMultiple())
	assert.True(t, TypeFreeTextMatrix.IsSkipped())
	assert.True(t, TypeMatrix3D.IsMatrix())
}

func TestParseInt(t *testing.T) {
	n, ok := ParseInt(" 9 ")
	require.True(t, ok)
	assert.Equal(t, 9, n)

	n, ok = ParseInt("10.0")
	require.True(t, ok)
	assert.Equal(t, 10, n)

	for _, s := range []string{"", "9.5", "great", "NaN"} {
		_, ok := ParseInt(s)
		assert.False(t, ok, s)
	}
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "1825 лет", NormalizeLabel("  18-25   ЛЕТ. "))
	// Dropped punctuation leaves no gap behind.
	assert.NotEqual(t, NormalizeLabel("18-25"), NormalizeLabel("18 25"))
	assert.Equal(t, "male", NormalizeLabel("Male!"))
	assert.Equal(t, NormalizeLabel("Женский"), NormalizeLabel("женский "))
}

func TestTableNarrowKeepsRespondentIDs(t *testing.T) {
	q := &Question{ID: "D1_1", Number: 1, Label: "crit", Answers: []Answer{
		{Respondent: 0, Value: "a"}, {Respondent: 1, Value: "b"}, {Respondent: 2, Value: "c"},
	}}
	tbl := &Table{Respondents: 3, Questions: []*Question{q}}

	narrowed := tbl.Narrow([]int{2, 0})
	require.Len(t, narrowed.Questions, 1)
	assert.Equal(t, 2, narrowed.Respondents)
	assert.Equal(t, "crit", narrowed.Questions[0].Label)
	assert.Equal(t, []Answer{{Respondent: 0, Value: "a"}, {Respondent: 2, Value: "c"}}, narrowed.Questions[0].Answers)
	assert.Len(t, q.Answers, 3, "source question must stay untouched")
}

func TestAccumulatorOrder(t *testing.T) {
	acc := NewAccumulator()
	acc.Add("b", 1)
	acc.Add("a", 2)
	acc.Add("c", 1)
	acc.Add("b", 1)
	acc.Remove("c")

	items := acc.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].Key)
	assert.Equal(t, 2, items[0].Count)

	acc.Add("d", 2)
	sorted := acc.ByWeight()
	assert.Equal(t, []string{"b", "a", "d"}, []string{sorted[0].Key, sorted[1].Key, sorted[2].Key})
}

func TestClassificationErrorIs(t *testing.T) {
	q := &Question{ID: "D1_4", RawType: "Ranking"}
	err := error(NewClassificationError(CodeUnknownType, q, "unknown question type %q", q.RawType))
	assert.True(t, errors.Is(err, ErrClassification))
	assert.Contains(t, err.Error(), "D1_4")

	var ce *ClassificationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, CodeUnknownType, ce.Code)
}

func TestResultTagAndSkippedLog(t *testing.T) {
	r := &AnalysisResult{
		Questions: []QuestionTable{{QuestionID: "D1_1"}},
		NPS:       []NPSTable{{QuestionID: "D1_2"}},
		Skipped:   []SkippedQuestion{{ID: "D1_3", Type: "Email", Name: "Contact"}},
	}
	r.Tag("D1_5=Male")
	assert.Equal(t, "D1_5=Male", r.Questions[0].Segment)
	assert.Equal(t, "D1_5=Male", r.NPS[0].Segment)
	assert.Equal(t, "\n D1_3 Email: Contact", r.SkippedLog())

	var all AnalysisResult
	all.Merge(r)
	all.Merge(r)
	assert.Len(t, all.Questions, 2)
	assert.Empty(t, all.Skipped)
}
