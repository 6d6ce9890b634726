// Package survey holds the in-memory survey model shared by the classifier,
// the weighting engine and the segmentation engine.
package survey

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// IDPrefix is prepended to the question ordinal to form a question id.
const IDPrefix = "D1_"

// QuestionID returns the stable identifier of the n-th question.
func QuestionID(n int) string { return fmt.Sprintf("%s%d", IDPrefix, n) }

// Answer is one respondent's raw cell for a question column.
type Answer struct {
	Respondent int
	Value      string
}

// Question is one survey column. Multi-column questions produce several
// Question values sharing ID and Number.
type Question struct {
	ID      string
	Number  int
	Name    string
	Type    QuestionType
	RawType string
	// Label is the criterion label of matrix columns (the question name for 3-D matrices).
	Label string
	// SubLabel is the sub-scale label of 3-D matrix columns.
	SubLabel string
	Answers  []Answer
}

// Narrow returns a copy of q holding only the answers of the member respondents.
func (q *Question) Narrow(members map[int]struct{}) *Question {
	out := *q
	out.Answers = make([]Answer, 0, len(members))
	for _, a := range q.Answers {
		if _, ok := members[a.Respondent]; ok {
			out.Answers = append(out.Answers, a)
		}
	}
	return &out
}

// Table is the whole respondent table split into questions.
type Table struct {
	Source      string
	Respondents int
	Questions   []*Question
}

// Find returns the first column of question number n.
func (t *Table) Find(n int) (*Question, bool) {
	for _, q := range t.Questions {
		if q.Number == n {
			return q, true
		}
	}
	return nil, false
}

// Narrow returns a table restricted to the given respondents. Respondent ids
// are kept so the original weight vector still applies.
func (t *Table) Narrow(members []int) *Table {
	set := make(map[int]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	out := &Table{Source: t.Source, Respondents: len(members), Questions: make([]*Question, len(t.Questions))}
	for i, q := range t.Questions {
		out.Questions[i] = q.Narrow(set)
	}
	return out
}

// Weights holds one weight per respondent, indexed by respondent id.
type Weights []float64

// Uniform returns n weights of 1.
func Uniform(n int) Weights {
	w := make(Weights, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

// At returns the weight of respondent id; ids outside the vector weigh 1.
func (w Weights) At(id int) float64 {
	if id < 0 || id >= len(w) {
		return 1
	}
	return w[id]
}

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	copy(out, w)
	return out
}

// ParseInt reports whether a cell holds an integer. Integral floats such as
// "9.0" (common in spreadsheet exports) are accepted.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
