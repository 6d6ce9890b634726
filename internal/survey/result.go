package survey

import (
	"fmt"
	"strings"
)

// OverallSegment tags rows computed over the whole population.
const OverallSegment = "Overall"

// CategoryRow is one counted category of a question.
type CategoryRow struct {
	Scale   string
	Answer  string
	Count   float64 // weighted
	Raw     int     // unweighted respondents
	Percent float64
}

// QuestionTable is the category table of one question column.
type QuestionTable struct {
	QuestionID string
	Question   string
	Type       QuestionType
	Rows       []CategoryRow
	Segment    string
}

// Bucket is a weighted count with its share.
type Bucket struct {
	Count   float64
	Percent float64
}

// NPSTable holds the Net Promoter Score breakdown.
type NPSTable struct {
	QuestionID string
	Question   string
	Promoters  Bucket
	Passives   Bucket
	Detractors Bucket
	Total      float64
	Score      float64
	Segment    string
}

// CSIRow is one criterion of the satisfaction index.
type CSIRow struct {
	Parameter  string
	Importance float64
	Rating     float64
	CSI        float64
}

// CSITable holds per-criterion CSI values and the overall index.
type CSITable struct {
	QuestionIDs []string
	Rows        []CSIRow
	Overall     float64
	Segment     string
}

// TRTable holds the yes/no achievement rate.
type TRTable struct {
	QuestionID string
	Question   string
	Yes        float64
	No         float64
	Rate       float64
	Segment    string
}

// ROTITable holds the 1..5 histogram and the share of 4 and 5 scores.
type ROTITable struct {
	QuestionID string
	Question   string
	Histogram  [5]float64
	Total      float64
	Average    float64
	Segment    string
}

// FreeTextEntry holds the cleaned verbatims of one free-text question.
type FreeTextEntry struct {
	QuestionID string
	Question   string
	Answers    []string
	Segment    string
}

// Joined renders the answers one per line.
func (f FreeTextEntry) Joined() string { return strings.Join(f.Answers, "\n") }

// SkippedQuestion records a question that produced no table.
type SkippedQuestion struct {
	ID   string
	Type string
	Name string
}

// AnalysisResult accumulates every table of one aggregation run.
type AnalysisResult struct {
	Questions []QuestionTable
	NPS       []NPSTable
	CSI       []CSITable
	TR        []TRTable
	ROTI      []ROTITable
	FreeText  []FreeTextEntry
	Skipped   []SkippedQuestion
}

// Merge appends every table of other to r. Skipped entries are not merged.
func (r *AnalysisResult) Merge(other *AnalysisResult) {
	if other == nil {
		return
	}
	r.Questions = append(r.Questions, other.Questions...)
	r.NPS = append(r.NPS, other.NPS...)
	r.CSI = append(r.CSI, other.CSI...)
	r.TR = append(r.TR, other.TR...)
	r.ROTI = append(r.ROTI, other.ROTI...)
	r.FreeText = append(r.FreeText, other.FreeText...)
}

// Tag stamps every table with the segment label.
func (r *AnalysisResult) Tag(segment string) {
	for i := range r.Questions {
		r.Questions[i].Segment = segment
	}
	for i := range r.NPS {
		r.NPS[i].Segment = segment
	}
	for i := range r.CSI {
		r.CSI[i].Segment = segment
	}
	for i := range r.TR {
		r.TR[i].Segment = segment
	}
	for i := range r.ROTI {
		r.ROTI[i].Segment = segment
	}
	for i := range r.FreeText {
		r.FreeText[i].Segment = segment
	}
}

// Empty reports whether the run produced no table at all.
func (r *AnalysisResult) Empty() bool {
	return len(r.Questions) == 0 && len(r.NPS) == 0 && len(r.CSI) == 0 &&
		len(r.TR) == 0 && len(r.ROTI) == 0 && len(r.FreeText) == 0
}

// SkippedLog renders one line per skipped question.
func (r *AnalysisResult) SkippedLog() string {
	var b strings.Builder
	for _, s := range r.Skipped {
		fmt.Fprintf(&b, "\n %s %s: %s", s.ID, s.Type, s.Name)
	}
	return b.String()
}
