package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
)

// DefaultPageMarkers are the first words of the column that starts the
// question block in survey platform exports.
var DefaultPageMarkers = []string{"Страница", "Page"}

// Layout describes where the question block starts in an export grid.
type Layout struct {
	// HeaderRow is the 0-based row holding "Question text (Type)" cells. The
	// marker row is the one above it; label and sub-label rows follow it.
	HeaderRow   int
	PageMarkers []string
}

// DefaultLayout matches the survey platform export.
func DefaultLayout() Layout {
	return Layout{HeaderRow: 1, PageMarkers: DefaultPageMarkers}
}

// ErrEmptyTable is returned when the grid has no header row.
var ErrEmptyTable = errors.New("survey table has no header row")

// BuildTable splits an export grid into questions. Columns before the first
// page-marker column are dropped; a blank header continues the previous
// question and inherits its label when its own label is blank.
func BuildTable(rows [][]string, source string, lay Layout) (*survey.Table, error) {
	if lay.HeaderRow < 1 {
		lay.HeaderRow = 1
	}
	if len(lay.PageMarkers) == 0 {
		lay.PageMarkers = DefaultPageMarkers
	}
	if len(rows) <= lay.HeaderRow {
		return nil, ErrEmptyTable
	}
	cell := func(r, c int) string {
		if r >= len(rows) || c >= len(rows[r]) {
			return ""
		}
		return strings.TrimSpace(rows[r][c])
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	start := markerColumn(rows[lay.HeaderRow-1], lay.PageMarkers)
	labelRow, subRow, first := lay.HeaderRow+1, lay.HeaderRow+2, lay.HeaderRow+3
	respondents := max(len(rows)-first, 0)

	t := &survey.Table{Source: source, Respondents: respondents}
	var (
		number int
		cur    *survey.Question
	)
	for c := start; c < width; c++ {
		header := cell(lay.HeaderRow, c)
		label := cell(labelRow, c)
		var q *survey.Question
		switch {
		case header != "":
			number++
			name, tag := splitHeader(header)
			q = &survey.Question{
				ID:      survey.QuestionID(number),
				Number:  number,
				Name:    name,
				Type:    survey.ParseQuestionType(tag),
				RawType: tag,
			}
		case cur != nil:
			q = &survey.Question{ID: cur.ID, Number: cur.Number, Name: cur.Name, Type: cur.Type, RawType: cur.RawType}
			if label == "" {
				label = cur.Label
			}
		default:
			continue
		}
		q.Label = label
		q.SubLabel = cell(subRow, c)
		q.Answers = make([]survey.Answer, respondents)
		for i := 0; i < respondents; i++ {
			q.Answers[i] = survey.Answer{Respondent: i, Value: cell(first+i, c)}
		}
		t.Questions = append(t.Questions, q)
		cur = q
	}
	if len(t.Questions) == 0 {
		return nil, fmt.Errorf("%w: no question columns in %s", ErrEmptyTable, source)
	}
	return t, nil
}

// markerColumn returns the first column whose first word is a page marker,
// or 0 when none is found.
func markerColumn(row []string, markers []string) int {
	for i, v := range row {
		fields := strings.Fields(v)
		if len(fields) == 0 {
			continue
		}
		for _, m := range markers {
			if strings.EqualFold(fields[0], m) {
				return i
			}
		}
	}
	return 0
}

// splitHeader parses "Question text (Type)" using the last parenthesised group.
func splitHeader(h string) (name, tag string) {
	closeIdx := strings.LastIndex(h, ")")
	if closeIdx < 0 {
		return h, ""
	}
	openIdx := strings.LastIndex(h[:closeIdx], "(")
	if openIdx < 0 {
		return h, ""
	}
	return strings.TrimSpace(h[:openIdx]), strings.TrimSpace(h[openIdx+1 : closeIdx])
}
