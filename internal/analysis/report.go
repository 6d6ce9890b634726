package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
	"github.com/KaramelBytes/surveyloom-cli/internal/weighting"
)

// WeightingSummary records how the weights were fitted.
type WeightingSummary struct {
	Questions  []int             `json:"questions"`
	Population int               `json:"population"`
	Iterations int               `json:"iterations"`
	Converged  bool              `json:"converged"`
	MaxDelta   float64           `json:"max_delta"`
	Weights    weighting.Summary `json:"weights"`
}

// Report is the outcome of one run.
type Report struct {
	ID          string
	Source      string
	CreatedAt   time.Time
	Respondents int
	// Base is the respondent base of the whole-population run.
	Base       int
	SampleSize int
	Segmented  bool
	Segments   []int
	Weighting  *WeightingSummary
	Result     *survey.AnalysisResult
	Notes      []string
}

// Markdown renders the report as pipe tables.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[SURVEY SUMMARY]\n")
	if r.Source != "" {
		fmt.Fprintf(&b, "File: %s\n", r.Source)
	}
	fmt.Fprintf(&b, "Respondents: %d\n", r.Respondents)
	if r.Base != r.Respondents {
		fmt.Fprintf(&b, "Respondent base: %d\n", r.Base)
	}
	if r.Segmented {
		ids := make([]string, len(r.Segments))
		for i, n := range r.Segments {
			ids[i] = survey.QuestionID(n)
		}
		fmt.Fprintf(&b, "Segmented by: %s\n", strings.Join(ids, ", "))
	}
	if w := r.Weighting; w != nil {
		fmt.Fprintf(&b, "Weighted to sample size %d (population %d), %d iterations, converged: %t\n",
			r.SampleSize, w.Population, w.Iterations, w.Converged)
		fmt.Fprintf(&b, "Weights: min %.3f, max %.3f, mean %.3f, sd %.3f, zero %d\n",
			w.Weights.Min, w.Weights.Max, w.Weights.Mean, w.Weights.StdDev, w.Weights.Zero)
	}

	res := r.Result
	if res == nil {
		res = &survey.AnalysisResult{}
	}
	if len(res.Questions) > 0 {
		b.WriteString("\n[QUESTIONS]\n\n")
		header(&b, r.Segmented, "ID", "Question", "Scale", "Answer", "Count", "Percent")
		for _, q := range res.Questions {
			for _, row := range q.Rows {
				line(&b, r.Segmented, q.Segment, q.QuestionID, q.Question, row.Scale, row.Answer,
					count(row.Count), pct(row.Percent))
			}
		}
	}
	if len(res.NPS) > 0 {
		b.WriteString("\n[NPS]\n\n")
		header(&b, r.Segmented, "Group", "Count", "Percent")
		for _, n := range res.NPS {
			line(&b, r.Segmented, n.Segment, "Promoters", count(n.Promoters.Count), pct2(n.Promoters.Percent))
			line(&b, r.Segmented, n.Segment, "Passives", count(n.Passives.Count), pct2(n.Passives.Percent))
			line(&b, r.Segmented, n.Segment, "Detractors", count(n.Detractors.Count), pct2(n.Detractors.Percent))
			line(&b, r.Segmented, n.Segment, "NPS", "", pct2(n.Score))
		}
	}
	if len(res.CSI) > 0 {
		b.WriteString("\n[CSI]\n\n")
		header(&b, r.Segmented, "Parameter", "Importance", "Rating", "CSI")
		for _, c := range res.CSI {
			for _, row := range c.Rows {
				line(&b, r.Segmented, c.Segment, row.Parameter, num(row.Importance), num(row.Rating), num(row.CSI))
			}
			line(&b, r.Segmented, c.Segment, "Total", "", "", num(c.Overall))
		}
	}
	if len(res.TR) > 0 {
		b.WriteString("\n[TR]\n\n")
		header(&b, r.Segmented, "ID", "Question", "Yes", "No", "TR")
		for _, tr := range res.TR {
			line(&b, r.Segmented, tr.Segment, tr.QuestionID, tr.Question, count(tr.Yes), count(tr.No), pct2(tr.Rate))
		}
	}
	if len(res.ROTI) > 0 {
		b.WriteString("\n[ROTI]\n\n")
		header(&b, r.Segmented, "ID", "1", "2", "3", "4", "5", "Average")
		for _, ro := range res.ROTI {
			h := ro.Histogram
			line(&b, r.Segmented, ro.Segment, ro.QuestionID, count(h[0]), count(h[1]), count(h[2]), count(h[3]), count(h[4]), pct2(ro.Average))
		}
	}
	if len(res.FreeText) > 0 {
		b.WriteString("\n[OPEN COMMENTS]\n")
		for _, f := range res.FreeText {
			title := f.Question
			if r.Segmented {
				title = fmt.Sprintf("%s (%s)", title, f.Segment)
			}
			fmt.Fprintf(&b, "\n%s %s\n", f.QuestionID, safeVal(title))
			for _, a := range f.Answers {
				fmt.Fprintf(&b, "- %s\n", safeVal(a))
			}
		}
	}
	if len(res.Skipped) > 0 {
		b.WriteString("\n[SKIPPED QUESTIONS]\n")
		for _, s := range res.Skipped {
			fmt.Fprintf(&b, "- %s %s: %s\n", s.ID, s.Type, safeVal(s.Name))
		}
	}
	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func header(b *strings.Builder, segmented bool, cols ...string) {
	if segmented {
		cols = append([]string{"Segment"}, cols...)
	}
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")
}

func line(b *strings.Builder, segmented bool, seg string, cells ...string) {
	if segmented {
		cells = append([]string{seg}, cells...)
	}
	for i, c := range cells {
		cells[i] = safeVal(c)
	}
	b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
}

func count(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func num(v float64) string  { return fmt.Sprintf("%.2f", v) }
func pct(v float64) string  { return fmt.Sprintf("%.0f%%", v*100) }
func pct2(v float64) string { return fmt.Sprintf("%.2f%%", v*100) }

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
