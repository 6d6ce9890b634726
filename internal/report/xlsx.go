// Package report serialises an analysis report as an XLSX workbook, a CSV of
// the main sheet and an HTML page.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/surveyloom-cli/internal/analysis"
	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
)

// Sheet names of the workbook.
const (
	SheetMain     = "Report"
	SheetNPS      = "NPS"
	SheetCSI      = "CSI"
	SheetTR       = "TR"
	SheetROTI     = "ROTI"
	SheetComments = "Open comments"
)

// built-in excelize number formats
const (
	fmtPercent  = 9  // 0%
	fmtPercent2 = 10 // 0.00%
)

// MainHeader is the column header of the main sheet and the CSV export.
func MainHeader(segmented bool) []string {
	h := []string{"Question ID", "Question", "Scale", "Answer", "Count", "Percent"}
	if segmented {
		h = append(h, "Segment")
	}
	return h
}

// MainRows flattens the category tables. In an unsegmented report question
// ids are renumbered sequentially so skipped and metric questions leave no gaps.
func MainRows(rep *analysis.Report) [][]any {
	if rep.Result == nil {
		return nil
	}
	var (
		rows   [][]any
		prev   string
		serial int
	)
	for _, q := range rep.Result.Questions {
		id := q.QuestionID
		if !rep.Segmented {
			if id != prev {
				serial++
				prev = id
			}
			id = survey.QuestionID(serial)
		}
		for _, r := range q.Rows {
			row := []any{id, q.Question, r.Scale, r.Answer, number(r.Count), r.Percent}
			if rep.Segmented {
				row = append(row, q.Segment)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteXLSX writes the workbook. Metric and comment sheets are added only
// when the report has data for them.
func WriteXLSX(rep *analysis.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	w := &sheetWriter{f: f}
	if err := w.init(); err != nil {
		return err
	}
	if err := f.SetSheetName("Sheet1", SheetMain); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	seg := rep.Segmented
	main := MainRows(rep)
	w.table(SheetMain, MainHeader(seg), main)
	w.percentColumn(SheetMain, 6, len(main), w.pct)

	res := rep.Result
	if res == nil {
		res = &survey.AnalysisResult{}
	}
	if len(res.NPS) > 0 {
		w.table(SheetNPS, withSegment([]string{"Group", "Count", "Percent"}, seg), npsRows(res.NPS, seg))
		w.percentColumn(SheetNPS, 3, 4*len(res.NPS), w.pct2)
	}
	if len(res.CSI) > 0 {
		w.table(SheetCSI, withSegment([]string{"Parameter", "Importance", "Rating", "CSI"}, seg), csiRows(res.CSI, seg))
	}
	if len(res.TR) > 0 {
		w.table(SheetTR, withSegment([]string{"Question ID", "Question", "Yes", "No", "TR"}, seg), trRows(res.TR, seg))
		w.percentColumn(SheetTR, 5, len(res.TR), w.pct2)
	}
	if len(res.ROTI) > 0 {
		w.table(SheetROTI, withSegment([]string{"Question ID", "Question", "1", "2", "3", "4", "5", "Average"}, seg), rotiRows(res.ROTI, seg))
		w.percentColumn(SheetROTI, 8, len(res.ROTI), w.pct2)
	}
	if len(res.FreeText) > 0 {
		w.table(SheetComments, withSegment([]string{"Question", "Answers"}, seg), commentRows(res.FreeText, seg))
	}
	if w.err != nil {
		return w.err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}

// sheetWriter keeps the first error so the sheet builders stay linear.
type sheetWriter struct {
	f        *excelize.File
	bold     int
	pct      int
	pct2     int
	err      error
	sheetSet map[string]bool
}

func (w *sheetWriter) init() error {
	var err error
	if w.bold, err = w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if w.pct, err = w.f.NewStyle(&excelize.Style{NumFmt: fmtPercent}); err != nil {
		return fmt.Errorf("percent style: %w", err)
	}
	if w.pct2, err = w.f.NewStyle(&excelize.Style{NumFmt: fmtPercent2}); err != nil {
		return fmt.Errorf("percent style: %w", err)
	}
	w.sheetSet = map[string]bool{"Sheet1": true}
	return nil
}

func (w *sheetWriter) table(sheet string, header []string, rows [][]any) {
	if w.err != nil {
		return
	}
	if sheet != SheetMain && !w.sheetSet[sheet] {
		if _, err := w.f.NewSheet(sheet); err != nil {
			w.err = fmt.Errorf("new sheet %s: %w", sheet, err)
			return
		}
		w.sheetSet[sheet] = true
	}
	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := w.f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		w.err = fmt.Errorf("write %s header: %w", sheet, err)
		return
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := w.f.SetCellStyle(sheet, "A1", last, w.bold); err != nil {
		w.err = fmt.Errorf("style %s header: %w", sheet, err)
		return
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := r
		if err := w.f.SetSheetRow(sheet, cell, &row); err != nil {
			w.err = fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
			return
		}
	}
}

func (w *sheetWriter) percentColumn(sheet string, col, n, style int) {
	if w.err != nil || n == 0 {
		return
	}
	top, _ := excelize.CoordinatesToCellName(col, 2)
	bottom, _ := excelize.CoordinatesToCellName(col, n+1)
	if err := w.f.SetCellStyle(sheet, top, bottom, style); err != nil {
		w.err = fmt.Errorf("style %s percentages: %w", sheet, err)
	}
}

func withSegment(h []string, segmented bool) []string {
	if segmented {
		return append(h, "Segment")
	}
	return h
}

func tagged(row []any, seg string, segmented bool) []any {
	if segmented {
		return append(row, seg)
	}
	return row
}

func npsRows(tables []survey.NPSTable, seg bool) [][]any {
	var rows [][]any
	for _, n := range tables {
		rows = append(rows,
			tagged([]any{"Promoters", number(n.Promoters.Count), n.Promoters.Percent}, n.Segment, seg),
			tagged([]any{"Passives", number(n.Passives.Count), n.Passives.Percent}, n.Segment, seg),
			tagged([]any{"Detractors", number(n.Detractors.Count), n.Detractors.Percent}, n.Segment, seg),
			tagged([]any{"NPS", "", n.Score}, n.Segment, seg),
		)
	}
	return rows
}

func csiRows(tables []survey.CSITable, seg bool) [][]any {
	var rows [][]any
	for _, c := range tables {
		for _, r := range c.Rows {
			rows = append(rows, tagged([]any{r.Parameter, r.Importance, r.Rating, r.CSI}, c.Segment, seg))
		}
		rows = append(rows, tagged([]any{"Total", "", "", c.Overall}, c.Segment, seg))
	}
	return rows
}

func trRows(tables []survey.TRTable, seg bool) [][]any {
	rows := make([][]any, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, tagged([]any{t.QuestionID, t.Question, number(t.Yes), number(t.No), t.Rate}, t.Segment, seg))
	}
	return rows
}

func rotiRows(tables []survey.ROTITable, seg bool) [][]any {
	rows := make([][]any, 0, len(tables))
	for _, t := range tables {
		h := t.Histogram
		rows = append(rows, tagged([]any{t.QuestionID, t.Question,
			number(h[0]), number(h[1]), number(h[2]), number(h[3]), number(h[4]), t.Average}, t.Segment, seg))
	}
	return rows
}

func commentRows(entries []survey.FreeTextEntry, seg bool) [][]any {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, tagged([]any{e.Question, e.Joined()}, e.Segment, seg))
	}
	return rows
}

// number keeps whole counts as integers in the sheet.
func number(v float64) any {
	if v == float64(int64(v)) {
		return int64(v)
	}
	return v
}

// OutputPaths derives the export file names in dir from the source file,
// e.g. "survey.xlsx" gives "survey_report.xlsx" and "survey_report.csv".
func OutputPaths(dir, source string) (xlsxPath, csvPath string) {
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name+"_report.xlsx"), filepath.Join(dir, name+"_report.csv")
}
