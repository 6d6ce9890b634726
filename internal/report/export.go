package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"

	"github.com/KaramelBytes/surveyloom-cli/internal/analysis"
	"github.com/KaramelBytes/surveyloom-cli/internal/utils"
)

// CSV renders the main sheet as UTF-8 CSV.
func CSV(rep *analysis.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(MainHeader(rep.Segmented)); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range MainRows(rep) {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = cellString(v)
		}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCSV writes the CSV export atomically.
func WriteCSV(rep *analysis.Report, path string) error {
	b, err := CSV(rep)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, b)
}

// HTML renders the Markdown report as a standalone page.
func HTML(rep *analysis.Report) []byte {
	p := mdparser.NewWithExtensions(mdparser.CommonExtensions)
	title := "Survey report"
	if rep.Source != "" {
		title += ": " + rep.Source
	}
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage, Title: title})
	return markdown.ToHTML([]byte(rep.Markdown()), p, r)
}

// WriteHTML writes the HTML export atomically.
func WriteHTML(rep *analysis.Report, path string) error {
	return utils.SafeWriteFile(path, HTML(rep))
}

// WriteMarkdown writes the Markdown export atomically.
func WriteMarkdown(rep *analysis.Report, path string) error {
	return utils.SafeWriteFile(path, []byte(rep.Markdown()))
}

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
