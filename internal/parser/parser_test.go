package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/surveyloom-cli/internal/parser"
)

func TestReadFileCSVSniffsSemicolon(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "export.csv")
	content := "\ufeffID;Страница 1;\n" +
		";Gender (Single choice);Rating (Scale)\n" +
		"1;Male;9\n" +
		";;\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	rows, err := parser.ReadFile(p, parser.Options{})
	require.NoError(t, err)
	require.Len(t, rows, 3, "trailing blank row is dropped")
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, []string{"1", "Male", "9"}, rows[2])
}

func TestReadFileTSV(t *testing.T) {
	p := filepath.Join(t.TempDir(), "export.tsv")
	require.NoError(t, os.WriteFile(p, []byte("a\tb\n1\t2\n"), 0o644))
	rows, err := parser.ReadFile(p, parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, rows)
}

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"ignored"}))
	_, err := f.NewSheet("Answers")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Answers", "A1", &[]any{"Page 1", ""}))
	require.NoError(t, f.SetSheetRow("Answers", "A2", &[]any{"Mood (Scale)", "Comment (Free text)"}))
	require.NoError(t, f.SetSheetRow("Answers", "A3", &[]any{5, "all good here"}))
	require.NoError(t, f.SaveAs(path))
}

func TestReadFileXLSXSheets(t *testing.T) {
	p := filepath.Join(t.TempDir(), "survey.xlsx")
	writeWorkbook(t, p)

	rows, err := parser.ReadFile(p, parser.Options{SheetName: "answers"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Mood (Scale)", rows[1][0])
	assert.Equal(t, "5", rows[2][0])

	rows, err = parser.ReadFile(p, parser.Options{SheetIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, "Page 1", rows[0][0])

	rows, err = parser.ReadFile(p, parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, "ignored", rows[0][0])

	_, err = parser.ReadFile(p, parser.Options{SheetName: "Missing"})
	assert.ErrorContains(t, err, "Available sheets: Sheet1, Answers")
	_, err = parser.ReadFile(p, parser.Options{SheetIndex: 5})
	assert.Error(t, err)
}

func TestReadFileUnsupported(t *testing.T) {
	_, err := parser.ReadFile("notes.docx", parser.Options{})
	assert.True(t, errors.Is(err, parser.ErrUnsupported))
	assert.False(t, parser.Supported("notes.docx"))
	assert.True(t, parser.Supported("SURVEY.XLSX"))
}
