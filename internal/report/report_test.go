package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/surveyloom-cli/internal/analysis"
	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
)

func sampleReport(segmented bool) *analysis.Report {
	seg := ""
	if segmented {
		seg = survey.OverallSegment
	}
	return &analysis.Report{
		ID:          "r1",
		Source:      "party.xlsx",
		Respondents: 4,
		Base:        4,
		Segmented:   segmented,
		Result: &survey.AnalysisResult{
			Questions: []survey.QuestionTable{
				{QuestionID: "D1_2", Question: "Gender", Segment: seg, Rows: []survey.CategoryRow{
					{Scale: "Gender", Answer: "Male", Count: 2, Percent: 0.5},
					{Scale: "Gender", Answer: "Female", Count: 2, Percent: 0.5},
				}},
				{QuestionID: "D1_5", Question: "Venue", Segment: seg, Rows: []survey.CategoryRow{
					{Scale: "Venue", Answer: "Great", Count: 2.5, Percent: 0.62},
					{Scale: "Venue", Answer: "Poor", Count: 1.5, Percent: 0.38},
				}},
			},
			NPS: []survey.NPSTable{{QuestionID: "D1_3", Segment: seg,
				Promoters: survey.Bucket{Count: 2, Percent: 0.5}, Detractors: survey.Bucket{Count: 1, Percent: 0.25},
				Passives: survey.Bucket{Count: 1, Percent: 0.25}, Total: 4, Score: 0.25}},
			CSI: []survey.CSITable{{Segment: seg, Rows: []survey.CSIRow{{Parameter: "Speed", Importance: 4.5, Rating: 0.8, CSI: 3.6}}, Overall: 3.6}},
			FreeText: []survey.FreeTextEntry{{QuestionID: "D1_4", Question: "Comments", Segment: seg,
				Answers: []string{"«Great party»", "«Too loud»"}}},
		},
	}
}

func TestMainRowsRenumbersUnsegmented(t *testing.T) {
	rows := MainRows(sampleReport(false))
	require.Len(t, rows, 4)
	assert.Equal(t, "D1_1", rows[0][0])
	assert.Equal(t, "D1_1", rows[1][0])
	assert.Equal(t, "D1_2", rows[2][0])
	assert.Equal(t, int64(2), rows[0][4])
	assert.Equal(t, 2.5, rows[2][4])

	seg := MainRows(sampleReport(true))
	assert.Equal(t, "D1_5", seg[2][0], "segmented reports keep the original ids")
	assert.Equal(t, survey.OverallSegment, seg[2][6])
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(sampleReport(false), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetMain, SheetNPS, SheetCSI, SheetComments}, f.GetSheetList())

	v, err := f.GetCellValue(SheetMain, "F2")
	require.NoError(t, err)
	assert.Equal(t, "50%", v)

	v, err = f.GetCellValue(SheetNPS, "C5")
	require.NoError(t, err)
	assert.Equal(t, "25.00%", v)

	v, err = f.GetCellValue(SheetCSI, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Total", v)

	v, err = f.GetCellValue(SheetComments, "B2")
	require.NoError(t, err)
	assert.Equal(t, "«Great party»\n«Too loud»", v)
}

func TestCSV(t *testing.T) {
	b, err := CSV(sampleReport(true))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Question ID,Question,Scale,Answer,Count,Percent,Segment", lines[0])
	assert.Equal(t, "D1_2,Gender,Gender,Male,2,0.5,Overall", lines[1])
	assert.Equal(t, "D1_5,Venue,Venue,Great,2.5,0.62,Overall", lines[3])
}

func TestHTML(t *testing.T) {
	out := string(HTML(sampleReport(false)))
	assert.Contains(t, out, "<title>Survey report: party.xlsx</title>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "Gender")
}

func TestOutputPaths(t *testing.T) {
	x, c := OutputPaths("out", "/data/party 2024.xlsx")
	assert.Equal(t, filepath.Join("out", "party 2024_report.xlsx"), x)
	assert.Equal(t, filepath.Join("out", "party 2024_report.csv"), c)
}
