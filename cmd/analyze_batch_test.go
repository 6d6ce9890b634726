package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeBatch_SameBasenameGetsSuffix(t *testing.T) {
	home := isolate(t)

	// Two exports with the same basename in different directories
	writeFile(t, filepath.Join(home, "d1", "survey.csv"), surveyCSV)
	writeFile(t, filepath.Join(home, "d2", "survey.csv"), surveyCSV)
	writeFile(t, filepath.Join(home, "d2", "notes.txt"), "not a survey")
	out := filepath.Join(home, "out")

	runCmd(t, "init", "batchp")
	runCmd(t, "analyze-batch", filepath.Join(home, "d*", "*"), "-p", "batchp", "-o", out, "--quiet", "--csv")

	for _, name := range []string{"survey_report.xlsx", "survey_report.csv", "survey_report__2.xlsx", "survey_report__2.csv"} {
		_, err := os.Stat(filepath.Join(out, name))
		require.NoError(t, err, name)
	}

	p, err := loadProjectByName("batchp")
	require.NoError(t, err)
	assert.Len(t, p.History(), 2)
}

func TestAnalyzeBatch_NoMatches(t *testing.T) {
	home := isolate(t)
	err := execute("analyze-batch", filepath.Join(home, "missing", "*.xlsx"))
	assert.Error(t, err)
}
