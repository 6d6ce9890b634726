package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	cfgpkg "github.com/KaramelBytes/surveyloom-cli/internal/config"
	"github.com/KaramelBytes/surveyloom-cli/internal/store"
)

const surveyCSV = `Respondent,Страница 1,,,
,Gender (Одиночный выбор),Age (Одиночный выбор),Recommend (Шкала),Comments (Свободный ответ)
,,,,
,,,,
1,Male,18-34,10,great party overall
2,Female,35+,9,ok
3,Male,35+,6,music was too loud.
4,Female,18-34,8,
`

const referenceYAML = `name: city census
population: 1000
dimensions:
  - question: 1
    name: gender
    categories:
      - {label: Male, count: 480}
      - {label: Female, count: 520}
  - question: 2
    name: age
    categories:
      - {label: 18-34, count: 400}
      - {label: 35+, count: 600}
`

// resetFlags clears values and Changed state that persist between Execute calls.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(args ...string) error {
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	if err := execute(args...); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

// isolate points HOME and the working directory at fresh temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(home)
	return home
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCLI_AnalyzeWritesAllFormats(t *testing.T) {
	home := isolate(t)
	in := writeFile(t, filepath.Join(home, "survey.csv"), surveyCSV)
	out := filepath.Join(home, "out")

	runCmd(t, "analyze", in, "-o", out, "--nps", "3", "--csv", "--markdown", "--html")

	for _, name := range []string{"survey_report.xlsx", "survey_report.csv", "survey_report.md", "survey_report.html"} {
		_, err := os.Stat(filepath.Join(out, name))
		require.NoError(t, err, name)
	}
	md, err := os.ReadFile(filepath.Join(out, "survey_report.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "| D1_1 | Gender | Gender | Male | 2 | 50% |")
	assert.Contains(t, string(md), "| NPS |  | 25.00% |")
	assert.Contains(t, string(md), "«Music was too loud»")

	csv, err := os.ReadFile(filepath.Join(out, "survey_report.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csv), "Question ID,Question,Scale,Answer,Count,Percent\n"))
}

func TestCLI_AnalyzeErrorLeavesNoOutputs(t *testing.T) {
	home := isolate(t)
	in := writeFile(t, filepath.Join(home, "survey.csv"), surveyCSV)
	out := filepath.Join(home, "out")

	err := execute("analyze", in, "-o", out, "--nps", "4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "D1_4")
	_, statErr := os.Stat(filepath.Join(out, "survey_report.xlsx"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCLI_TargetsAndWeightedSegmentedRun(t *testing.T) {
	home := isolate(t)
	in := writeFile(t, filepath.Join(home, "survey.csv"), surveyCSV)
	ref := writeFile(t, filepath.Join(home, "census.yaml"), referenceYAML)
	out := filepath.Join(home, "out")

	runCmd(t, "targets", "calc", ref)
	runCmd(t, "targets", "show")

	c, err := cfgpkg.Load("")
	require.NoError(t, err)
	st, err := store.New(c.DataDir)
	require.NoError(t, err)
	calcs, err := st.ListCalculations(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, calcs, 1)
	assert.Equal(t, 278, calcs[0].SampleSize)
	require.NoError(t, st.Close())

	runCmd(t, "analyze", in, "-o", out, "--reference-store", "--segment", "1")

	f, err := excelize.OpenFile(filepath.Join(out, "survey_report.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	hdr, err := f.GetCellValue("Report", "G1")
	require.NoError(t, err)
	assert.Equal(t, "Segment", hdr)
	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	var segments []string
	for _, r := range rows[1:] {
		if len(r) == 7 {
			segments = append(segments, r[6])
		}
	}
	assert.Contains(t, segments, "D1_1=Male")
	assert.Contains(t, segments, "Overall")
}

func TestCLI_WeightByNeedsReference(t *testing.T) {
	home := isolate(t)
	in := writeFile(t, filepath.Join(home, "survey.csv"), surveyCSV)

	err := execute("analyze", in, "--weight-by", "1,2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--reference")
}

func TestCLI_ProjectSettingsAndHistory(t *testing.T) {
	home := isolate(t)
	in := writeFile(t, filepath.Join(home, "survey.csv"), surveyCSV)

	runCmd(t, "init", "party", "-d", "summer party")
	runCmd(t, "project", "set", "-p", "party", "--nps", "3", "--segment", "2")
	runCmd(t, "analyze", in, "-p", "party", "-o", filepath.Join(home, "out"))
	runCmd(t, "list", "--runs", "-p", "party")
	runCmd(t, "project", "show", "-p", "party")

	p, err := loadProjectByName("party")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Settings.NPS)
	assert.Equal(t, []int{2}, p.Settings.Segments)
	hist := p.History()
	require.Len(t, hist, 1)
	assert.True(t, hist[0].Segmented)
	assert.Equal(t, 4, hist[0].Respondents)
	assert.Len(t, hist[0].Outputs, 1)

	// refuses to re-initialize
	assert.Error(t, execute("init", "party"))
}

func TestCLI_TrashAndConfig(t *testing.T) {
	isolate(t)

	runCmd(t, "trash", "add", "n/a", "Не знаю")
	runCmd(t, "config", "set", "margin_of_error", "0.03")
	runCmd(t, "trash", "remove", "Hard to say")
	runCmd(t, "config", "show")

	c, err := cfgpkg.Load("")
	require.NoError(t, err)
	assert.Contains(t, c.TrashList, "n/a")
	assert.NotContains(t, c.TrashList, "Hard to say")
	assert.Equal(t, 0.03, c.MarginOfError)

	assert.Error(t, execute("config", "set", "nope", "1"))
	assert.Error(t, execute("trash", "remove", "never listed"))
}
