package project_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/surveyloom-cli/internal/project"
)

func TestSaveLoadKeepsSettingsAndRuns(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "party")
	p := project.NewProject("party", "summer party feedback", dir)
	p.Settings.NPS = 3
	p.Settings.CSI = []int{5, 6}
	p.Settings.Segments = []int{1}

	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	second := p.AddRun(project.Run{Source: "/data/wave2.xlsx", Respondents: 40, Base: 40, CreatedAt: t0.Add(time.Hour)})
	first := p.AddRun(project.Run{Source: "/data/wave1.xlsx", Respondents: 30, Base: 278, Weighted: true, CreatedAt: t0})
	require.NoError(t, p.Save())

	got, err := project.LoadProject(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got.RootDir())
	assert.Equal(t, 3, got.Settings.NPS)
	assert.Equal(t, []int{5, 6}, got.Settings.CSI)

	hist := got.History()
	require.Len(t, hist, 2)
	assert.Equal(t, first, hist[0].ID)
	assert.Equal(t, second, hist[1].ID)

	desc := got.Describe()
	assert.Contains(t, desc, "nps: 3")
	assert.Contains(t, desc, "csi: 5,6")
	assert.Contains(t, desc, "[RUNS] 2")
	assert.True(t, strings.Contains(desc, "wave1.xlsx  respondents=30 base=278 weighted"))
	assert.NotContains(t, desc, "roti:")
}

func TestLoadProjectMissing(t *testing.T) {
	_, err := project.LoadProject(t.TempDir())
	assert.Error(t, err)
}

func TestCreateRefusesExisting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "party")
	p, err := project.Create("party", "", dir)
	require.NoError(t, err)
	assert.Equal(t, "party", p.Name)

	_, err = project.Create("party", "", dir)
	assert.ErrorIs(t, err, project.ErrExists)

	busy := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(busy, "notes.txt"), []byte("x"), 0o644))
	_, err = project.Create("busy", "", busy)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, project.ErrExists)
}
