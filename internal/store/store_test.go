package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/surveyloom-cli/internal/targets"
)

func testReference(name string) *targets.Reference {
	return &targets.Reference{
		Name:       name,
		Population: 1000,
		Dimensions: []targets.Dimension{
			{Question: 1, Name: "gender", Categories: []targets.Category{{Label: "Male", Count: 480}, {Label: "Female", Count: 520}}},
			{Question: 2, Name: "age", Categories: []targets.Category{{Label: "18-34", Count: 400}, {Label: "35+", Count: 600}}},
		},
	}
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLatestReferenceEmpty(t *testing.T) {
	s := openTemp(t)
	_, err := s.LatestReference(context.Background())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSaveAndLoadReference(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	_, err := s.SaveReference(ctx, testReference("census 2020"))
	require.NoError(t, err)
	second, err := s.SaveReference(ctx, testReference("census 2024"))
	require.NoError(t, err)

	latest, err := s.LatestReference(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, "census 2024", latest.Name)
	assert.Equal(t, 1000, latest.Population)

	ref, err := latest.Reference()
	require.NoError(t, err)
	require.Len(t, ref.Dimensions, 2)
	assert.Equal(t, 2, ref.Dimensions[1].Question)
	assert.Equal(t, 520.0, ref.Dimensions[0].Categories[1].Count)
}

func TestSaveReferenceRejectsInvalid(t *testing.T) {
	s := openTemp(t)
	ref := testReference("one")
	ref.Dimensions = ref.Dimensions[:1]
	_, err := s.SaveReference(context.Background(), ref)
	assert.Error(t, err)
}

func TestCalculations(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	rs, err := s.SaveReference(ctx, testReference("census"))
	require.NoError(t, err)
	ref, err := rs.Reference()
	require.NoError(t, err)
	plan, err := targets.Build(ref, targets.DefaultSampling())
	require.NoError(t, err)

	first, err := s.SaveCalculation(ctx, rs.ID, plan)
	require.NoError(t, err)
	assert.Equal(t, 278, first.SampleSize)
	second, err := s.SaveCalculation(ctx, rs.ID, plan)
	require.NoError(t, err)

	all, err := s.ListCalculations(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	one, err := s.ListCalculations(ctx, rs.ID, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)

	got, err := one[0].Plan()
	require.NoError(t, err)
	assert.Equal(t, 278, got.SampleSize)
	share, ok := got.Dimensions[0].Distribution.Lookup("female")
	require.True(t, ok)
	assert.InDelta(t, 0.52, share, 1e-9)

	none, err := s.ListCalculations(ctx, "missing", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
