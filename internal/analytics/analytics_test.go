package analytics

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mayconxzdev/automation-advisor/internal/model"
	"github.com/Mayconxzdev/automation-advisor/internal/store"
)

func newTestService(t *testing.T) (*Service, int64) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "analytics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))

	u, err := st.CreateUser(ctx, "demo", "demo@example.com", "hash", "Empresa Demo")
	require.NoError(t, err)

	_, err = st.SaveRecommendations(ctx, u.ID, "desc", []model.RecommendationRecord{
		{Title: "a", Priority: model.PriorityHigh, Provenance: model.ProvenanceFallback},
	})
	require.NoError(t, err)

	roiA, roiB := 200.0, 400.0
	savA, savB := 1000.0, 2000.0
	_, err = st.CreateProject(ctx, &model.Project{
		UserID: u.ID, Title: "p1", Description: "d", ROIPercentage: &roiA, MonthlySavings: &savA,
	})
	require.NoError(t, err)
	p2, err := st.CreateProject(ctx, &model.Project{
		UserID: u.ID, Title: "p2", Description: "d", ROIPercentage: &roiB, MonthlySavings: &savB,
	})
	require.NoError(t, err)
	done := model.StatusComplete
	_, err = st.UpdateProject(ctx, u.ID, p2.ID, &model.ProjectUpdate{Status: &done})
	require.NoError(t, err)

	return NewService(st), u.ID
}

func TestForUser(t *testing.T) {
	svc, userID := newTestService(t)

	got, err := svc.ForUser(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 1, got.TotalRecommendations)
	assert.Equal(t, 2, got.TotalProjects)
	assert.Equal(t, 1, got.ProjectsByStatus[model.StatusPending])
	assert.Equal(t, 1, got.ProjectsByStatus[model.StatusComplete])
	assert.InDelta(t, 300, got.AverageROI, 0.001)
	assert.InDelta(t, 3000, got.TotalMonthlySavings, 0.001)
}

func TestROIForUser(t *testing.T) {
	svc, userID := newTestService(t)

	got, err := svc.ROIForUser(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 2, got.ProjectCount)
	assert.InDelta(t, 300, got.AverageROI, 0.001)
	assert.InDelta(t, 3000, got.TotalMonthlySavings, 0.001)
	assert.InDelta(t, 36000, got.AnnualSavings, 0.001)
}

func TestForUser_EmptyPortfolio(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "analytics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))
	u, err := st.CreateUser(ctx, "empty", "empty@example.com", "hash", "Empresa")
	require.NoError(t, err)

	got, err := NewService(st).ForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, got.TotalRecommendations)
	assert.Zero(t, got.TotalProjects)
	assert.Empty(t, got.ProjectsByStatus)
	assert.Zero(t, got.AverageROI)
}
