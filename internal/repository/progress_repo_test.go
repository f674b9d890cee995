package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/semenggoh/parkguide-api/internal/models"
)

func TestSeedIgnoresExistingProgress(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	first := models.GuideTrainingProgress{GuideID: 1, ModuleID: 2, Status: models.TrainingInProgress}
	require.NoError(t, repo.Seed(ctx, &first))

	// Seeding again must not clobber the existing row.
	completed := time.Now()
	done := models.GuideTrainingProgress{GuideID: 1, ModuleID: 2, Status: models.TrainingCompleted, CompletionDate: &completed}
	require.NoError(t, repo.MarkCompleted(ctx, &done))

	again := models.GuideTrainingProgress{GuideID: 1, ModuleID: 2, Status: models.TrainingInProgress}
	require.NoError(t, repo.Seed(ctx, &again))

	stored, err := repo.GetForGuideModule(ctx, 1, 2)
	require.NoError(t, err)
	require.Equal(t, models.TrainingCompleted, stored.Status)
	require.NotNil(t, stored.CompletionDate)
}

func TestMarkCompletedUpsertsFreshRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	completed := time.Now()
	progress := models.GuideTrainingProgress{GuideID: 3, ModuleID: 4, CompletionDate: &completed}
	require.NoError(t, repo.MarkCompleted(ctx, &progress))

	stored, err := repo.GetForGuideModule(ctx, 3, 4)
	require.NoError(t, err)
	require.Equal(t, models.TrainingCompleted, stored.Status)

	var count int64
	require.NoError(t, db.Model(&models.GuideTrainingProgress{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}
