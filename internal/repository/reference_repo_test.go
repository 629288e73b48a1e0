package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
)

func TestCampusRepositoryFindOrCreateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCampusRepository(db)

	first, err := repo.FindOrCreate(context.Background(), "Dhaka University")
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := repo.FindOrCreate(context.Background(), "Dhaka University")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Campus{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestCampusRepositoryListIncludesDonorCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCampusRepository(db)

	campus := models.Campus{Name: "BUET"}
	empty := models.Campus{Name: "Alpha College"}
	require.NoError(t, db.Create(&campus).Error)
	require.NoError(t, db.Create(&empty).Error)

	donor := models.Donor{
		Name:          "Rahim",
		BloodGroup:    models.BloodGroupOPositive,
		ContactNumber: "01711111111",
		District:      "Dhaka",
		City:          "Dhaka",
		CampusID:      &campus.ID,
	}
	require.NoError(t, db.Create(&donor).Error)

	entities, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entities, 2)
	require.Equal(t, "Alpha College", entities[0].Name, "expected alphabetical order")
	require.Equal(t, int64(0), entities[0].DonorCount)
	require.Equal(t, "BUET", entities[1].Name)
	require.Equal(t, int64(1), entities[1].DonorCount)
}

func TestGroupRepositoryCreateConflictsOnDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db)

	_, err := repo.Create(context.Background(), "Badhan")
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), "Badhan")
	require.Error(t, err)
}

func TestGroupRepositoryDonorCountGuardsDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db)

	group, err := repo.Create(context.Background(), "Badhan")
	require.NoError(t, err)

	donor := models.Donor{
		Name:          "Karim",
		BloodGroup:    models.BloodGroupBPositive,
		ContactNumber: "01722222222",
		District:      "Dhaka",
		City:          "Dhaka",
		GroupID:       &group.ID,
	}
	require.NoError(t, db.Create(&donor).Error)

	count, err := repo.DonorCount(context.Background(), group.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}
