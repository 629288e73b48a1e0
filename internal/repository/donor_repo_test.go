package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
)

func TestDonorRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDonorRepository(db)

	campus := models.Campus{Name: "Dhaka University"}
	require.NoError(t, db.Create(&campus).Error)

	available := models.Donor{
		Name:          "Rahim",
		BloodGroup:    models.BloodGroupOPositive,
		ContactNumber: "01711111111",
		District:      "Dhaka",
		City:          "Dhaka",
		IsAvailable:   true,
		CampusID:      &campus.ID,
	}
	unavailable := models.Donor{
		Name:          "Karim",
		BloodGroup:    models.BloodGroupABNegative,
		ContactNumber: "01722222222",
		District:      "Sylhet",
		City:          "Sylhet",
		IsAvailable:   false,
	}
	require.NoError(t, db.Create(&available).Error)
	require.NoError(t, db.Create(&unavailable).Error)

	bloodGroup := models.BloodGroupOPositive
	donors, total, err := repo.List(context.Background(), DonorFilter{BloodGroup: &bloodGroup, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, donors, 1)
	require.Equal(t, "Rahim", donors[0].Name)
	require.NotNil(t, donors[0].Campus)
	require.Equal(t, "Dhaka University", donors[0].Campus.Name)

	availableOnly := true
	donors, total, err = repo.List(context.Background(), DonorFilter{Available: &availableOnly, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Rahim", donors[0].Name)

	district := "Syl"
	donors, total, err = repo.List(context.Background(), DonorFilter{District: &district, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Karim", donors[0].Name)
}

func TestDonorRepositoryContactNumberUnique(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDonorRepository(db)

	donor := models.Donor{
		Name:          "Rahim",
		BloodGroup:    models.BloodGroupOPositive,
		ContactNumber: "01711111111",
		District:      "Dhaka",
		City:          "Dhaka",
	}
	require.NoError(t, repo.Create(context.Background(), &donor))

	duplicate := models.Donor{
		Name:          "Impostor",
		BloodGroup:    models.BloodGroupANegative,
		ContactNumber: "01711111111",
		District:      "Dhaka",
		City:          "Dhaka",
	}
	require.Error(t, repo.Create(context.Background(), &duplicate))

	found, err := repo.FindByContactNumber(context.Background(), "01711111111")
	require.NoError(t, err)
	require.Equal(t, donor.ID, found.ID)
}

func TestDonorRepositoryCreateBatchSkipsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDonorRepository(db)

	existing := models.Donor{
		Name:          "Rahim",
		BloodGroup:    models.BloodGroupOPositive,
		ContactNumber: "01711111111",
		District:      "Dhaka",
		City:          "Dhaka",
	}
	require.NoError(t, db.Create(&existing).Error)

	batch := []models.Donor{
		{Name: "Copy", BloodGroup: models.BloodGroupOPositive, ContactNumber: "01711111111", District: "Dhaka", City: "Dhaka"},
		{Name: "Fresh", BloodGroup: models.BloodGroupBPositive, ContactNumber: "01733333333", District: "Dhaka", City: "Dhaka"},
	}
	created, err := repo.CreateBatch(context.Background(), batch)
	require.NoError(t, err)
	require.Equal(t, int64(1), created)

	var total int64
	require.NoError(t, db.Model(&models.Donor{}).Count(&total).Error)
	require.Equal(t, int64(2), total)
}
