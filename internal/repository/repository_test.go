package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Campus{},
		&models.Group{},
		&models.Donor{},
		&models.DonorListSubmission{},
		&models.PlatformFeedback{},
		&models.ActivityLog{},
	))
	return db
}
