package testutil

import (
	"encoding/base64"
	"os"
	"testing"

	"github.com/kendall-kelly/cobbler-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestAPIToken is the shared secret used by tests
const TestAPIToken = "test-token"

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
// It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// NewTestDB opens a migrated in-memory SQLite database that is closed when
// the test ends. The pool is pinned to one connection so every query sees
// the same in-memory database and foreign keys stay enabled.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, models.AutoMigrate(db), "failed to migrate test database")
	return db
}

// PNGSignature is the eight-byte header every PNG file starts with
const PNGSignature = "\x89PNG\r\n\x1a\n"

// PhotoData returns a small PNG data URL whose bytes carry the PNG signature
// followed by content
func PhotoData(content string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(PNGSignature+content))
}

// CreateEnquiry inserts an enquiry with sensible defaults; mutate may adjust it first
func CreateEnquiry(t *testing.T, db *gorm.DB, mutate ...func(e *models.Enquiry)) *models.Enquiry {
	t.Helper()

	enquiry := &models.Enquiry{
		CustomerName:  "Priya Sharma",
		Phone:         "9876543210",
		Address:       "12 MG Road, Bengaluru",
		Message:       "Heel broken on leather boots",
		InquirySource: "WhatsApp",
		ProductType:   "Shoe",
		Quantity:      1,
		Status:        models.EnquiryStatusNew,
		CurrentStage:  models.StageEnquiry,
	}
	for _, m := range mutate {
		m(enquiry)
	}
	require.NoError(t, db.Create(enquiry).Error)
	return enquiry
}

// Float returns a pointer to f
func Float(f float64) *float64 {
	return &f
}
