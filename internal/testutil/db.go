// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nusa-erp/erp-api/internal/database"
	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh in-memory sqlite database with the schema migrated.
// The pool is pinned to one connection so every query sees the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// Date returns midnight UTC of the given calendar date
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DatePtr is Date returning a pointer
func DatePtr(year int, month time.Month, day int) *time.Time {
	d := Date(year, month, day)
	return &d
}

// CreateTestContact inserts a contact of the given type
func CreateTestContact(t *testing.T, db *gorm.DB, name string, contactType domain.ContactType) *domain.Contact {
	t.Helper()
	contact := &domain.Contact{
		Name:        name,
		ContactType: contactType,
		Email:       "finance@example.co.id",
		City:        "Jakarta",
	}
	require.NoError(t, db.Create(contact).Error)
	return contact
}

// Line builds a line item with a decimal quantity and percentage rates
func Line(description string, qty string, unitPrice int64, discountPct, taxRate string) domain.LineItem {
	return domain.LineItem{
		Description:     description,
		Quantity:        decimal.RequireFromString(qty),
		Unit:            "pcs",
		UnitPrice:       unitPrice,
		DiscountPercent: decimal.RequireFromString(discountPct),
		TaxRate:         decimal.RequireFromString(taxRate),
	}
}

// CreateTestDocument inserts a document with its lines exactly as given,
// without recalculating totals or allocating a number.
func CreateTestDocument(t *testing.T, db *gorm.DB, doc *domain.Document) *domain.Document {
	t.Helper()
	if doc.DocumentNumber == "" {
		doc.DocumentNumber = doc.DocumentType.Prefix() + "-TEST-" + uuid.NewString()[:8]
	}
	if doc.Status == "" {
		doc.Status = domain.StatusDraft
	}
	if doc.Currency == "" {
		doc.Currency = "IDR"
	}
	if doc.ExchangeRate.IsZero() {
		doc.ExchangeRate = decimal.NewFromInt(1)
	}
	if doc.DiscountType == "" {
		doc.DiscountType = domain.DiscountNone
	}
	if doc.DocumentDate.IsZero() {
		doc.DocumentDate = Date(2026, time.October, 16)
	}
	require.NoError(t, db.Create(doc).Error)
	return doc
}

// LastSequence returns the last number issued for the type and period, 0 when none
func LastSequence(t *testing.T, db *gorm.DB, docType domain.DocumentType, period string) int {
	t.Helper()
	var last int
	err := db.Model(&domain.NumberSequence{}).
		Where("document_type = ? AND period = ?", docType, period).
		Select("COALESCE(MAX(last_sequence), 0)").
		Scan(&last).Error
	require.NoError(t, err)
	return last
}
