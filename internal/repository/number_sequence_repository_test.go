package repository_test

import (
	"context"
	"testing"

	"github.com/nusa-erp/erp-api/internal/database"
	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/nusa-erp/erp-api/internal/repository"
	"github.com/nusa-erp/erp-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberSequenceRepository_GetNextNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := repo.GetNextNumber(ctx, domain.DocumentTypeQuotation, "202610")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// Each type and each month has its own counter
	got, err := repo.GetNextNumber(ctx, domain.DocumentTypeInvoice, "202610")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = repo.GetNextNumber(ctx, domain.DocumentTypeQuotation, "202611")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	assert.Equal(t, 3, testutil.LastSequence(t, db, domain.DocumentTypeQuotation, "202610"))
	assert.Zero(t, testutil.LastSequence(t, db, domain.DocumentTypeBill, "202610"))

	var rows int64
	require.NoError(t, db.Model(&domain.NumberSequence{}).Count(&rows).Error)
	assert.Equal(t, int64(3), rows)
}

func TestNumberSequenceRepository_RolledBackWithTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	tx := database.NewTxManager(db)
	ctx := context.Background()

	_, err := repo.GetNextNumber(ctx, domain.DocumentTypeQuotation, "202610")
	require.NoError(t, err)

	err = tx.RunInTransaction(ctx, func(ctx context.Context) error {
		n, err := repo.GetNextNumber(ctx, domain.DocumentTypeQuotation, "202610")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	n, err := repo.GetNextNumber(ctx, domain.DocumentTypeQuotation, "202610")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
