package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nusa-erp/erp-api/internal/database"
	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/nusa-erp/erp-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTransaction_CommitAndRollback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	m := database.NewTxManager(db)
	ctx := context.Background()

	err := m.RunInTransaction(ctx, func(ctx context.Context) error {
		assert.True(t, database.InTransaction(ctx))
		return database.Conn(ctx, db).Create(&domain.Contact{Name: "PT Maju", ContactType: domain.ContactTypeCustomer}).Error
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = m.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := database.Conn(ctx, db).Create(&domain.Contact{Name: "PT Gagal", ContactType: domain.ContactTypeCustomer}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&domain.Contact{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.False(t, database.InTransaction(ctx))
}

func TestRunInTransaction_NestedJoinsOuter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	m := database.NewTxManager(db)

	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		inner := m.RunInTransaction(ctx, func(ctx context.Context) error {
			return database.Conn(ctx, db).Create(&domain.Contact{Name: "CV Sejahtera", ContactType: domain.ContactTypeSupplier}).Error
		})
		if inner != nil {
			return inner
		}
		return errors.New("abort outer")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.Contact{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
