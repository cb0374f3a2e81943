package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/nusa-erp/erp-api/internal/repository"
	"github.com/nusa-erp/erp-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestContactRepository_CRUD(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewContactRepository(db)
	ctx := context.Background()

	contact := &domain.Contact{
		Name:        "PT Nusantara Teknik",
		ContactType: domain.ContactTypeCustomer,
		Email:       "ap@nusantara.co.id",
		TaxID:       "01.234.567.8-901.000",
	}
	require.NoError(t, repo.Create(ctx, contact))
	assert.NotEqual(t, uuid.Nil, contact.ID)

	found, err := repo.GetByID(ctx, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "PT Nusantara Teknik", found.Name)

	found.City = "Bandung"
	require.NoError(t, repo.Update(ctx, found))

	found, err = repo.GetByID(ctx, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bandung", found.City)

	require.NoError(t, repo.Delete(ctx, contact.ID))
	_, err = repo.GetByID(ctx, contact.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestContactRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewContactRepository(db)
	ctx := context.Background()

	testutil.CreateTestContact(t, db, "PT Beta", domain.ContactTypeCustomer)
	testutil.CreateTestContact(t, db, "PT Alfa", domain.ContactTypeCustomer)
	testutil.CreateTestContact(t, db, "CV Gamma", domain.ContactTypeSupplier)

	contacts, total, err := repo.List(ctx, 1, 20, nil, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, "CV Gamma", contacts[0].Name)

	customer := domain.ContactTypeCustomer
	contacts, total, err = repo.List(ctx, 1, 20, &customer, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "PT Alfa", contacts[0].Name)

	_, total, err = repo.List(ctx, 1, 20, nil, "alfa")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
