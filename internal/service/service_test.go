package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nusa-erp/erp-api/internal/database"
	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/nusa-erp/erp-api/internal/repository"
	"github.com/nusa-erp/erp-api/internal/service"
	"github.com/nusa-erp/erp-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	wib   = time.FixedZone("WIB", 7*60*60)
	today = testutil.Date(2026, time.October, 16)
	clerk = domain.Actor{ID: "user-1", Name: "Siti Rahayu"}
	boss  = domain.Actor{ID: "user-2", Name: "Budi Santoso"}
)

type fixture struct {
	db       *gorm.DB
	docs     *service.DocumentService
	contacts *service.ContactService
	docRepo  *repository.DocumentRepository
}

// newFixture wires the services against an in-memory database with the clock
// at 09:00 WIB on 16 October 2026
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	docRepo := repository.NewDocumentRepository(db)
	contactRepo := repository.NewContactRepository(db)
	seqRepo := repository.NewNumberSequenceRepository(db)

	docs := service.NewDocumentService(
		database.NewTxManager(db),
		docRepo,
		contactRepo,
		repository.NewActivityRepository(db),
		service.NewNumberSequenceService(seqRepo, logger),
		service.FixedClock{At: time.Date(2026, time.October, 16, 9, 0, 0, 0, wib)},
		wib,
		service.DocumentDefaults{
			Currency:        "IDR",
			TaxRate:         decimal.NewFromInt(11),
			ValidityDays:    30,
			PaymentTermDays: 14,
		},
		logger,
	)

	return &fixture{
		db:       db,
		docs:     docs,
		contacts: service.NewContactService(contactRepo, docRepo, logger),
		docRepo:  docRepo,
	}
}

func item(description, qty string, unitPrice int64, discountPct, taxRate string) domain.LineItemRequest {
	return domain.LineItemRequest{
		Description:     description,
		Quantity:        decimal.RequireFromString(qty),
		Unit:            "pcs",
		UnitPrice:       unitPrice,
		DiscountPercent: decimal.RequireFromString(discountPct),
		TaxRate:         decimal.RequireFromString(taxRate),
	}
}

func (f *fixture) createQuotation(t *testing.T, validUntil string, items ...domain.LineItemRequest) *domain.DocumentDTO {
	t.Helper()
	customer := testutil.CreateTestContact(t, f.db, "PT Maju Bersama "+uuid.NewString()[:4], domain.ContactTypeCustomer)
	dto, err := f.docs.Create(context.Background(), &domain.CreateDocumentRequest{
		DocumentType: domain.DocumentTypeQuotation,
		PartyID:      &customer.ID,
		ValidUntil:   validUntil,
		Items:        items,
	}, clerk)
	require.NoError(t, err)
	return dto
}

// approved creates a quotation and takes it through submit and approve
func (f *fixture) approved(t *testing.T, items ...domain.LineItemRequest) *domain.DocumentDTO {
	t.Helper()
	ctx := context.Background()
	dto := f.createQuotation(t, "", items...)
	_, err := f.docs.Submit(ctx, dto.ID, clerk)
	require.NoError(t, err)
	dto, err = f.docs.Approve(ctx, dto.ID, boss)
	require.NoError(t, err)
	return dto
}

func (f *fixture) countDocuments(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&domain.Document{}).Count(&count).Error)
	return count
}
