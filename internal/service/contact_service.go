package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/nusa-erp/erp-api/internal/mapper"
	"github.com/nusa-erp/erp-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ContactService struct {
	contactRepo *repository.ContactRepository
	docRepo     *repository.DocumentRepository
	logger      *zap.Logger
}

func NewContactService(
	contactRepo *repository.ContactRepository,
	docRepo *repository.DocumentRepository,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		docRepo:     docRepo,
		logger:      logger,
	}
}

func (s *ContactService) Create(ctx context.Context, req *domain.CreateContactRequest) (*domain.ContactDTO, error) {
	if !req.ContactType.IsValid() {
		return nil, domain.NewInvalidInput("unknown contact type %q", req.ContactType)
	}

	contact := &domain.Contact{
		Name:        req.Name,
		ContactType: req.ContactType,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		TaxID:       req.TaxID,
		Notes:       req.Notes,
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	s.logger.Info("contact created",
		zap.String("contact_id", contact.ID.String()),
		zap.String("contact_type", string(contact.ContactType)))

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

func (s *ContactService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContactDTO, error) {
	contact, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

// Update replaces the contact fields. Changing the type of a contact that
// documents already reference is refused, since those documents require it.
func (s *ContactService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateContactRequest) (*domain.ContactDTO, error) {
	if !req.ContactType.IsValid() {
		return nil, domain.NewInvalidInput("unknown contact type %q", req.ContactType)
	}

	contact, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ContactType != contact.ContactType {
		count, err := s.docRepo.CountByParty(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count documents: %w", err)
		}
		if count > 0 {
			return nil, domain.NewInvalidInput("cannot change the type of %s, %d documents reference it", contact.Name, count)
		}
	}

	contact.Name = req.Name
	contact.ContactType = req.ContactType
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.Address = req.Address
	contact.City = req.City
	contact.TaxID = req.TaxID
	contact.Notes = req.Notes

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

// Delete removes a contact that no document references
func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	count, err := s.docRepo.CountByParty(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}
	if count > 0 {
		return ErrContactInUse
	}

	if err := s.contactRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

func (s *ContactService) List(ctx context.Context, page, pageSize int, contactType *domain.ContactType, search string) (*domain.PaginatedResponse, error) {
	// Clamp page size
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	contacts, total, err := s.contactRepo.List(ctx, page, pageSize, contactType, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	dtos := make([]domain.ContactDTO, len(contacts))
	for i := range contacts {
		dtos[i] = mapper.ToContactDTO(&contacts[i])
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *ContactService) get(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}
