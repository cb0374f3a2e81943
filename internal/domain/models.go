package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a fresh UUID when the caller did not set one.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ContactType classifies a party
type ContactType string

const (
	ContactTypeCustomer      ContactType = "customer"
	ContactTypeSupplier      ContactType = "supplier"
	ContactTypeSubcontractor ContactType = "subcontractor"
)

// IsValid reports whether the contact type is known
func (t ContactType) IsValid() bool {
	switch t {
	case ContactTypeCustomer, ContactTypeSupplier, ContactTypeSubcontractor:
		return true
	}
	return false
}

// Contact is a party documents are issued to or received from
type Contact struct {
	BaseModel
	Name        string      `gorm:"type:varchar(200);not null;index"`
	ContactType ContactType `gorm:"type:varchar(30);not null;index;column:contact_type"`
	Email       string      `gorm:"type:varchar(255)"`
	Phone       string      `gorm:"type:varchar(50)"`
	Address     string      `gorm:"type:varchar(500)"`
	City        string      `gorm:"type:varchar(100)"`
	TaxID       string      `gorm:"type:varchar(30);column:tax_id"`
	Notes       string      `gorm:"type:text"`
}

// NumberSequence tracks the last issued sequence per document type and month
type NumberSequence struct {
	ID           uint         `gorm:"primaryKey;autoIncrement"`
	DocumentType DocumentType `gorm:"type:varchar(40);not null;uniqueIndex:idx_number_sequences_type_period;column:document_type"`
	Period       string       `gorm:"type:varchar(6);not null;uniqueIndex:idx_number_sequences_type_period"`
	LastSequence int          `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// ActivityAction names what happened to a document
type ActivityAction string

const (
	ActivityCreated    ActivityAction = "created"
	ActivityUpdated    ActivityAction = "updated"
	ActivitySubmitted  ActivityAction = "submitted"
	ActivityApproved   ActivityAction = "approved"
	ActivityRejected   ActivityAction = "rejected"
	ActivityCancelled  ActivityAction = "cancelled"
	ActivityConverted  ActivityAction = "converted"
	ActivityRevised    ActivityAction = "revised"
	ActivityDuplicated ActivityAction = "duplicated"
)

// DocumentActivity is one entry of a document's audit trail
type DocumentActivity struct {
	BaseModel
	DocumentID uuid.UUID      `gorm:"type:uuid;not null;index;column:document_id"`
	Action     ActivityAction `gorm:"type:varchar(30);not null"`
	FromStatus DocumentStatus `gorm:"type:varchar(20);column:from_status"`
	ToStatus   DocumentStatus `gorm:"type:varchar(20);column:to_status"`
	ActorID    string         `gorm:"type:varchar(100);column:actor_id"`
	ActorName  string         `gorm:"type:varchar(200);column:actor_name"`
	Note       string         `gorm:"type:varchar(2000)"`
	OccurredAt time.Time      `gorm:"not null;index;column:occurred_at"`
}

// Actor identifies who performs a mutation. It is passed explicitly into every
// lifecycle call and stamped into the *_by fields.
type Actor struct {
	ID   string
	Name string
}

// SystemActor is used by scheduled jobs
var SystemActor = Actor{ID: "system", Name: "System"}
