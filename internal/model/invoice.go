package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Invoice struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceNumber   string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	InvoiceDate     time.Time       `gorm:"type:date;not null"`
	DispatcherID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Dispatcher      *Dispatcher     `gorm:"foreignKey:DispatcherID"`
	Status          InvoiceStatus   `gorm:"type:varchar(16);not null;default:'Raised'"`
	SubTotal        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	DispatchPercent decimal.Decimal `gorm:"type:numeric(7,3);not null;default:0"`
	Commission      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	HST             decimal.Decimal `gorm:"column:hst;type:numeric(14,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	BilledTo        string
	BilledEmail     string
	Lines           []InvoiceLine `gorm:"foreignKey:InvoiceID"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Invoice) TableName() string { return "invoices" }

func (i *Invoice) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Status == "" {
		i.Status = StatusRaised
	}
	return nil
}

// InvoiceLine snapshots a job's gross amount at invoicing time. JobID is
// unique, so a job can sit on one invoice only.
type InvoiceLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	JobID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	LineAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	CreatedAt  time.Time
}

func (InvoiceLine) TableName() string { return "invoice_lines" }

func (l *InvoiceLine) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
