package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Job is one day of work for one truck. Weight, TicketIDs and ImageURLs are
// stored as loose JSON; read them through the billing normalizers.
type Job struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DateOfJob        time.Time       `gorm:"type:date;not null;index"`
	DispatcherID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Dispatcher       *Dispatcher     `gorm:"foreignKey:DispatcherID"`
	JobTypeID        uuid.UUID       `gorm:"type:uuid;not null"`
	JobType          *JobType        `gorm:"foreignKey:JobTypeID"`
	DriverID         *uuid.UUID      `gorm:"type:uuid"`
	Driver           *Driver         `gorm:"foreignKey:DriverID"`
	UnitID           *uuid.UUID      `gorm:"type:uuid"`
	Unit             *Unit           `gorm:"foreignKey:UnitID"`
	StartTime        string          `gorm:"type:varchar(8)"`
	EndTime          string          `gorm:"type:varchar(8)"`
	DriverStartTime  string          `gorm:"type:varchar(8)"`
	DriverEndTime    string          `gorm:"type:varchar(8)"`
	Weight           datatypes.JSON  `gorm:"column:weight"`
	Loads            int             `gorm:"not null;default:0"`
	TicketIDs        datatypes.JSON  `gorm:"column:ticket_ids"`
	ImageURLs        datatypes.JSON  `gorm:"column:image_urls"`
	JobGrossAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	ManualAmount     bool            `gorm:"not null;default:false"`
	DriverPay        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	EstimatedFuel    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	EstimatedRevenue decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	InvoiceID        *uuid.UUID      `gorm:"type:uuid;index"`
	InvoiceStatus    InvoiceStatus   `gorm:"type:varchar(16);not null;default:'Pending'"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Job) TableName() string { return "jobs" }

func (j *Job) BeforeCreate(*gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.InvoiceStatus == "" {
		j.InvoiceStatus = StatusPending
	}
	return nil
}

func (j *Job) Invoiced() bool {
	return j.InvoiceID != nil && *j.InvoiceID != uuid.Nil
}
