package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Address   string
	Email     string
	Phone     string
	CreatedAt time.Time
}

func (Company) TableName() string { return "companies" }

func (c *Company) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Dispatcher struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name              string    `gorm:"not null"`
	Email             string
	Phone             string
	CommissionPercent decimal.Decimal `gorm:"type:numeric(7,3);not null;default:0"`
	CreatedAt         time.Time
}

func (Dispatcher) TableName() string { return "dispatchers" }

func (d *Dispatcher) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Driver keeps the hourly wage and the revenue share apart. Records created
// before the split only carry HourlyRate; RevenueSharePercent is nil for them.
type Driver struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name                string    `gorm:"not null"`
	Phone               string
	HourlyRate          decimal.Decimal  `gorm:"type:numeric(14,4);not null;default:0"`
	RevenueSharePercent *decimal.Decimal `gorm:"type:numeric(7,3)"`
	CreatedAt           time.Time
}

func (Driver) TableName() string { return "drivers" }

func (d *Driver) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type Unit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time
}

func (Unit) TableName() string { return "units" }

func (u *Unit) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type JobType struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Title         string          `gorm:"not null"`
	CompanyID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Company       *Company        `gorm:"foreignKey:CompanyID"`
	DispatchType  DispatchType    `gorm:"type:varchar(16);not null"`
	RateOfJob     decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0"`
	StartLocation string
	EndLocation   string
	CreatedAt     time.Time
}

func (JobType) TableName() string { return "job_types" }

func (j *JobType) BeforeCreate(*gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
