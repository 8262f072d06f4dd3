package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`CREATE TABLE IF NOT EXISTS companies (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS dispatchers (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		commission_percent NUMERIC(7,3) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		hourly_rate NUMERIC(14,4) NOT NULL DEFAULT 0,
		revenue_share_percent NUMERIC(7,3),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS units (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS job_types (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title TEXT NOT NULL,
		company_id UUID NOT NULL REFERENCES companies(id),
		dispatch_type VARCHAR(16) NOT NULL,
		rate_of_job NUMERIC(14,4) NOT NULL DEFAULT 0,
		start_location TEXT NOT NULL DEFAULT '',
		end_location TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_job_types_company_id ON job_types (company_id);`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		invoice_number VARCHAR(64) NOT NULL,
		invoice_date DATE NOT NULL,
		dispatcher_id UUID NOT NULL REFERENCES dispatchers(id),
		status VARCHAR(16) NOT NULL DEFAULT 'Raised',
		sub_total NUMERIC(14,2) NOT NULL DEFAULT 0,
		dispatch_percent NUMERIC(7,3) NOT NULL DEFAULT 0,
		commission NUMERIC(14,2) NOT NULL DEFAULT 0,
		hst NUMERIC(14,2) NOT NULL DEFAULT 0,
		total NUMERIC(14,2) NOT NULL DEFAULT 0,
		billed_to TEXT NOT NULL DEFAULT '',
		billed_email TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_invoices_invoice_number ON invoices (invoice_number);`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_dispatcher_id ON invoices (dispatcher_id);`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		date_of_job DATE NOT NULL,
		dispatcher_id UUID NOT NULL REFERENCES dispatchers(id),
		job_type_id UUID NOT NULL REFERENCES job_types(id),
		driver_id UUID REFERENCES drivers(id),
		unit_id UUID REFERENCES units(id),
		start_time VARCHAR(8) NOT NULL DEFAULT '',
		end_time VARCHAR(8) NOT NULL DEFAULT '',
		driver_start_time VARCHAR(8) NOT NULL DEFAULT '',
		driver_end_time VARCHAR(8) NOT NULL DEFAULT '',
		weight JSONB,
		loads INTEGER NOT NULL DEFAULT 0,
		ticket_ids JSONB,
		image_urls JSONB,
		job_gross_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		manual_amount BOOLEAN NOT NULL DEFAULT FALSE,
		driver_pay NUMERIC(14,2) NOT NULL DEFAULT 0,
		estimated_fuel NUMERIC(14,2) NOT NULL DEFAULT 0,
		estimated_revenue NUMERIC(14,2) NOT NULL DEFAULT 0,
		invoice_id UUID REFERENCES invoices(id) ON DELETE SET NULL,
		invoice_status VARCHAR(16) NOT NULL DEFAULT 'Pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_dispatcher_id ON jobs (dispatcher_id);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_invoice_id ON jobs (invoice_id) WHERE invoice_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_date_of_job ON jobs (date_of_job);`,
	`CREATE TABLE IF NOT EXISTS invoice_lines (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		invoice_id UUID NOT NULL REFERENCES invoices(id),
		job_id UUID NOT NULL REFERENCES jobs(id),
		line_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_lines_invoice_id ON invoice_lines (invoice_id);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_invoice_lines_job_id ON invoice_lines (job_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
