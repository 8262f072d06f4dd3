package main

import (
	"fmt"
	"os"

	"github.com/nurpe/haulops-billing/internal/billing"
	"github.com/nurpe/haulops-billing/internal/config"
	"github.com/nurpe/haulops-billing/internal/db"
	"github.com/nurpe/haulops-billing/internal/excel"
	httphandler "github.com/nurpe/haulops-billing/internal/http"
	"github.com/nurpe/haulops-billing/internal/logger"
	"github.com/nurpe/haulops-billing/internal/pdf"
	"github.com/nurpe/haulops-billing/internal/render"
	"github.com/nurpe/haulops-billing/internal/repository"
	"github.com/nurpe/haulops-billing/internal/service"
	"github.com/nurpe/haulops-billing/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	files, err := storage.NewOSFileStore(cfg.Storage.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init file store")
	}

	refRepo := repository.NewReferenceRepository(database)
	jobRepo := repository.NewJobRepository(database)
	invoiceRepo := repository.NewInvoiceRepository(database)

	calc := billing.NewCalculator(cfg.Billing.RoundingMinutes, cfg.Billing.FuelCostPerHour)
	company := render.Company{
		Name:      cfg.Company.Name,
		Address:   cfg.Company.Address,
		TaxNumber: cfg.Company.TaxNumber,
		Email:     cfg.Company.Email,
		Phone:     cfg.Company.Phone,
	}

	workbooks := excel.NewGenerator()

	refService := service.NewReferenceService(refRepo)
	jobService := service.NewJobService(jobRepo, refRepo, files, calc, log)
	invoiceService := service.NewInvoiceService(
		invoiceRepo, jobRepo, refRepo,
		pdf.NewGenerator(log), workbooks, files,
		company, calc, log,
	)

	reportService := service.NewReportService(repository.NewReportRepository(database), workbooks)

	handler := httphandler.NewHandler(refService, jobService, invoiceService, reportService, log)
	router := httphandler.NewRouter(handler, cfg.HTTP.CORSOrigins, cfg.IsProduction(), log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting billing service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
