package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type StorageConfig struct {
	UploadDir string
}

type BillingConfig struct {
	FuelCostPerHour decimal.Decimal
	RoundingMinutes int
}

// CompanyConfig is the issuer block printed at the top of every invoice.
type CompanyConfig struct {
	Name      string
	Address   string
	TaxNumber string
	Email     string
	Phone     string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Storage     StorageConfig
	Billing     BillingConfig
	Company     CompanyConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 7090)
	v.SetDefault("HTTP_CORS_ORIGINS", "*")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("STORAGE_UPLOAD_DIR", "./uploads")
	v.SetDefault("BILLING_FUEL_COST_PER_HOUR", "30")
	v.SetDefault("BILLING_ROUNDING_MINUTES", 15)

	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	fuelCost, err := decimal.NewFromString(strings.TrimSpace(v.GetString("BILLING_FUEL_COST_PER_HOUR")))
	if err != nil {
		return nil, fmt.Errorf("BILLING_FUEL_COST_PER_HOUR: %w", err)
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:        v.GetString("HTTP_HOST"),
			Port:        v.GetInt("HTTP_PORT"),
			CORSOrigins: parseList(v.GetString("HTTP_CORS_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Storage: StorageConfig{
			UploadDir: v.GetString("STORAGE_UPLOAD_DIR"),
		},
		Billing: BillingConfig{
			FuelCostPerHour: fuelCost,
			RoundingMinutes: v.GetInt("BILLING_ROUNDING_MINUTES"),
		},
		Company: CompanyConfig{
			Name:      v.GetString("COMPANY_NAME"),
			Address:   v.GetString("COMPANY_ADDRESS"),
			TaxNumber: v.GetString("COMPANY_TAX_NUMBER"),
			Email:     v.GetString("COMPANY_EMAIL"),
			Phone:     v.GetString("COMPANY_PHONE"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Billing.FuelCostPerHour.IsNegative() {
		return fmt.Errorf("BILLING_FUEL_COST_PER_HOUR must not be negative")
	}
	if cfg.Billing.RoundingMinutes < 0 || cfg.Billing.RoundingMinutes > 60 {
		return fmt.Errorf("BILLING_ROUNDING_MINUTES must be between 0 and 60")
	}
	if strings.TrimSpace(cfg.Storage.UploadDir) == "" {
		return fmt.Errorf("STORAGE_UPLOAD_DIR is required")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
