package database

import (
	"fmt"
	"log"

	"github.com/finguard/treasury-api/internal/config"
	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Warn

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&entity.User{},
		&entity.Transaction{},
		&entity.ApprovalDecision{},
		&entity.ApprovalThreshold{},
		&entity.IdempotencyRecord{},
		&entity.RetryAttempt{},
		&entity.EntitySnapshot{},
		&entity.DeliveryAttempt{},
		&entity.AuditRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedApprovalThresholds mirrors the configured threshold rules into the
// approval_thresholds table so downstream collaborators can read them.
func SeedApprovalThresholds(db *gorm.DB, cfg *config.ApprovalConfig) error {
	for _, rule := range cfg.Thresholds {
		var existing entity.ApprovalThreshold
		err := db.Where("currency = ?", rule.Currency).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			row := entity.ApprovalThreshold{
				Currency:          rule.Currency,
				MinAmount:         rule.MinAmount,
				RequiredApprovals: rule.RequiredApprovals,
			}
			if err := db.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to seed threshold for %s: %w", rule.Currency, err)
			}
			continue
		}
		if err != nil {
			return err
		}
		existing.MinAmount = rule.MinAmount
		existing.RequiredApprovals = rule.RequiredApprovals
		if err := db.Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to update threshold for %s: %w", rule.Currency, err)
		}
	}
	return nil
}

// SeedDefaultUsers creates the admin and compliance officer accounts from
// environment configuration, if they do not exist yet.
func SeedDefaultUsers(db *gorm.DB) error {
	log.Println("Seeding default users...")

	seeds := []struct {
		emailKey    string
		passwordKey string
		nameKey     string
		defaultName string
		role        string
	}{
		{"ADMIN_EMAIL", "ADMIN_PASSWORD", "ADMIN_NAME", "Admin", entity.RoleAdmin},
		{"COMPLIANCE_EMAIL", "COMPLIANCE_PASSWORD", "COMPLIANCE_NAME", "Compliance Officer", entity.RoleComplianceOfficer},
	}

	for _, seed := range seeds {
		email := viper.GetString(seed.emailKey)
		password := viper.GetString(seed.passwordKey)
		if email == "" || password == "" {
			continue
		}

		var existing entity.User
		if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Warning: failed to hash password for %s: %v", email, err)
			continue
		}

		name := viper.GetString(seed.nameKey)
		if name == "" {
			name = seed.defaultName
		}

		user := entity.User{
			FirstName: name,
			Email:     email,
			Password:  string(hashed),
			Role:      seed.role,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("Warning: failed to seed user %s: %v", email, err)
		} else {
			log.Printf("Seeded %s user: %s", seed.role, email)
		}
	}

	return nil
}
