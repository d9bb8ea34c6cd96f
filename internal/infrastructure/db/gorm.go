package db

import (
	"fmt"
	"time"

	"coopfin-loan-engine/internal/domain/approval"
	"coopfin-loan-engine/internal/domain/installment"
	"coopfin-loan-engine/internal/domain/ledger"
	"coopfin-loan-engine/internal/domain/loan"
	"coopfin-loan-engine/internal/domain/plan"
	"coopfin-loan-engine/pkg/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Dialector picks the gorm dialector for a configured driver name.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported db driver %q", driver)
}

func OpenGorm(driver, dsn string, logSQL bool) (*gorm.DB, error) {
	dial, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	level := gormlogger.Warn
	if logSQL {
		level = gormlogger.Info
	}
	return open(dial, level)
}

// OpenGormWithDialector opens an already-built dialector (tests pass a mocked connection).
func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	return open(dial, gormlogger.Silent)
}

func open(dial gorm.Dialector, level gormlogger.LogLevel) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
		// pinged below once the pool is tuned
		DisableAutomaticPing: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	logger.WithField("dialect", dial.Name()).Info("gorm: connected")
	return db, nil
}

// Models lists every table the engine owns.
func Models() []any {
	return []any{
		&plan.Plan{},
		&ledger.Wallet{},
		&ledger.Entry{},
		&loan.Loan{},
		&installment.Installment{},
		&approval.Decision{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
