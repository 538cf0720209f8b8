package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"showbiz/internal/model"
)

// Open returns a connected GORM DB for the given driver. Duplicate-key errors are
// translated to gorm.ErrDuplicatedKey so callers can detect uniqueness races.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return db, nil
}

// Models lists every table the service owns, in creation order.
func Models() []interface{} {
	return []interface{}{
		&model.Account{},
		&model.TalentProfile{},
		&model.HirerProfile{},
		&model.Submission{},
	}
}

// Migrate creates or updates the schema for Models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Reset drops every table in reverse creation order.
func Reset(db *gorm.DB) error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
