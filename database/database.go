package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/traitview/traitview/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the gorm connection selected by DATABASE_DRIVER.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.Database)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().Str("driver", cfg.Database.Driver).Msg("Database connection established")
	return db, nil
}

func Dialector(db config.Database) (gorm.Dialector, error) {
	switch db.Driver {
	case "", "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			db.Host, db.Port, db.User, db.Password, db.Name, db.SSLMode)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(db.Path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", db.Driver)
	}
}
