package orm

import (
	"fmt"
	"sync"

	"educrm-api/pkg/model"
	"educrm-api/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ConnHandler struct {
	db *gorm.DB
}

var (
	connHandler *ConnHandler
	once        sync.Once
)

// GetConnHandler lazily opens the process-wide database connection from the
// DATABASE_URL environment variable.
func GetConnHandler() *ConnHandler {
	once.Do(func() {
		dsn := utils.GetEnv("DATABASE_URL", "educrm.db")
		db, err := Connect(dsn)
		if err != nil {
			log.Fatal().Err(err).Str("dsn", dsn).Msg("Failed to connect to database")
		}
		connHandler = &ConnHandler{db: db}
	})
	return connHandler
}

func (h *ConnHandler) DB() *gorm.DB {
	return h.db
}

func (h *ConnHandler) OnShutdown() {
	sqlDB, err := h.db.DB()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get underlying sql.DB")
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database connection")
		return
	}
	log.Info().Msg("Successfully closed database connection")
}

// Connect opens a SQLite database and runs migrations. Exported separately
// from the singleton so tests can open isolated in-memory databases.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Staff{},
		&model.Contact{},
		&model.RecurringTask{},
		&model.Task{},
		&model.Reply{},
		&model.Event{},
	); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return db, nil
}
