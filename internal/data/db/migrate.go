package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/lore-backend/internal/domain"
	"github.com/yungbote/lore-backend/internal/platform/envutil"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

// Service is implemented by every relational backend.
type Service interface {
	DB() *gorm.DB
}

// Open picks the backend named by DB_DRIVER ("postgres" or "sqlite").
func Open(logg *logger.Logger) (Service, error) {
	switch driver := strings.ToLower(envutil.String("DB_DRIVER", "postgres", logg)); driver {
	case "postgres", "postgresql":
		return NewPostgresService(logg)
	case "sqlite", "sqlite3":
		return NewSQLiteService(logg)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
