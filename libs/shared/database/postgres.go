package database

import (
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	mu    sync.Mutex
	conns = map[string]*gorm.DB{}
)

// ConnectWithDSN opens (or reuses) a PostgreSQL connection for the named
// service. Connections are cached per service so repeated calls are cheap.
func ConnectWithDSN(service, dsn string) (*gorm.DB, error) {
	mu.Lock()
	defer mu.Unlock()

	if db, ok := conns[service]; ok {
		return db, nil
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres for %s: %w", service, err)
	}

	slog.Info("database: connected", "service", service)
	conns[service] = db
	return db, nil
}

// Close releases every cached connection.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	for service, db := range conns {
		sqlDB, err := db.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Warn("database: close failed", "service", service, "error", err)
			}
		}
		delete(conns, service)
	}
}
