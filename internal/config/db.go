package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the postgres connection. SQL logging follows the process log
// level: statements are only logged at debug.
func InitDB(c *Config) (*gorm.DB, error) {
	logMode := logger.Warn
	if level, err := parseLevel(c.LogLevel); err == nil && level >= logrus.DebugLevel {
		logMode = logger.Info
	}

	db, err := gorm.Open(postgres.Open(c.Database.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}
