// SPDX-License-Identifier: GPL-3.0-only

// Package platformdb holds the connection to the platform user store.
// It is a second, independent database with no cross-referential
// integrity against the waitlist store; a waitlist entry may exist
// without a platform user and the other way around.
package platformdb

import (
	"megatron-server/commons"
	"megatron-server/models"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Conn stays nil when PLATFORM_DB_DSN is unset. Shadow account
// provisioning is skipped entirely in that case.
var Conn *gorm.DB

func InitPlatformDB() {
	dsn := commons.GetEnv("PLATFORM_DB_DSN")
	if dsn == "" {
		commons.Logger.Warn("PLATFORM_DB_DSN is not set. Platform user provisioning is disabled.")
		return
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		commons.Logger.Debug("Connecting to PostgreSQL platform store")
		dialector = postgres.Open(dsn)
	} else {
		commons.Logger.Debug("Connecting to SQLite platform store at", dsn)
		dialector = sqlite.Open(dsn)
	}

	var err error
	Conn, err = gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		commons.Logger.Error("Platform store connection failed:", err)
		os.Exit(1)
	}
	commons.Logger.Info("Platform store connection established (DSN hidden)")
}

func MigratePlatformDB() {
	if Conn == nil {
		commons.Logger.Warn("Platform store not configured, skipping migrations")
		return
	}
	commons.Logger.Info("Running platform store migrations")
	if err := Conn.AutoMigrate(models.PlatformModels...); err != nil {
		commons.Logger.Error("Platform store migration failed:", err)
		os.Exit(1)
	}
	commons.Logger.Info("Platform store migration completed")
}
