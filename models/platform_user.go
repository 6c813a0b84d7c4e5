// SPDX-License-Identifier: GPL-3.0-only

package models

import "time"

// PlatformModels collects the models migrated against the platform store.
var PlatformModels []any

// PlatformUser is the shadow account record kept in the platform store.
// Column names follow the platform's existing camelCase schema; the
// password hash stays empty on this path, no credential is ever set here.
type PlatformUser struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	Email             string    `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash      string    `gorm:"column:passwordHash;not null;default:''" json:"-"`
	CreatedAt         time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"column:updatedAt" json:"updatedAt"`
	IsAdmin           bool      `gorm:"column:isAdmin;not null;default:false" json:"isAdmin"`
	IsBlacklisted     bool      `gorm:"column:isBlacklisted;not null;default:false" json:"isBlacklisted"`
	WalletHotBalance  float64   `gorm:"column:walletHotBalance;not null;default:0" json:"walletHotBalance"`
	WalletColdBalance float64   `gorm:"column:walletColdBalance;not null;default:0" json:"walletColdBalance"`
}

func (PlatformUser) TableName() string {
	return "User"
}

func init() {
	PlatformModels = append(PlatformModels, &PlatformUser{})
}
