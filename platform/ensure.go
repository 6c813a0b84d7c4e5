// SPDX-License-Identifier: GPL-3.0-only

// Package platform provisions shadow accounts in the platform store.
package platform

import (
	"context"
	"errors"
	"time"

	"megatron-server/commons"
	"megatron-server/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnsureUser returns the platform user for email, creating it with an
// empty credential and default flags when absent. The check-then-insert
// can race with itself for the same email; the loser of that race trips
// the store's unique index and gets the winner's row back instead of an
// error. A nil conn means the platform store is not configured and the
// call is a logged no-op.
func EnsureUser(ctx context.Context, conn *gorm.DB, email string) (*models.PlatformUser, error) {
	if conn == nil {
		commons.Logger.Warn("Platform store not configured, skipping user provisioning for", email)
		return nil, nil
	}

	var existing models.PlatformUser
	err := conn.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.PlatformUser{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = conn.WithContext(ctx).Create(user).Error
	if err == nil {
		commons.Logger.Infof("Created new platform user for %s", email)
		return user, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the race, the row is there now.
		if readErr := conn.WithContext(ctx).Where("email = ?", email).First(&existing).Error; readErr != nil {
			return nil, readErr
		}
		return &existing, nil
	}
	return nil, err
}
