// SPDX-License-Identifier: GPL-3.0-only

// Package waitlist owns writes to the waitlist store. The store's
// unique index on email is the single authority on duplicates; the
// writer only maps that violation to a typed error.
package waitlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"megatron-server/models"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

// ErrDuplicateEmail reports that an entry for the submitted email
// already exists.
var ErrDuplicateEmail = errors.New("email is already on the waitlist")

const (
	referralCodeLength = 8
	// Collisions on an 8-char code are unlikely but not impossible, so
	// an insert that trips the referral_code index regenerates and
	// retries this many times before giving up.
	maxCodeAttempts = 3
)

type JoinParams struct {
	Email      string
	Name       string
	ReferredBy string
	UserAgent  string
	IP         string
	Source     string
}

// NewReferralCode generates the 8-character upper-cased share code.
func NewReferralCode() (string, error) {
	code, err := gonanoid.New(referralCodeLength)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(code), nil
}

// Join inserts a waitlist entry with a freshly generated referral code.
// A duplicate email surfaces as ErrDuplicateEmail; a referral-code
// collision is retried with a new code; anything else comes back
// wrapped with the store's detail preserved for logging.
func Join(ctx context.Context, conn *gorm.DB, p JoinParams) (*models.WaitlistEntry, error) {
	metadata := models.JSONMap{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if p.UserAgent != "" {
		metadata["user_agent"] = p.UserAgent
	}
	if p.IP != "" {
		metadata["ip"] = p.IP
	}
	if p.Source != "" {
		metadata["source"] = p.Source
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := NewReferralCode()
		if err != nil {
			return nil, fmt.Errorf("referral code generation failed: %w", err)
		}

		entry := &models.WaitlistEntry{
			Email:        p.Email,
			Name:         optional(p.Name),
			ReferralCode: code,
			ReferredBy:   optional(p.ReferredBy),
			Metadata:     metadata,
		}

		err = conn.WithContext(ctx).Create(entry).Error
		if err == nil {
			return entry, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// The translated error no longer says which index tripped,
			// so ask the store. An existing row for this email means a
			// real duplicate; otherwise the fresh code collided.
			exists, checkErr := Exists(ctx, conn, p.Email)
			if checkErr != nil {
				return nil, fmt.Errorf("duplicate check failed: %w", checkErr)
			}
			if exists {
				return nil, ErrDuplicateEmail
			}
			continue
		}
		return nil, fmt.Errorf("waitlist insert failed: %w", err)
	}
	return nil, fmt.Errorf("waitlist insert failed: referral code collided %d times", maxCodeAttempts)
}

// Exists reports whether an entry for email is already present.
func Exists(ctx context.Context, conn *gorm.DB, email string) (bool, error) {
	var count int64
	err := conn.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountReferrals returns how many entries were attributed to the given
// referral code. referred_by is a free-text provenance tag, an unknown
// code simply counts zero.
func CountReferrals(ctx context.Context, conn *gorm.DB, code string) (int64, error) {
	var count int64
	err := conn.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("referred_by = ?", code).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
