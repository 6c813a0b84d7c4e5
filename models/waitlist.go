// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AllModels collects the models migrated against the waitlist store.
// The platform store keeps its own list, the two schemas are independent.
var AllModels []any

type WaitlistEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"not null;uniqueIndex" json:"email"`
	Name         *string   `gorm:"default:null" json:"name,omitempty"`
	ReferralCode string    `gorm:"size:8;not null;uniqueIndex" json:"referral_code"`
	ReferredBy   *string   `gorm:"default:null" json:"referred_by,omitempty"`
	Metadata     JSONMap   `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// JSONMap stores an open metadata map (user agent, ip, timestamp, source)
// as a serialized JSON column.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata column type %T", value)
	}
	return json.Unmarshal(data, m)
}

func init() {
	AllModels = append(AllModels, &WaitlistEntry{})
}
