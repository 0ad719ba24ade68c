package models

import "time"

// DefaultWaitlistSource tags signups from the landing page.
const DefaultWaitlistSource = "lp"

type WaitlistEntry struct {
	Timestamp time.Time
	Email     string
	Source    string
	UserAgent string
}

// AnalyticsEvent is a row of the analytics table.
type AnalyticsEvent struct {
	EventType string                 `json:"event_type"`
	UserID    *string                `json:"user_id"`
	AssetID   *string                `json:"asset_id"`
	Metadata  map[string]interface{} `json:"metadata"`
	IPAddress string                 `json:"ip_address"`
	UserAgent string                 `json:"user_agent"`
}

type AssetCategory struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	Icon        *string   `json:"icon"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
