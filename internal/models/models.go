// Package models defines the GORM models persisted by spravbot.
package models

import "time"

// Request types.
const (
	TypeCorrection  = "correction"
	TypeAdvertising = "advertising"
	TypeMessage     = "message"
)

// Request statuses. Transitions are operator-driven and unordered: any
// status may be set from any other.
const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// KnownStatus reports whether s is one of the closed status set.
func KnownStatus(s string) bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// User is an end user who completed the onboarding dialogue. Keyed by the
// Telegram identity; re-running onboarding overwrites all fields.
type User struct {
	TelegramID int64     `gorm:"primaryKey" json:"telegram_id"`
	Phone      string    `gorm:"size:32" json:"phone"`
	FullName   string    `gorm:"size:256" json:"full_name"`
	Company    string    `gorm:"size:256" json:"company"`
	Username   string    `gorm:"size:64" json:"username"`
	Language   string    `gorm:"size:8;default:ru" json:"language"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Request is a support request collected by the bot. The payload columns
// are a union: exactly the columns matching Type are populated, the rest
// stay empty. The payload is immutable after creation; only status fields
// change, and only through the admin workflow.
type Request struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64  `gorm:"index" json:"user_id"` // advisory reference to User.TelegramID
	Type   string `gorm:"size:16;not null;index" json:"type"`
	Status string `gorm:"size:16;default:new;index" json:"status"`

	Message           string `gorm:"type:text" json:"message,omitempty"`
	CompanyInfo       string `gorm:"type:text" json:"company_info,omitempty"`
	CorrectionDetails string `gorm:"type:text" json:"correction_details,omitempty"`
	AdRequest         string `gorm:"type:text" json:"ad_request,omitempty"`
	ContactInfo       string `gorm:"type:text" json:"contact_info,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `gorm:"size:64" json:"updated_by,omitempty"`

	Replies []Reply `gorm:"foreignKey:RequestID" json:"replies,omitempty"`
}

// Reply is an operator answer attached to a request. Append-only.
type Reply struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID uint      `gorm:"not null;index" json:"request_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	SentBy    string    `gorm:"size:64;not null" json:"sent_by"`
	SentAt    time.Time `gorm:"autoCreateTime;index" json:"sent_at"`
}
