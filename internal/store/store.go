// Package store persists users, requests, and replies, and serves the
// operator console's queries.
package store

import (
	"errors"
	"fmt"

	"github.com/spravuz/spravbot/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when an operator references a request id that
// does not exist.
var ErrNotFound = errors.New("store: not found")

// Store wraps the database with the request/reply operations.
type Store struct {
	db *gorm.DB
}

// New creates a Store.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is required")
	}
	return &Store{db: db}, nil
}

// Payload is the tagged union over the three request kinds. Exactly one
// variant is attached to each request; the variant determines the request
// type and which payload columns are populated.
type Payload interface {
	requestType() string
	apply(*models.Request)
}

// CorrectionPayload is the payload of a company-correction request.
type CorrectionPayload struct {
	CompanyInfo       string
	CorrectionDetails string
}

func (CorrectionPayload) requestType() string { return models.TypeCorrection }
func (p CorrectionPayload) apply(r *models.Request) {
	r.CompanyInfo = p.CompanyInfo
	r.CorrectionDetails = p.CorrectionDetails
}

// AdvertisingPayload is the payload of an advertising inquiry.
type AdvertisingPayload struct {
	AdRequest   string
	ContactInfo string
}

func (AdvertisingPayload) requestType() string { return models.TypeAdvertising }
func (p AdvertisingPayload) apply(r *models.Request) {
	r.AdRequest = p.AdRequest
	r.ContactInfo = p.ContactInfo
}

// MessagePayload is the payload of a free-form message.
type MessagePayload struct {
	Message string
}

func (MessagePayload) requestType() string { return models.TypeMessage }
func (p MessagePayload) apply(r *models.Request) {
	r.Message = p.Message
}

// UpsertUser creates or overwrites the user row for the given identity.
// Repeating onboarding overwrites all fields rather than duplicating.
func (s *Store) UpsertUser(user models.User) error {
	var existing models.User
	err := s.db.First(&existing, "telegram_id = ?", user.TelegramID).Error
	switch {
	case err == nil:
		result := s.db.Model(&models.User{}).
			Where("telegram_id = ?", user.TelegramID).
			Updates(map[string]interface{}{
				"phone":     user.Phone,
				"full_name": user.FullName,
				"company":   user.Company,
				"username":  user.Username,
				"language":  user.Language,
			})
		if result.Error != nil {
			return fmt.Errorf("store: update user %d: %w", user.TelegramID, result.Error)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.Create(&user).Error; err != nil {
			return fmt.Errorf("store: create user %d: %w", user.TelegramID, err)
		}
		return nil
	default:
		return fmt.Errorf("store: lookup user %d: %w", user.TelegramID, err)
	}
}

// GetUser returns the user for an identity, or nil if none exists. A
// missing user is not an error: the Request→User reference is advisory.
func (s *Store) GetUser(telegramID int64) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "telegram_id = ?", telegramID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user %d: %w", telegramID, err)
	}
	return &user, nil
}

// ListUsers returns all users, most recently created first.
func (s *Store) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("store: list users: %w", err)
	}
	return users, nil
}

// CreateRequest persists a new request with status "new". The id is
// allocated by the database autoincrement, strictly increasing and never
// reused. The user reference is stored even when no user row exists.
func (s *Store) CreateRequest(userID int64, payload Payload) (*models.Request, error) {
	req := models.Request{
		UserID: userID,
		Type:   payload.requestType(),
		Status: models.StatusNew,
	}
	payload.apply(&req)
	if err := s.db.Create(&req).Error; err != nil {
		return nil, fmt.Errorf("store: create %s request: %w", req.Type, err)
	}
	return &req, nil
}

// RequestDetail is a request joined with its owning user snapshot (nil when
// the user row is missing) and the full reply list, ascending by sent_at.
type RequestDetail struct {
	Request models.Request `json:"request"`
	User    *models.User   `json:"user,omitempty"`
	Replies []models.Reply `json:"replies"`
}

// ListRequests returns requests ordered by creation time descending,
// optionally filtered by status (empty filter means all).
func (s *Store) ListRequests(statusFilter string) ([]models.Request, error) {
	query := s.db.Order("created_at DESC, id DESC")
	if statusFilter != "" {
		query = query.Where("status = ?", statusFilter)
	}
	var requests []models.Request
	if err := query.Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("store: list requests: %w", err)
	}
	return requests, nil
}

// GetRequest returns one request with its user snapshot and ordered
// replies, or ErrNotFound.
func (s *Store) GetRequest(id uint) (*RequestDetail, error) {
	var req models.Request
	err := s.db.First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("store: request %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get request %d: %w", id, err)
	}

	detail := &RequestDetail{Request: req, Replies: []models.Reply{}}

	user, err := s.GetUser(req.UserID)
	if err != nil {
		return nil, err
	}
	detail.User = user

	if err := s.db.Where("request_id = ?", id).
		Order("sent_at ASC, id ASC").Find(&detail.Replies).Error; err != nil {
		return nil, fmt.Errorf("store: replies for request %d: %w", id, err)
	}
	return detail, nil
}

// SetStatus updates a request's status and records the operator. Any known
// status may follow any other; there is no enforced workflow order.
// Returns ErrNotFound if the id does not exist.
func (s *Store) SetStatus(id uint, status, operator string) error {
	if !models.KnownStatus(status) {
		return fmt.Errorf("store: unknown status %q", status)
	}
	result := s.db.Model(&models.Request{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": operator,
		})
	if result.Error != nil {
		return fmt.Errorf("store: set status of request %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("store: request %d: %w", id, ErrNotFound)
	}
	return nil
}

// AppendReply records an operator reply for a request. Replies are
// append-only. Returns ErrNotFound if the request does not exist.
func (s *Store) AppendReply(requestID uint, message, operator string) (*models.Reply, error) {
	var count int64
	if err := s.db.Model(&models.Request{}).Where("id = ?", requestID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("store: check request %d: %w", requestID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("store: request %d: %w", requestID, ErrNotFound)
	}

	reply := models.Reply{
		RequestID: requestID,
		Message:   message,
		SentBy:    operator,
	}
	if err := s.db.Create(&reply).Error; err != nil {
		return nil, fmt.Errorf("store: append reply to request %d: %w", requestID, err)
	}
	return &reply, nil
}

// Stats summarizes the store for the operator dashboard and the digest.
type Stats struct {
	TotalRequests int64 `json:"total_requests"`
	NewRequests   int64 `json:"new_requests"`
	InProgress    int64 `json:"in_progress"`
	Completed     int64 `json:"completed"`
	TotalUsers    int64 `json:"total_users"`
}

// Stats counts requests by status and total users.
func (s *Store) Stats() (*Stats, error) {
	var st Stats
	counts := []struct {
		dest   *int64
		status string
	}{
		{&st.TotalRequests, ""},
		{&st.NewRequests, models.StatusNew},
		{&st.InProgress, models.StatusInProgress},
		{&st.Completed, models.StatusCompleted},
	}
	for _, c := range counts {
		query := s.db.Model(&models.Request{})
		if c.status != "" {
			query = query.Where("status = ?", c.status)
		}
		if err := query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("store: stats: %w", err)
		}
	}
	if err := s.db.Model(&models.User{}).Count(&st.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	return &st, nil
}
