// Package domain defines the persistence models for cards, categories,
// API keys, withdrawal transactions, and webhook records. These types are
// mapped with GORM and form the core data layer of the card vault backend.
package domain

import (
	"time"
)

// Transaction status values. A transaction is immutable once terminal.
const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusFailed    = "failed"
)

// Webhook delivery status values.
const (
	DeliveryStatusPending = "pending"
	DeliveryStatusSuccess = "success"
	DeliveryStatusFailed  = "failed"
)

// EventCardWithdrawn is the event name attached to withdrawal notifications.
const EventCardWithdrawn = "card.withdrawn"

// Card is a single-use redemption code, optionally grouped into a category.
// IsUsed transitions false→true exactly once per card; the allocation path
// never reverts it.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Code: globally unique redemption code.
//   - CategoryID: optional owning category; nulled when the category is deleted.
//   - Remark: free-form operator note.
//   - UsedBy: identifier of the credential that withdrew the card, if any.
//   - IsUsed: set once by a committed withdrawal.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Card struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Code       string    `json:"code"        gorm:"type:varchar(255);not null;uniqueIndex:ux_cards_code"`
	CategoryID *string   `json:"category_id" gorm:"type:char(36);index:idx_cards_category_used,priority:1"`
	Remark     *string   `json:"remark,omitempty" gorm:"type:varchar(255)"`
	UsedBy     *string   `json:"used_by,omitempty" gorm:"type:char(36)"`
	IsUsed     bool      `json:"is_used"     gorm:"not null;default:false;index:idx_cards_category_used,priority:2"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the database table name for Card.
func (Card) TableName() string { return "cards" }

// Category is a named bucket of cards with a display color. Deleting a
// category nulls the reference on dependent cards (management layer);
// the allocation engine treats a lookup miss as a hard failure.
type Category struct {
	ID        string    `json:"id"    gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"  gorm:"type:varchar(255);not null"`
	Color     string    `json:"color" gorm:"type:varchar(32);not null;default:'#3b82f6'"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "categories" }

// APIKey is an authenticated caller identity (the credential). The raw
// key is never stored; lookups match the SHA-256 hex digest exactly.
//
// Fields:
//   - KeyHash: SHA-256 hex of the opaque token, unique.
//   - IsActive: inactive keys authenticate but are rejected with Forbidden.
//   - RateLimitPerMinute: fixed-window ceiling applied per credential.
//   - LastUsedAt: updated asynchronously on each authenticated request.
type APIKey struct {
	ID                 string     `json:"id"       gorm:"type:char(36);primaryKey"`
	KeyHash            string     `json:"-"        gorm:"type:char(64);not null;uniqueIndex:ux_api_keys_hash"`
	Name               string     `json:"name"     gorm:"type:varchar(255);not null"`
	Platform           *string    `json:"platform,omitempty" gorm:"type:varchar(64)"`
	IsActive           bool       `json:"is_active" gorm:"not null;default:true"`
	RateLimitPerMinute int        `json:"rate_limit_per_minute" gorm:"not null;default:100"`
	CreatedAt          time.Time  `json:"created_at"`
	LastUsedAt         *time.Time `json:"last_used_at,omitempty"`
}

// TableName returns the database table name for APIKey.
func (APIKey) TableName() string { return "api_keys" }

// Transaction is the durable record of one withdrawal attempt's outcome.
// It is created inside the same database transaction that marks the card
// used; CompletedAt is set iff Status is terminal.
type Transaction struct {
	ID           string     `json:"id"            gorm:"type:char(36);primaryKey"`
	APIKeyID     *string    `json:"api_key_id"    gorm:"type:char(36);index"`
	CategoryID   *string    `json:"category_id"   gorm:"type:char(36)"`
	CardID       *string    `json:"card_id"       gorm:"type:char(36)"`
	Status       string     `json:"status"        gorm:"type:varchar(16);not null;check:status IN ('pending','completed','failed')"`
	ErrorMessage *string    `json:"error_message,omitempty" gorm:"type:varchar(1024)"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// TableName returns the database table name for Transaction.
func (Transaction) TableName() string { return "transactions" }

// Terminal reports whether the transaction reached a final state.
func (t *Transaction) Terminal() bool {
	return t.Status == TxStatusCompleted || t.Status == TxStatusFailed
}

// WebhookSubscription is a callback URL + event filter + optional signing
// secret owned by a credential. Many subscriptions per credential.
//
// Events is stored as a JSON-encoded string array; an empty filter defaults
// to ["card.withdrawn"] at creation time.
type WebhookSubscription struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	APIKeyID    string    `json:"api_key_id"   gorm:"type:char(36);not null;index:idx_webhook_subs_key"`
	CallbackURL string    `json:"callback_url" gorm:"type:varchar(2048);not null"`
	Events      string    `json:"-"            gorm:"type:text;not null;default:'[]'"`
	SecretToken *string   `json:"-"            gorm:"type:varchar(255)"`
	IsActive    bool      `json:"is_active"    gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for WebhookSubscription.
func (WebhookSubscription) TableName() string { return "webhook_subscriptions" }

// WebhookDelivery is one attempted HTTP notification of an event to a
// subscription. One row is created per dispatch attempt per subscription
// per event; ResponseBody is truncated to 1000 characters.
type WebhookDelivery struct {
	ID             string     `json:"id"              gorm:"type:char(36);primaryKey"`
	SubscriptionID string     `json:"subscription_id" gorm:"type:char(36);not null;index"`
	TransactionID  *string    `json:"transaction_id,omitempty" gorm:"type:char(36)"`
	Status         string     `json:"status"          gorm:"type:varchar(16);not null;check:status IN ('pending','success','failed')"`
	ResponseCode   *int       `json:"response_code,omitempty"`
	ResponseBody   *string    `json:"response_body,omitempty" gorm:"type:varchar(1000)"`
	Attempts       int        `json:"attempts" gorm:"not null;default:0"`
	CreatedAt      time.Time  `json:"created_at"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
}

// TableName returns the database table name for WebhookDelivery.
func (WebhookDelivery) TableName() string { return "webhook_deliveries" }

// Setting holds the singleton application settings row (id = "main").
type Setting struct {
	ID           string    `json:"id"           gorm:"type:varchar(16);primaryKey"`
	Announcement *string   `json:"announcement" gorm:"type:text"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for Setting.
func (Setting) TableName() string { return "settings" }
