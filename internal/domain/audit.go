package domain

import "time"

// AuditLog records a security or money relevant action
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

const (
	AuditCategoryAuth    = "auth"
	AuditCategoryPayment = "payment"
	AuditCategoryMedia   = "media"
)

const (
	AuditActionLogin            = "login"
	AuditActionLoginFailed      = "login_failed"
	AuditActionLogout           = "logout"
	AuditActionRegister         = "register"
	AuditActionCredentialRehash = "credential_rehash"
	AuditActionUsernameReminder = "username_reminder"

	AuditActionTipSettled   = "tip_settled"
	AuditActionTipDuplicate = "tip_duplicate"

	AuditActionPhotoUpload = "photo_upload"
	AuditActionVideoUpload = "video_upload"
)
