package store

import "time"

// User is a directory entry. The private key never appears here.
type User struct {
	UserID         string `gorm:"primaryKey;type:varchar(64)"`
	DisplayName    string
	Email          string `gorm:"uniqueIndex;not null"`
	PublicKey      string `gorm:"type:text;not null"`
	KeyFingerprint string `gorm:"type:varchar(64)"`
	CreatedAt      time.Time
	LastActive     time.Time
}

func (User) TableName() string { return "users" }

// Share is one grant of one secret from an owner to a recipient.
// EncryptedPayload and EncryptedNotes hold base64 ciphertext.
type Share struct {
	ShareID          string `gorm:"primaryKey;type:varchar(64)"`
	SecretID         string `gorm:"index;not null"`
	SecretTitle      string `gorm:"not null"`
	OwnerID          string `gorm:"index;not null"`
	RecipientID      string `gorm:"index;not null"`
	Permission       string `gorm:"type:varchar(16);not null"`
	Status           string `gorm:"type:varchar(16);index;not null"`
	EncryptedPayload string `gorm:"type:text;not null"`
	EncryptedNotes   string `gorm:"type:text"`
	ExpiresAt        *time.Time
	CreatedAt        time.Time
	LastAccessed     *time.Time
	AccessCount      int64 `gorm:"not null"`
	Version          int64 `gorm:"not null"`
}

func (Share) TableName() string { return "shares" }

// ShareRequest asks an owner for access to one of their secrets by title.
type ShareRequest struct {
	RequestID           string `gorm:"primaryKey;type:varchar(64)"`
	SecretTitle         string `gorm:"not null"`
	RequesterID         string `gorm:"index;not null"`
	OwnerID             string `gorm:"index;not null"`
	RequestedPermission string `gorm:"type:varchar(16);not null"`
	Message             string `gorm:"type:text"`
	Status              string `gorm:"type:varchar(16);index;not null"`
	ShareID             string `gorm:"type:varchar(64)"`
	CreatedAt           time.Time
	RespondedAt         *time.Time
}

func (ShareRequest) TableName() string { return "share_requests" }

// AuditEntry is append-only. Seq breaks timestamp ties in insertion order.
type AuditEntry struct {
	Seq       uint64    `gorm:"primaryKey;autoIncrement"`
	EntryID   string    `gorm:"uniqueIndex;type:varchar(64);not null"`
	ShareID   string    `gorm:"index;type:varchar(64)"`
	RequestID string    `gorm:"index;type:varchar(64)"`
	ActorID   string    `gorm:"index;type:varchar(64);not null"`
	Action    string    `gorm:"index;type:varchar(32);not null"`
	Timestamp time.Time `gorm:"column:occurred_at;index;not null"`
}

func (AuditEntry) TableName() string { return "audit_entries" }
