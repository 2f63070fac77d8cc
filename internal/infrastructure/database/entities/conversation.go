package entities

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/homematch/assistant-api/internal/domain/conversation"
)

// Conversation represents the database schema for tenant/landlord threads.
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID   string   `gorm:"type:varchar(50);uniqueIndex;not null"`
	TenantID   string   `gorm:"type:varchar(64);index;not null"`
	LandlordID string   `gorm:"type:varchar(64);index"`
	ListingID  *uint    `gorm:"index"`
	Listing    *Listing `gorm:"foreignKey:ListingID"`
	Metadata   JSONMap  `gorm:"type:jsonb"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversations"
}

// Listing is the rental unit a conversation can be anchored to.
type Listing struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID  string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	Title     string          `gorm:"type:varchar(256);not null"`
	Location  string          `gorm:"type:varchar(128);index"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2)"`
	Bedrooms  int             `gorm:"not null;default:0"`
	Bathrooms int             `gorm:"not null;default:0"`
	Amenities JSONList        `gorm:"type:jsonb"`
}

// TableName specifies the table name for Listing.
func (Listing) TableName() string {
	return "listings"
}

// ===============================================
// JSON Types for GORM
// ===============================================

// JSONMap is a custom type for map[string]string stored as JSON
type JSONMap map[string]string

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONMap) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// JSONList is a custom type for []string stored as JSON
type JSONList []string

func (j JSONList) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONList) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// ===============================================
// Conversion Functions
// ===============================================

// EtoD converts database entity to domain model
func (c *Conversation) EtoD() *conversation.Conversation {
	metadata := make(map[string]string)
	if c.Metadata != nil {
		metadata = c.Metadata
	}

	out := &conversation.Conversation{
		ID:         c.ID,
		PublicID:   c.PublicID,
		TenantID:   c.TenantID,
		LandlordID: c.LandlordID,
		Metadata:   metadata,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.Listing != nil {
		out.Listing = c.Listing.EtoD()
	}
	return out
}

// EtoD converts database entity to domain model
func (l *Listing) EtoD() *conversation.Listing {
	return &conversation.Listing{
		PublicID:  l.PublicID,
		Title:     l.Title,
		Location:  l.Location,
		Price:     l.Price,
		Bedrooms:  l.Bedrooms,
		Bathrooms: l.Bathrooms,
		Amenities: l.Amenities,
	}
}
