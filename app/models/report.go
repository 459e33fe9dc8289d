package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusReported = "Reported"
	StatusResolved = "Resolved"
)

// statusTransitions is the full lifecycle: a report cycles between Reported
// and Resolved indefinitely. Anything not listed here is rejected, including
// no-op transitions to the current status.
var statusTransitions = map[string][]string{
	StatusReported: {StatusResolved},
	StatusResolved: {StatusReported},
}

// IsValidStatus reports whether s is a known report status.
func IsValidStatus(s string) bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransition reports whether the lifecycle allows moving from -> to.
func CanTransition(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CivicData holds the responsible officials resolved for a report's address.
// Stored as a JSON column; a nil pointer means the address matched no known
// jurisdiction.
type CivicData struct {
	MLA                  string `json:"mla"`
	MP                   string `json:"mp"`
	MunicipalCorporation string `json:"municipal_corporation"`
}

// Value implements the driver.Valuer interface
func (c CivicData) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (c *CivicData) Scan(value interface{}) error {
	if value == nil {
		*c = CivicData{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("invalid scan source")
	}
	return json.Unmarshal(bytes, c)
}

type Report struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UUID             string         `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	Latitude         float64        `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude        float64        `gorm:"type:decimal(11,8);not null" json:"longitude"`
	Address          *string        `gorm:"type:varchar(512)" json:"address"`
	IssueDescription string         `gorm:"type:text;not null" json:"issue_description"`
	ImageFile        string         `gorm:"type:varchar(255);not null" json:"image_file"`
	ThumbnailFile    string         `gorm:"type:varchar(255)" json:"thumbnail_file,omitempty"`
	CivicData        *CivicData     `gorm:"type:json" json:"civic_data"`
	Status           string         `gorm:"type:varchar(20);default:'Reported';index" json:"status"`
	ReporterIPv4     string         `gorm:"type:varchar(15);default:null" json:"-"`
	ReporterIPv6     string         `gorm:"type:varchar(45);default:null" json:"-"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns the public identifier and the initial status.
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == "" {
		r.UUID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = StatusReported
	}
	return nil
}
