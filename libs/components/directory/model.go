package directory

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Department is a unit of the board that work can be assigned to.
type Department struct {
	ID             string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name           string    `json:"name" gorm:"not null;uniqueIndex"`
	DepartmentCode string    `json:"departmentCode" gorm:"type:varchar(32);uniqueIndex"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName pins the table name.
func (Department) TableName() string {
	return "departments"
}

// BeforeCreate assigns a UUID when missing.
func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// License is a license product issued by the board.
type License struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Type      string    `json:"type" gorm:"type:varchar(64);index"`
	Category  string    `json:"category" gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName pins the table name.
func (License) TableName() string {
	return "licenses"
}

// BeforeCreate assigns a UUID when missing.
func (l *License) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// Summary is the short form of a license embedded in template responses.
func (l License) Summary() map[string]any {
	return map[string]any{
		"id":       l.ID,
		"name":     l.Name,
		"type":     l.Type,
		"category": l.Category,
	}
}
