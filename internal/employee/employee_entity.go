package employee

import (
	"time"

	"go-directory/internal/shared/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultImageURL is stored for every employee created without a picture.
const DefaultImageURL = "https://images.unsplash.com/photo-1535378620166-273708d44e4c?q=80&w=1914&auto=format&fit=crop&ixlib=rb-4.0.3&ixid=M3wxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D"

// Employee is the store schema. Its validate tags are the authoritative field
// rules and run on every insert and save.
type Employee struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name" validate:"required,min=3"`
	Phone     string    `gorm:"not null" json:"phone" validate:"required,min=10"`
	Email     string    `gorm:"not null;uniqueIndex:uq_employees_email" json:"email" validate:"required,email"`
	Address   string    `gorm:"not null" json:"address" validate:"required,min=10"`
	ImageURL  string    `gorm:"column:image_url;not null" json:"imageUrl" validate:"required,url"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) Validate() error {
	return validation.Struct(e)
}

// BeforeSave runs on Create and Save.
func (e *Employee) BeforeSave(tx *gorm.DB) error {
	return e.Validate()
}
