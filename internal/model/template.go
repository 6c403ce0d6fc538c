// internal/model/template.go
package model

import "time"

const (
	TemplateTypeEmail = "email"
	TemplateTypePDF   = "pdf"
)

type Template struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Type      string     `db:"type" json:"type"` // email or pdf
	Subject   string     `db:"subject" json:"subject,omitempty"`
	Content   string     `db:"content" json:"content"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
