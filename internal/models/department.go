package models

import "time"

// Department groups students and subjects. Referenced rows block deletion.
type Department struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DepartmentRef is the compact shape embedded in student and subject payloads.
type DepartmentRef struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Code string `db:"code" json:"code"`
}

// DepartmentFilter defines filters supported by the department list endpoint.
type DepartmentFilter struct {
	Search   string
	IsActive *bool
}
