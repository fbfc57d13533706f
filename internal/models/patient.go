package models

import "time"

// Patient is a row of the patients table.
type Patient struct {
	ID        string     `db:"id" json:"id"`
	FullName  string     `db:"full_name" json:"full_name"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	Email     *string    `db:"email" json:"email,omitempty"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Notes     string     `db:"notes" json:"notes"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// PatientFilter drives search-as-you-type lookups.
type PatientFilter struct {
	Search     string
	ActiveOnly bool
	Limit      int
}
