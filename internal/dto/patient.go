package dto

// CreatePatientRequest registers a patient from the reception desk.
type CreatePatientRequest struct {
	FullName  string `json:"full_name" validate:"required,min=2,max=150"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Email     string `json:"email" validate:"omitempty,email"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Notes     string `json:"notes" validate:"max=2000"`
}

// PatientSearchQuery drives search-as-you-type. Seq is echoed back so the
// client can discard responses that arrive out of order.
type PatientSearchQuery struct {
	Search string
	Seq    string
	Limit  int
}
