package schema

// Credentials is the signup and signin payload.
type Credentials struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// ValidateCredentials checks a signup or signin payload.
func ValidateCredentials(c Credentials) error {
	return ValidateStruct(c)
}
