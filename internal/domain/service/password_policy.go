package service

// PasswordPolicy validates password strength and email addresses.
type PasswordPolicy interface {
	// Validate checks the password against the policy rules in order,
	// short-circuiting on the first failure. An empty slice means valid.
	// Email and name are rejected as password substrings.
	Validate(password, email, name string) []string

	// ValidateEmail enforces a basic syntactic check and rejects blocked
	// (disposable) email domains.
	ValidateEmail(email string) error
}
