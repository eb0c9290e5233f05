// Package auth holds credential-quality checks applied before any call
// reaches the identity provider.
package auth

import (
	"net/mail"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"cinescope/config"
	domainerrors "cinescope/internal/domain/errors"
	"cinescope/internal/domain/service"
)

type passwordPolicy struct {
	minLength      int
	blockedDomains map[string]struct{}
}

// NewPasswordPolicy builds the policy from configuration. Blocked
// domains are matched case-insensitively against the part after "@".
func NewPasswordPolicy(cfg *config.Config) service.PasswordPolicy {
	blocked := make(map[string]struct{}, len(cfg.Password.BlockedDomains))
	for _, domain := range cfg.Password.BlockedDomains {
		blocked[strings.ToLower(strings.TrimSpace(domain))] = struct{}{}
	}

	return &passwordPolicy{
		minLength:      cfg.Password.MinLength,
		blockedDomains: blocked,
	}
}

// Validate checks the password rules in order and stops at the first
// one that fails. An empty slice means the password is acceptable.
func (p *passwordPolicy) Validate(password, email, name string) []string {
	if password == "" {
		return []string{"a senha nao pode ser vazia"}
	}

	if utf8.RuneCountInString(password) < p.minLength {
		return []string{"a senha deve ter no minimo " + strconv.Itoa(p.minLength) + " caracteres"}
	}

	if characterClasses(password) < 2 {
		return []string{"a senha deve combinar pelo menos duas classes entre letras, numeros e simbolos"}
	}

	lowered := strings.ToLower(password)

	if containsName(lowered, name) {
		return []string{"a senha nao pode conter o seu nome"}
	}

	if fragment := strings.ToLower(strings.TrimSpace(email)); fragment != "" && strings.Contains(lowered, fragment) {
		return []string{"a senha nao pode conter o seu email"}
	}

	return nil
}

// ValidateEmail rejects malformed addresses and addresses on a blocked
// domain. It returns a domain error ready for the HTTP surface.
func (p *passwordPolicy) ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return domainerrors.ErrEmailInvalid
	}

	at := strings.LastIndex(email, "@")
	if at < 0 {
		return domainerrors.ErrEmailInvalid
	}

	if _, ok := p.blockedDomains[strings.ToLower(email[at+1:])]; ok {
		return domainerrors.ErrEmailInvalid
	}

	return nil
}

// containsName reports whether the lowered password contains the full
// name or any individual part of it. Parts shorter than three runes are
// ignored to avoid rejecting passwords over initials.
func containsName(lowered, name string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		return false
	}

	if strings.Contains(lowered, trimmed) {
		return true
	}

	for _, part := range strings.Fields(trimmed) {
		if len([]rune(part)) >= 3 && strings.Contains(lowered, part) {
			return true
		}
	}

	return false
}

// characterClasses counts how many of letters, digits and symbols the
// password draws from.
func characterClasses(password string) int {
	var letters, digits, symbols bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letters = true
		case unicode.IsDigit(r):
			digits = true
		default:
			symbols = true
		}
	}

	count := 0
	for _, present := range []bool{letters, digits, symbols} {
		if present {
			count++
		}
	}

	return count
}
