package auth

import (
	"testing"

	"cinescope/config"
	domainerrors "cinescope/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPolicy(t *testing.T) *passwordPolicy {
	t.Helper()

	cfg := &config.Config{
		Password: &config.PasswordConfig{
			MinLength:      8,
			BlockedDomains: []string{"mailinator.com", "Trashmail.COM"},
		},
	}

	policy, ok := NewPasswordPolicy(cfg).(*passwordPolicy)
	require.True(t, ok)

	return policy
}

func TestPasswordPolicy_Validate_Empty(t *testing.T) {
	policy := newTestPolicy(t)

	reasons := policy.Validate("", "a@b.com", "Ann")

	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "vazia")
}

func TestPasswordPolicy_Validate_TooShort(t *testing.T) {
	policy := newTestPolicy(t)

	reasons := policy.Validate("abc123", "a@b.com", "Ann")

	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "minimo")
}

func TestPasswordPolicy_Validate_LengthMessageTracksConfiguredMinimum(t *testing.T) {
	cfg := &config.Config{
		Password: &config.PasswordConfig{MinLength: 12},
	}
	policy := NewPasswordPolicy(cfg)

	reasons := policy.Validate("abc12345", "a@b.com", "Ann")

	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "12")
}

func TestPasswordPolicy_Validate_CountsRunesNotBytes(t *testing.T) {
	policy := newTestPolicy(t)

	// Eight runes, more than eight bytes.
	assert.Empty(t, policy.Validate("áéíóú123", "a@b.com", "Zed"))
}

func TestPasswordPolicy_Validate_SingleCharacterClass(t *testing.T) {
	policy := newTestPolicy(t)

	reasons := policy.Validate("abcdefgh", "a@b.com", "Ann")

	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "classes")
}

func TestPasswordPolicy_Validate_ContainsName(t *testing.T) {
	policy := newTestPolicy(t)

	reasons := policy.Validate("Ann12345", "ann@x.com", "Ann Smith")

	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "nome")
}

func TestPasswordPolicy_Validate_ContainsEmail(t *testing.T) {
	policy := newTestPolicy(t)

	reasons := policy.Validate("xa@b.com1", "a@b.com", "Zed")

	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "email")
}

func TestPasswordPolicy_Validate_ShortCircuitsOnFirstFailure(t *testing.T) {
	policy := newTestPolicy(t)

	// Fails length, class count and name containment at once; only the
	// first rule is reported.
	reasons := policy.Validate("ann", "ann@x.com", "ann")

	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "minimo")
}

func TestPasswordPolicy_Validate_OK(t *testing.T) {
	policy := newTestPolicy(t)

	assert.Empty(t, policy.Validate("correct-horse-42", "a@b.com", "Ann Smith"))
	assert.Empty(t, policy.Validate("Abcd1234", "a@b.com", ""))
}

func TestPasswordPolicy_ValidateEmail(t *testing.T) {
	policy := newTestPolicy(t)

	assert.NoError(t, policy.ValidateEmail("user@example.com"))

	for _, email := range []string{
		"",
		"not-an-email",
		"user@",
		"Display Name <user@example.com>",
		"user@mailinator.com",
		"user@TRASHMAIL.com",
	} {
		err := policy.ValidateEmail(email)
		assert.ErrorIs(t, err, domainerrors.ErrEmailInvalid, "email %q", email)
	}
}
