package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ana@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", 250)+"@x.io"))
	assert.Equal(t, "ana@example.com", NormalizeEmail("  Ana@Example.COM "))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("segredo"))
	assert.Error(t, ValidatePassword("123"))
	assert.Error(t, ValidatePassword(strings.Repeat("x", 73)))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Ana"))
	err := ValidateName("   ")
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var v *Error
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "name", v.Field)
}

func TestValidateMood(t *testing.T) {
	for score := 1; score <= 5; score++ {
		assert.NoError(t, ValidateMood(score))
	}
	assert.Error(t, ValidateMood(0))
	assert.Error(t, ValidateMood(6))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("entry_date", "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, 16, d.Day())

	_, err = ParseDate("entry_date", "16/10/2026")
	assert.True(t, IsValidation(err))
	assert.True(t, IsValidation(fmt.Errorf("wrapped: %w", err)))
}
