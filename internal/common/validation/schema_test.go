package validation

import (
	"testing"

	"pizza-storefront/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginSchema() JSONSchema {
	return JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"email":    {Type: "string", Format: "email"},
			"password": {Type: "string", MinLength: IntPtr(1)},
		},
		Required: []string{"email", "password"},
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name      string
		input     map[string]interface{}
		valid     bool
		errFields []string
	}{
		{
			name:  "valid login",
			input: map[string]interface{}{"email": "d@jwt.com", "password": "a"},
			valid: true,
		},
		{
			name:      "missing password",
			input:     map[string]interface{}{"email": "d@jwt.com"},
			errFields: []string{"password"},
		},
		{
			name:      "empty email and bad type",
			input:     map[string]interface{}{"email": "", "password": 42},
			errFields: []string{"email", "password"},
		},
		{
			name:      "malformed email",
			input:     map[string]interface{}{"email": "not-an-email", "password": "a"},
			errFields: []string{"email"},
		},
		{
			name:      "extra field",
			input:     map[string]interface{}{"email": "d@jwt.com", "password": "a", "role": "admin"},
			errFields: []string{"role"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateInput(tt.input, loginSchema())
			assert.Equal(t, tt.valid, result.Valid)
			for _, field := range tt.errFields {
				assert.True(t, result.HasErrors(field), "expected error on %s", field)
			}
		})
	}
}

func TestValidationResult_Err(t *testing.T) {
	ok := ValidateInput(map[string]interface{}{"email": "d@jwt.com", "password": "a"}, loginSchema())
	assert.NoError(t, ok.Err())

	bad := ValidateInput(map[string]interface{}{"password": "a"}, loginSchema())
	err := bad.Err()
	require.Error(t, err)

	stdErr, isStd := errors.AsStandard(err)
	require.True(t, isStd)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
	assert.Equal(t, "email", stdErr.Field)
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("f@jwt.com"))
	assert.False(t, ValidateEmail("f@jwt"))
	assert.False(t, ValidateEmail(""))
}
