package shared

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginForm struct {
	Email      string `json:"email"       validate:"required,email"`
	Password   string `json:"password"    validate:"required,min=8"`
	DeviceName string `json:"device_name" validate:"required"`
}

func TestDecodeJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/login",
		strings.NewReader(`{"email":"a@b.com","password":"strongpassword","device_name":"api"}`))

	var form loginForm
	require.NoError(t, DecodeJSON(req, &form))
	assert.Equal(t, "a@b.com", form.Email)
	assert.Equal(t, "api", form.DeviceName)
}

func TestDecodeJSONMalformed(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/login", strings.NewReader(`{not json`))

	var form loginForm
	assert.Error(t, DecodeJSON(req, &form))
}

func TestValidateRequest(t *testing.T) {
	valid := loginForm{Email: "a@b.com", Password: "strongpassword", DeviceName: "api"}
	assert.NoError(t, ValidateRequest(valid))

	invalid := loginForm{Email: "not-an-email", Password: "short"}
	assert.Error(t, ValidateRequest(invalid))
}

func TestValidationFieldErrorsUseJSONNames(t *testing.T) {
	err := ValidateRequest(loginForm{Email: "not-an-email", Password: "short"})
	require.Error(t, err)

	fields := ValidationFieldErrors(err)
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "min", fields["password"])
	assert.Equal(t, "required", fields["device_name"])
}

type selfValidating struct {
	failed bool
}

func (s selfValidating) Validate() error {
	if s.failed {
		return assert.AnError
	}
	return nil
}

func TestValidateRequestPrefersValidateMethod(t *testing.T) {
	assert.NoError(t, ValidateRequest(selfValidating{}))
	assert.ErrorIs(t, ValidateRequest(selfValidating{failed: true}), assert.AnError)
}
