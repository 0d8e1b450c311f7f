package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type window struct {
	Days   int    `query:"days" validate:"min=1,max=365"`
	Tenant string `json:"tenantName" validate:"max=5"`
	Label  string `validate:"required"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		in      interface{}
		wantErr string
	}{
		{name: "valid", in: window{Days: 7, Label: "x"}},
		{name: "pointer", in: &window{Days: 365, Tenant: "acme", Label: "x"}},
		{name: "below min", in: window{Days: 0, Label: "x"}, wantErr: "validation failed: days must be at least 1"},
		{name: "above max", in: window{Days: 400, Label: "x"}, wantErr: "validation failed: days must be at most 365"},
		{name: "string length in runes", in: window{Days: 1, Tenant: "ééééé", Label: "x"}},
		{name: "string too long", in: window{Days: 1, Tenant: "acme-co", Label: "x"}, wantErr: "validation failed: tenantName must be at most 5"},
		{name: "required", in: window{Days: 1}, wantErr: "validation failed: Label is required"},
		{name: "not a struct", in: 3, wantErr: "validate expects a struct, got int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestValidateBadRules(t *testing.T) {
	v := NewValidator()

	err := v.Validate(struct {
		N int `validate:"between=1"`
	}{})
	require.ErrorIs(t, err, ErrInvalid)
	require.Contains(t, err.Error(), `unknown rule "between"`)

	err = v.Validate(struct {
		B bool `validate:"min=1"`
	}{})
	require.Contains(t, err.Error(), "min does not apply to bool")
}
