package validator_test

import (
	"errors"
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/bipagem/internal/model"
	"github.com/tuanvumaihuynh/bipagem/pkg/validator"
)

type scan struct {
	Code string         `validate:"required,scancode"`
	Mode model.LoadMode `validate:"enum"`
}

func TestDefaultValidator(t *testing.T) {
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		in      scan
		wantTag string
	}{
		{name: "ean", in: scan{Code: "7891000100103"}},
		{name: "internal code with separators", in: scan{Code: "AB-12.3/4_5"}},
		{name: "accented letters", in: scan{Code: "Pão 1"}},
		{name: "empty", in: scan{}, wantTag: "required"},
		{name: "control characters", in: scan{Code: "12\t34"}, wantTag: "scancode"},
		{name: "symbols", in: scan{Code: "SKU#12"}},
		{name: "plus sign", in: scan{Code: "A+B"}},
		{name: "line break", in: scan{Code: "12\n34"}, wantTag: "scancode"},
		{name: "unknown mode", in: scan{Code: "1", Mode: model.LoadMode(9)}, wantTag: "enum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, validator.IsValidationError(err))

			var fieldErrs govalidator.ValidationErrors
			require.True(t, errors.As(err, &fieldErrs))
			assert.Equal(t, tt.wantTag, fieldErrs[0].Tag())
			assert.NotEqual(t, "is invalid", validator.ValidationErrorMessage(fieldErrs[0]))
		})
	}
}
