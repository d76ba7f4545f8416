package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_MessageIsSortedByField(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"name":  "is required",
		"color": "must be a hex color such as #3b82f6",
		"link":  "must be a valid URL",
	}}

	for i := 0; i < 20; i++ {
		assert.Equal(t,
			"validation failed: color: must be a hex color such as #3b82f6, link: must be a valid URL, name: is required",
			err.Error())
	}
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, validateTitle("Ship it"))
	assert.ErrorIs(t, validateTitle(""), ErrValidation)

	err := validateTitle(strings.Repeat("x", 256))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "title: must be at most 255 characters")
}
