package request

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type swapPayload struct {
	ItemID string   `binding:"required" validate:"required"`
	Images []string `validate:"dive,url"`
}

func (swapPayload) GetMessages() ValidatorMessages {
	return ValidatorMessages{
		"ItemID.required": "Missing required fields",
		"Images.*.url":    "Images must be valid URLs",
	}
}

type plainPayload struct {
	Name string `validate:"required"`
}

func TestGetError(t *testing.T) {
	v := validator.New()

	t.Run("mapped field", func(t *testing.T) {
		req := swapPayload{Images: []string{"https://img.test/a.jpg"}}
		appErr := GetError(req, v.Struct(req))
		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.HttpCode())
		assert.Equal(t, "Missing required fields", appErr.ErrorDesc())
	})

	t.Run("slice index collapses to wildcard", func(t *testing.T) {
		req := swapPayload{ItemID: "x", Images: []string{"https://img.test/a.jpg", "not a url"}}
		appErr := GetError(req, v.Struct(req))
		require.NotNil(t, appErr)
		assert.Equal(t, "Images must be valid URLs", appErr.ErrorDesc())
	})

	t.Run("no messages", func(t *testing.T) {
		req := plainPayload{}
		assert.Nil(t, GetError(req, v.Struct(req)))
	})

	t.Run("not a validation error", func(t *testing.T) {
		assert.Nil(t, GetError(swapPayload{}, errors.New("EOF")))
	})
}
