package validate

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestEnumValidators(t *testing.T) {
	assert.True(t, IsValidCategory("Outerwear"))
	assert.False(t, IsValidCategory("outerwear"))

	assert.True(t, IsValidSize("One Size"))
	assert.False(t, IsValidSize("XXXL"))

	assert.True(t, IsValidCondition("Like New"))
	assert.False(t, IsValidCondition("New"))

	assert.True(t, IsValidItemStatus("swapped"))
	assert.False(t, IsValidItemStatus("sold"))

	assert.True(t, IsValidSwapStatus("rejected"))
	assert.False(t, IsValidSwapStatus("shipped"))

	assert.True(t, IsValidRole("admin"))
	assert.False(t, IsValidRole("editor"))
}

type enumPayload struct {
	Category  string `binding:"required,item_category"`
	Size      string `binding:"required,item_size"`
	Condition string `binding:"required,item_condition"`
}

func TestRegisterBindingValidators(t *testing.T) {
	RegisterBindingValidators()
	RegisterBindingValidators() // 重複呼叫不可 panic

	ok := enumPayload{Category: "Shoes", Size: "M", Condition: "Good"}
	assert.NoError(t, binding.Validator.ValidateStruct(&ok))

	bad := enumPayload{Category: "Hats", Size: "M", Condition: "Good"}
	assert.Error(t, binding.Validator.ValidateStruct(&bad))
}

func TestValidateStruct_PlainMessage(t *testing.T) {
	RegisterBindingValidators()
	cause, respErr := ValidateStruct(&enumPayload{})
	assert.Error(t, cause)
	assert.Contains(t, respErr.Error(), "bad-request")
}
