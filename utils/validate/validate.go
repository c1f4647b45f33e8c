package validate

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"rewear/internal/core"
	cErr "rewear/internal/pkg/error"
	"rewear/internal/pkg/request"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 輸出格式化的 validator error（欄位 json 名/型別/規則列表）
func ValidationErrorResponse(c *gin.Context, obj interface{}, err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok {
		var b strings.Builder
		b.WriteString("Validation error:\n")
		for _, fe := range errs {
			field := jsonFieldName(obj, fe.StructField())
			ftype := fieldType(obj, fe.StructField())
			format := getFieldFormat(obj, fe.StructField())
			b.WriteString(fmt.Sprintf(" - Field \"%s\" (type: %s) failed the '%s' validation (rules: %v)\n",
				field, ftype, fe.Tag(), format))
		}
		return b.String()
	}
	return fmt.Sprintf("Validation error: %s", err.Error())
}

func jsonFieldName(obj interface{}, structField string) string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(structField); ok {
		tag := f.Tag.Get("json")
		if tag != "" && tag != "-" {
			return strings.Split(tag, ",")[0]
		}
	}
	return structField
}

func fieldType(obj interface{}, structField string) string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(structField); ok {
		return f.Type.String()
	}
	return ""
}

func getFieldFormat(obj interface{}, structField string) []string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(structField); ok {
		tag := f.Tag.Get("binding")
		if tag != "" {
			return strings.Split(tag, ",")
		}
	}
	return nil
}

func ParseObjectID(c *gin.Context, key string) (id primitive.ObjectID, cause error, responseErr error) {
	id, err := primitive.ObjectIDFromHex(c.Param(key))
	if err != nil {
		return primitive.NilObjectID, err, cErr.ValidatePathParamsErr("invalid " + key)
	}
	return id, nil, nil
}

func BindAndValidate(c *gin.Context, req any) (cause error, responseErr error) {
	if err := c.ShouldBindJSON(req); err != nil {
		return err, validationError(req, err)
	}
	return nil, nil
}

// ValidateStruct 給 multipart 的 data 欄位用：已自行 json.Unmarshal，只跑 binding 規則
func ValidateStruct(req any) (cause error, responseErr error) {
	if err := binding.Validator.ValidateStruct(req); err != nil {
		return err, validationError(req, err)
	}
	return nil, nil
}

func validationError(req any, err error) *cErr.Error {
	if friendly := request.GetError(req, err); friendly != nil {
		return friendly
	}
	return cErr.ValidateErr(ValidationErrorResponse(nil, req, err))
}

func GetInt64Query(c *gin.Context, key string, defaultVal int64) (int64, error) {
	if v := c.Query(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return n, nil
	}
	return defaultVal, nil
}

// ===== binding 自訂規則 =====

var registerOnce sync.Once

// RegisterBindingValidators 把列舉檢查註冊到 gin 的 validator（item_category / item_size / item_condition）
func RegisterBindingValidators() {
	registerOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("item_category", func(fl validator.FieldLevel) bool {
			return IsValidCategory(fl.Field().String())
		})
		_ = engine.RegisterValidation("item_size", func(fl validator.FieldLevel) bool {
			return IsValidSize(fl.Field().String())
		})
		_ = engine.RegisterValidation("item_condition", func(fl validator.FieldLevel) bool {
			return IsValidCondition(fl.Field().String())
		})
	})
}

// ===== Role =====
var validRoles = []core.Role{
	core.RoleAdmin,
	core.RoleUser,
}

func IsValidRole(role string) bool {
	for _, v := range validRoles {
		if core.Role(role) == v {
			return true
		}
	}
	return false
}

// ===== Item =====
var validCategories = []core.ItemCategory{
	core.CategoryTops,
	core.CategoryBottoms,
	core.CategoryDresses,
	core.CategoryOuterwear,
	core.CategoryShoes,
	core.CategoryAccessories,
}

func IsValidCategory(category string) bool {
	for _, v := range validCategories {
		if core.ItemCategory(category) == v {
			return true
		}
	}
	return false
}

var validSizes = []core.ItemSize{
	core.SizeXS,
	core.SizeS,
	core.SizeM,
	core.SizeL,
	core.SizeXL,
	core.SizeXXL,
	core.SizeOneSize,
}

func IsValidSize(size string) bool {
	for _, v := range validSizes {
		if core.ItemSize(size) == v {
			return true
		}
	}
	return false
}

var validConditions = []core.ItemCondition{
	core.ConditionLikeNew,
	core.ConditionExcellent,
	core.ConditionGood,
	core.ConditionFair,
	core.ConditionPoor,
}

func IsValidCondition(condition string) bool {
	for _, v := range validConditions {
		if core.ItemCondition(condition) == v {
			return true
		}
	}
	return false
}

var validItemStatuses = []core.ItemStatus{
	core.ItemStatusAvailable,
	core.ItemStatusPending,
	core.ItemStatusSwapped,
}

func IsValidItemStatus(status string) bool {
	for _, v := range validItemStatuses {
		if core.ItemStatus(status) == v {
			return true
		}
	}
	return false
}

// ===== Swap =====
var validSwapStatuses = []core.SwapStatus{
	core.SwapStatusPending,
	core.SwapStatusAccepted,
	core.SwapStatusRejected,
}

func IsValidSwapStatus(status string) bool {
	for _, v := range validSwapStatuses {
		if core.SwapStatus(status) == v {
			return true
		}
	}
	return false
}
