package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// StructValidator is shared by every caller; validator caches struct metadata.
var StructValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// FieldError is a single failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Errors is returned by Struct when validation fails.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, " ")
}

// Struct validates payload and returns Errors, or nil.
func Struct(payload any) error {
	err := StructValidator.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s field must have at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s field must be at least %s.", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s field must have at most %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s field must be at most %s.", field, fe.Param())
	case "url":
		return fmt.Sprintf("The %s field must be a valid URL.", field)
	case "oneof":
		return fmt.Sprintf("The %s field must be one of: %s.", field, fe.Param())
	case "startswith":
		return fmt.Sprintf("The %s field must start with %s.", field, fe.Param())
	case "datauri":
		return fmt.Sprintf("The %s field must be a base64 data URI.", field)
	case "datetime":
		return fmt.Sprintf("The %s field must match the format %s.", field, fe.Param())
	default:
		return fmt.Sprintf("The %s field is not valid (tag: %s).", field, fe.Tag())
	}
}

// BindJSON decodes the request body into payload and validates it. On failure
// it writes a 400 response and returns false.
func BindJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return false
	}
	if err := Struct(payload); err != nil {
		Respond(c, err)
		return false
	}
	return true
}

// Respond writes err as a 400 body, listing field errors when err carries them.
func Respond(c *gin.Context, err error) {
	var verrs Errors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": verrs})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
