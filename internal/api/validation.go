package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/pageza/recipe-app/backend/internal/middleware"
	"github.com/pageza/recipe-app/backend/internal/service"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules and reports fields by their JSON name.
// It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("price", validatePrice)
	})
}

// validatePrice accepts any decimal literal; range and precision are checked by the service
func validatePrice(fl validator.FieldLevel) bool {
	_, err := decimal.NewFromString(fl.Field().String())
	return err == nil
}

// bindJSON decodes the body into obj and turns decoding and binding failures into a
// *service.ValidationError. An empty body is treated as an empty object.
func bindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return nil
	}
	return translateBindError(err)
}

func translateBindError(err error) error {
	var (
		verrs    validator.ValidationErrors
		typeErr  *json.UnmarshalTypeError
		syntaxEr *json.SyntaxError
	)
	switch {
	case errors.As(err, &verrs):
		out := &service.ValidationError{}
		for _, fe := range verrs {
			out.Add(fe.Field(), fieldMessage(fe))
		}
		return out
	case errors.As(err, &typeErr):
		field := strings.SplitN(typeErr.Field, ".", 2)[0]
		if field == "" {
			return service.NewValidationError(service.NonFieldErrors,
				fmt.Sprintf("Invalid data. Expected a dictionary, but got %s.", typeErr.Value))
		}
		return service.NewValidationError(field, typeMessage(typeErr))
	case errors.As(err, &syntaxEr), errors.Is(err, io.ErrUnexpectedEOF):
		return service.NewValidationError(service.NonFieldErrors, "JSON parse error - "+err.Error())
	case strings.Contains(err.Error(), "into Number"):
		return service.NewValidationError("price", "A valid number is required.")
	default:
		return service.NewValidationError(service.NonFieldErrors, err.Error())
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "url":
		return "Enter a valid URL."
	case "email":
		return "Enter a valid email address."
	case "price":
		return "A valid number is required."
	default:
		return "Invalid value."
	}
}

func typeMessage(e *json.UnmarshalTypeError) string {
	switch e.Type.Kind() {
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64:
		return "A valid integer is required."
	case reflect.Slice:
		return fmt.Sprintf("Expected a list of items but got type %q.", e.Value)
	case reflect.String:
		if e.Type.Name() == "Number" {
			return "A valid number is required."
		}
		return "Not a valid string."
	default:
		return "Invalid value."
	}
}

// parseIDList parses a comma separated list of ids from the named query parameter.
// A missing or empty parameter yields nil.
func parseIDList(c *gin.Context, param string) ([]uint, error) {
	raw := strings.TrimSpace(c.Query(param))
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, service.NewValidationError(param, fmt.Sprintf("%q is not a valid id.", p))
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// parseFlag reads a 0/1 style boolean query parameter. A missing parameter is false.
func parseFlag(c *gin.Context, param string) (bool, error) {
	raw := c.Query(param)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, service.NewValidationError(param, "Must be a valid boolean.")
	}
	return v, nil
}

// pathID reads the :id route parameter. Anything that is not a positive integer is
// reported as not found, matching an unknown id.
func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrNotFound
	}
	return uint(id), nil
}

// currentUser returns the id set by the auth middleware
func currentUser(c *gin.Context) (uint, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, service.ErrNotAuthenticated
	}
	return id, nil
}
