package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pageza/recipe-api/internal/service"
)

var registerOnce sync.Once

// RegisterValidation makes gin's validator report fields by their JSON names.
func RegisterValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
}

// fieldOf names the request field a validation sentinel belongs to.
var fieldOf = map[error]string{
	service.ErrEmailTaken:         "email",
	service.ErrPasswordTooShort:   "password",
	service.ErrPasswordTooLong:    "password",
	service.ErrInvalidCredentials: "non_field_errors",
	service.ErrNameRequired:       "name",
	service.ErrNameTaken:          "name",
	service.ErrTitleRequired:      "title",
	service.ErrUnsupportedImage:   "image",
}

// respondError maps a service error onto its HTTP status. Unexpected errors
// are attached to the context for ErrorHandler to log.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case service.IsValidation(err):
		body := gin.H{"error": err.Error()}
		for sentinel, field := range fieldOf {
			if errors.Is(err, sentinel) {
				body["fields"] = map[string]string{field: sentinel.Error()}
				break
			}
		}
		c.JSON(http.StatusBadRequest, body)
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// respondBindError renders a binding failure as a field map when the body
// parsed but failed validation.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[fieldPath(e)] = friendlyMessage(e)
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
}

// fieldPath drops the struct name from the namespace: tags[0].name.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lt":
		return "must be less than " + e.Param()
	default:
		return "is invalid"
	}
}
