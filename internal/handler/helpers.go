package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// validationMessages flattens a validator error into user-facing messages
func validationMessages(err error) []string {
	var messages []string
	var errs validator.ValidationErrors
	if ok := asValidationErrors(err, &errs); ok {
		for _, fe := range errs {
			switch fe.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", fe.Field()))
			case "email":
				messages = append(messages, fmt.Sprintf("%s must be a valid email address", fe.Field()))
			case "e164":
				messages = append(messages, fmt.Sprintf("%s must be a valid phone number", fe.Field()))
			case "gt":
				messages = append(messages, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
			case "gte":
				messages = append(messages, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must have at most %s entries", fe.Field(), fe.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", fe.Field()))
			}
		}
	}
	if len(messages) == 0 {
		messages = append(messages, err.Error())
	}
	return messages
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	errs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = errs
	}
	return ok
}

// invalidRequest is the uniform 400 for an unparseable body
func invalidRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request data"})
}

// validationFailed is the uniform 400 carrying one or many messages
func validationFailed(c echo.Context, messages []string) error {
	if len(messages) == 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": messages[0]})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"messages": messages})
}

// slugify turns a title into a URL slug
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case r == ' ' || r == '-' || r == '_' || r == '/':
			if !dash && b.Len() > 0 {
				b.WriteRune('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// uniqueSlug appends a short random suffix to avoid slug collisions
func uniqueSlug(base string) string {
	return slugify(base) + "-" + uuid.New().String()[:8]
}
