package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/quayside/authd/pkg/httpx"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeAndValidate decodes the JSON request body into dst and runs the
// struct validation rules. On failure it writes the 400 response itself and
// returns false; handlers just bail out.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, MessageResponse{Message: "Invalid request body"})
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		fields := make([]FieldError, 0, 4)
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, FieldError{
					Field:   strings.ToLower(fe.Field()),
					Message: validationMessage(fe),
				})
			}
		}
		if len(fields) == 0 {
			fields = append(fields, FieldError{Field: "body", Message: "invalid request"})
		}
		httpx.WriteJSON(w, http.StatusBadRequest, ValidationErrorResponse{Errors: fields})
		return false
	}

	return true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
