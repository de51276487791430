package api

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// fieldError describes one failed validation constraint on a request body.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// validateRequest runs struct validation and flattens the result into
// field/message pairs. A nil return means the request is well-formed.
func validateRequest(obj any) []fieldError {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	var fieldErrors []fieldError
	for _, fe := range err.(validator.ValidationErrors) {
		fieldErrors = append(fieldErrors, fieldError{
			Field:   fe.Field(),
			Message: errorMessage(fe),
		})
	}
	return fieldErrors
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Too few elements"
	case "gt":
		return "Value must be greater than " + fe.Param()
	default:
		return "Invalid value"
	}
}
