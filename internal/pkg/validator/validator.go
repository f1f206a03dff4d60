package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	oneOf := func(tag string, allowed ...string) {
		validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			v := fl.Field().String()
			for _, a := range allowed {
				if v == a {
					return true
				}
			}
			return false
		})
	}

	oneOf("card_tier", "STARTER", "BUILDER", "STRONG", "ELITE", "")
	oneOf("recurrence", "DAILY", "WEEKLY", "MONTHLY", "")
	oneOf("decision", "approve", "reject")
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			out[field] = "This field is required"
		case "min":
			out[field] = "Value is too short (min: " + fe.Param() + ")"
		case "max":
			out[field] = "Value is too long (max: " + fe.Param() + ")"
		case "gt":
			out[field] = "Value must be greater than " + fe.Param()
		case "lte":
			out[field] = "Value must be at most " + fe.Param()
		case "card_tier":
			out[field] = "Invalid tier. Must be: STARTER, BUILDER, STRONG, or ELITE"
		case "recurrence":
			out[field] = "Invalid recurrence. Must be: DAILY, WEEKLY, or MONTHLY"
		case "decision":
			out[field] = "Invalid decision. Must be: approve or reject"
		default:
			out[field] = "Invalid value"
		}
	}
	return out
}
