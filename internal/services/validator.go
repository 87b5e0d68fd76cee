package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator builds the form validator shared by the services
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	validate.RegisterValidation("notblank", notBlank)
	return validate
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// formMessage turns the first validation failure into a sentence for the user
func formMessage(err error, messages map[string]string) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	first := verrs[0]
	if msg, ok := messages[first.Field()+"."+first.Tag()]; ok {
		return msg
	}
	if msg, ok := messages[first.Field()]; ok {
		return msg
	}
	return first.Field() + " is invalid"
}
