// internal/validation/validation.go
package validation

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/soukcraft/soukcraft-web/internal/models"
)

var validate *validator.Validate

var phonePattern = regexp.MustCompile(`^0[5-7]\d{8}$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("notblank", validateNotBlank)
	validate.RegisterValidation("price", validatePrice)
	validate.RegisterValidation("maroc_phone", validateMarocPhone)

	// Report errors under the wire-format field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// AdInput holds the user-entered ad fields. Price stays a string because it
// arrives as raw form input; the price rule does the numeric comparison.
// Category carries no rule: the selector only offers valid values.
type AdInput struct {
	Title       string          `json:"title" validate:"notblank,max=10"`
	Description string          `json:"description" validate:"notblank,max=25"`
	Price       string          `json:"price" validate:"notblank,price"`
	Category    models.Category `json:"category"`
	PhoneNumber string          `json:"phone_number" validate:"notblank,maroc_phone"`
}

// ValidateAd runs the shared four-field ruleset and returns field->message.
// Every field is checked independently; all violations are reported in one
// pass. An empty map means the input is valid.
func ValidateAd(input AdInput) map[string]string {
	errs := make(map[string]string)

	err := validate.Struct(input)
	if err == nil {
		return errs
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["form"] = "Invalid input"
		return errs
	}

	for _, e := range validationErrs {
		errs[e.Field()] = messageFor(e)
	}
	return errs
}

// ValidateNewAd is the submission-form variant: the shared ruleset plus the
// required-image check. Updates never require an image (absent means keep).
func ValidateNewAd(input AdInput, hasImage bool) map[string]string {
	errs := ValidateAd(input)
	if !hasImage {
		errs["image"] = "Image is required"
	}
	return errs
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validatePrice(fl validator.FieldLevel) bool {
	price, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
	if err != nil {
		return false
	}
	return price > 0
}

func validateMarocPhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

func messageFor(e validator.FieldError) string {
	if e.Tag() == "notblank" {
		switch e.Field() {
		case "title":
			return "Title is required"
		case "description":
			return "Description is required"
		case "price":
			return "Price is required"
		case "phone_number":
			return "Phone number is required"
		}
	}

	switch e.Field() {
	case "title":
		return "Title must be ≤10 characters"
	case "description":
		return "Description must be ≤25 characters"
	case "price":
		return "Price must be > 0 MAD"
	case "phone_number":
		return "Invalid Moroccan number"
	}
	return e.Field() + " is invalid"
}
