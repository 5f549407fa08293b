package middleware

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	appsub "github.com/erp/subcontracting/internal/application/subcontracting"
	"github.com/erp/subcontracting/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PartnerSelectionTag validates a worksheet partner list: each partner at most once, at most one default
const PartnerSelectionTag = "partner_selection"

var setupOnce sync.Once

// SetupValidator registers JSON field naming and the custom rules on gin's validator.
// Safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation(PartnerSelectionTag, validatePartnerSelection)
	})
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		name, _, _ = strings.Cut(fld.Tag.Get("uri"), ",")
	}
	return name
}

func validatePartnerSelection(fl validator.FieldLevel) bool {
	partners, ok := fl.Field().Interface().([]appsub.PartnerSelectionInput)
	if !ok {
		return false
	}
	seen := make(map[uuid.UUID]struct{}, len(partners))
	defaults := 0
	for _, p := range partners {
		if _, dup := seen[p.PartnerID]; dup {
			return false
		}
		seen[p.PartnerID] = struct{}{}
		if p.Default {
			defaults++
		}
	}
	return defaults <= 1
}

// ValidationDetails converts binding errors into per-field details.
// Errors that are not validator errors yield no details.
func ValidationDetails(err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   fieldPath(e),
			Message: validationMessage(e),
		})
	}
	return details
}

// fieldPath drops the top-level struct name, e.g. UpdateWorksheetRequest.partners[0].partner_id
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "required_without":
		return "Required when " + e.Param() + " is not set"
	case "excluded_with":
		return "Cannot be combined with " + e.Param()
	case PartnerSelectionTag:
		return "Each partner can be selected once and at most one can be the default"
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	default:
		return "Invalid value"
	}
}
