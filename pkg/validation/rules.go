package validation

import (
	"time"

	"github.com/go-playground/validator/v10"

	"itad-system/internal/entities"
)

// registerRules registers the tags used in DTO struct tags.
func registerRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"asset_status":    oneOfFunc(entities.AssetStatuses),
		"identifier_type": oneOfFunc(entities.IdentifierTypes),
		"sanitize_method": oneOfFunc(entities.SanitizationMethods),
		"wo_type":         oneOfFunc(entities.WorkOrderTypes),
		"org_type":        oneOfFunc(entities.OrgTypes),
		"risk_tier":       oneOfFunc(entities.RiskTiers),
		"r2v3": oneOfFunc([]entities.R2v3Compliance{
			entities.R2v3Compliant, entities.R2v3Pending, entities.R2v3NonCompliant,
		}),
		"iso_date": isISODate,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func oneOfFunc[T ~string](allowed []T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, a := range allowed {
			if string(a) == s {
				return true
			}
		}
		return false
	}
}

// isISODate accepts a calendar date or an RFC 3339 timestamp.
func isISODate(fl validator.FieldLevel) bool {
	_, ok := ParseISODate(fl.Field().String())
	return ok
}

func ParseISODate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
