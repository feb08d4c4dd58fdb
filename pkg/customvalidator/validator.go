// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"regexp"

	"gear-guard/internal/entities"

	"github.com/go-playground/validator/v10"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RegisterCustomValidations регистрирует теги перечислений и проверку email.
func RegisterCustomValidations(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"request_type":     isRequestType,
		"request_priority": isRequestPriority,
		"request_stage":    isRequestStage,
		"user_role":        isUserRole,
		"equipment_status": isEquipmentStatus,
		"custom_email":     isGoodEmailFormat,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func isRequestType(fl validator.FieldLevel) bool {
	return entities.RequestType(fl.Field().String()).IsValid()
}

func isRequestPriority(fl validator.FieldLevel) bool {
	return entities.RequestPriority(fl.Field().String()).IsValid()
}

func isRequestStage(fl validator.FieldLevel) bool {
	return entities.RequestStage(fl.Field().String()).IsValid()
}

func isUserRole(fl validator.FieldLevel) bool {
	return entities.Role(fl.Field().String()).IsValid()
}

func isEquipmentStatus(fl validator.FieldLevel) bool {
	return entities.EquipmentStatus(fl.Field().String()).IsValid()
}

func isGoodEmailFormat(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}
