package validation

import (
	"gear-guard/pkg/customvalidator"

	"github.com/go-playground/validator/v10"
)

// CustomValidator - обертка для использования в Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate реализует интерфейс echo.Validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New создает и настраивает валидатор.
// Если правило не зарегистрировалось, сервер не должен стартовать.
func New() *CustomValidator {
	v := validator.New()

	registerNullTypes(v)

	if err := customvalidator.RegisterCustomValidations(v); err != nil {
		panic("ошибка регистрации валидаторов: " + err.Error())
	}

	return &CustomValidator{validator: v}
}
