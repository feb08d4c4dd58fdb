package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrUserAlreadyExists  = fmt.Errorf("пользователь с таким email уже существует")

	// Контекст
	ErrPrincipalNotFoundInContext = fmt.Errorf("пользователь не найден в контексте запроса")

	// Таксономия ядра
	ErrNotFound     = fmt.Errorf("запись не найдена")
	ErrUnauthorized = fmt.Errorf("недостаточно прав для этой заявки")
	ErrValidation   = fmt.Errorf("ошибка валидации")
	ErrPersistence  = fmt.Errorf("ошибка хранилища")
)

// ValidationError несёт короткое сообщение для пользователя.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// PersistenceError оборачивает сбой хранилища, сохраняя исходную причину для логов.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// CascadeError: стадия заявки уже записана, но статус оборудования обновить не удалось.
type CascadeError struct {
	RequestID   uint64
	EquipmentID uint64
	Err         error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("стадия заявки %d обновлена, но статус оборудования %d не изменён: %v", e.RequestID, e.EquipmentID, e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }

// HttpError — ошибка транспортного уровня с кодом и безопасным сообщением.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}

func NewBadRequestError(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message, nil, nil)
}

func NewInternalError(message string) *HttpError {
	return NewHttpError(http.StatusInternalServerError, message, nil, nil)
}
