package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/types"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

type ListBody struct {
	List       interface{}       `json:"list"`
	Pagination *types.Pagination `json:"pagination"`
}

// SuccessResponse: если передан total и запрос с пагинацией, тело оборачивается в {list, pagination}.
func SuccessResponse(ctx echo.Context, body interface{}, message string, code int, total ...uint64) error {
	response := &HTTPResponse{Status: true, Message: message, Body: body}

	filter := ParseFilterFromQuery(ctx.Request().URL.Query())
	if len(total) > 0 && filter.WithPagination {
		totalPages := 0
		if filter.Limit > 0 {
			totalPages = int((total[0] + uint64(filter.Limit) - 1) / uint64(filter.Limit))
		}
		response.Body = ListBody{
			List: body,
			Pagination: &types.Pagination{
				TotalCount: total[0],
				Page:       filter.Page,
				Limit:      filter.Limit,
				TotalPages: totalPages,
			},
		}
	}
	return ctx.JSON(code, response)
}

// ErrorResponse переводит ошибки сервисов в HTTP-коды. Внутренние детали наружу не уходят.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	logger = LoggerFrom(c, logger)
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			logger.Error("HTTP Error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
			)
		}
		return c.JSON(httpErr.Code, HTTPResponse{Status: false, Message: httpErr.Message, Body: httpErr.Details})
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var msgs []string
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("Поле '%s' не прошло проверку '%s'", e.Field(), e.Tag()))
		}
		return c.JSON(http.StatusBadRequest, HTTPResponse{Status: false, Message: "Ошибка валидации: " + strings.Join(msgs, "; ")})
	}

	var vErr *apperrors.ValidationError
	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusBadRequest, HTTPResponse{Status: false, Message: vErr.Message})
	case errors.Is(err, apperrors.ErrNotFound):
		return c.JSON(http.StatusNotFound, HTTPResponse{Status: false, Message: "Запись не найдена"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, HTTPResponse{Status: false, Message: "Недостаточно прав"})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, HTTPResponse{Status: false, Message: "Неверный email или пароль"})
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		return c.JSON(http.StatusConflict, HTTPResponse{Status: false, Message: err.Error()})
	case errors.Is(err, apperrors.ErrEmptyAuthHeader),
		errors.Is(err, apperrors.ErrInvalidAuthHeader),
		errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrInvalidSigningMethod),
		errors.Is(err, apperrors.ErrPrincipalNotFoundInContext):
		return c.JSON(http.StatusUnauthorized, HTTPResponse{Status: false, Message: err.Error()})
	}

	logger.Error("Unexpected Error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, HTTPResponse{Status: false, Message: "Внутренняя ошибка сервера"})
}
