package handlers

import (
	"errors"
	"net/http"
	"taskmind/core"
	"taskmind/finetune"
	"taskmind/service"
)

// classifyError maps a service error to an HTTP status and a v2 code.
func classifyError(err error) (int, string) {
	var appErr *core.AppError
	switch {
	case errors.Is(err, service.ErrEmptyTask),
		errors.Is(err, service.ErrInvalidFeedback),
		errors.Is(err, finetune.ErrNotEnoughFeedback):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, finetune.ErrRunInProgress):
		return http.StatusConflict, CodeResourceBusy
	case errors.As(err, &appErr):
		switch appErr.Code {
		case http.StatusBadGateway:
			return appErr.Code, CodeBadGateway
		case http.StatusConflict:
			return appErr.Code, CodeConflict
		case http.StatusBadRequest:
			return appErr.Code, CodeInvalidRequest
		}
		return appErr.Code, CodeInternal
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
