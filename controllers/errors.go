package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy onto HTTP.
func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "error.internal"
	switch {
	case errors.Is(err, services.ErrDiscountInvalid):
		status, code = http.StatusUnprocessableEntity, "error.discount_invalid"
	case errors.Is(err, services.ErrValidation):
		status, code = http.StatusBadRequest, "error.validation"
	case errors.Is(err, services.ErrNotFound):
		status, code = http.StatusNotFound, "error.not_found"
	case errors.Is(err, services.ErrRoomUnavailable):
		status, code = http.StatusConflict, "error.room_unavailable"
	case errors.Is(err, services.ErrInvalidStateTransition):
		status, code = http.StatusConflict, "error.invalid_state_transition"
	case errors.Is(err, services.ErrConflict):
		status, code = http.StatusConflict, "error.conflict"
	case errors.Is(err, services.ErrForbidden):
		status, code = http.StatusForbidden, "error.forbidden"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		message = "internal server error"
	}
	utils.JSONError(c, status, code, message)
}

func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "error.validation", err.Error())
}

func forbidden(c *gin.Context, message string) {
	utils.JSONError(c, http.StatusForbidden, "error.forbidden", message)
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "error.validation", "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
