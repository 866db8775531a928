package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fentz26/laneplan/internal/interaction"
	"github.com/fentz26/laneplan/internal/persist"
	"github.com/fentz26/laneplan/internal/timeline"
)

type apiErrorBody struct {
	Code    string `json:"code" example:"not_found"`
	Message string `json:"message" example:"task not found"`
}

// apiError is the error envelope every endpoint returns.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

func newAPIError(status int, code, message string) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{status: status, Body: apiErrorBody{Code: code, Message: message}}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	msg := err.Error()
	var pe *persist.ParseError
	switch {
	case errors.As(err, &pe):
		return newAPIError(http.StatusBadRequest, "invalid_document", msg)
	case errors.Is(err, timeline.ErrTaskNotFound),
		errors.Is(err, interaction.ErrUnknownTask),
		errors.Is(err, timeline.ErrLaneNotFound):
		return newAPIError(http.StatusNotFound, "not_found", msg)
	case errors.Is(err, timeline.ErrInvalidRange):
		return newAPIError(http.StatusUnprocessableEntity, "invalid_range", msg)
	case errors.Is(err, timeline.ErrDuplicateID):
		return newAPIError(http.StatusConflict, "duplicate_id", msg)
	case errors.Is(err, timeline.ErrLaneInUse):
		return newAPIError(http.StatusConflict, "lane_in_use", msg)
	case errors.Is(err, timeline.ErrNoLanes):
		return newAPIError(http.StatusConflict, "no_lanes", msg)
	case errors.Is(err, interaction.ErrDragInProgress):
		return newAPIError(http.StatusConflict, "drag_in_progress", msg)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}
