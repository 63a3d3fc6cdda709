package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sekolahkita/siakad-backend/internal/apperr"
	"github.com/sekolahkita/siakad-backend/internal/middleware"
	"github.com/sekolahkita/siakad-backend/internal/repository"
	"github.com/sekolahkita/siakad-backend/internal/response"
)

// respondError translates a service or repository error into the response
// envelope. Every handler funnels its non-validation failures through here
// so the status mapping and logging stay in one place.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	if errors.Is(err, repository.ErrDuplicateClassroom) ||
		errors.Is(err, repository.ErrDuplicateSubject) ||
		errors.Is(err, repository.ErrDuplicateNIS) ||
		errors.Is(err, repository.ErrDuplicateEmail) {
		response.FailWithMessage(c, http.StatusConflict, response.ErrConflict, err.Error())
		return
	}

	ae := apperr.Classify(err)

	switch ae.Kind {
	case apperr.Validation:
		if len(ae.Fields) > 0 {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, ae.Fields)
			return
		}
		if msg, ok := apperr.SafeMessage(ae); ok {
			response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, msg)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)

	case apperr.Constraint:
		if msg, ok := apperr.SafeMessage(ae); ok {
			response.FailWithMessage(c, http.StatusConflict, response.ErrConflict, msg)
			return
		}
		response.Fail(c, http.StatusConflict, response.ErrConflict)

	case apperr.NotFound:
		if msg, ok := apperr.SafeMessage(ae); ok {
			response.FailWithMessage(c, http.StatusNotFound, response.ErrNotFound, msg)
			return
		}
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)

	default:
		evt := log.Error()
		if apperr.IsResourceExhausted(err) {
			evt = evt.Str("severity", "critical")
		}
		if claims := middleware.GetClaims(c); claims != nil {
			evt = evt.Int("admin_id", claims.AdminID)
		}
		evt.Err(err).
			Str("request_id", c.GetString(response.ContextKeyRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")

		if msg, ok := apperr.SafeMessage(err); ok {
			response.FailWithMessage(c, http.StatusInternalServerError, response.ErrInternal, msg)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
