package response

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the JSON error payload every failed request renders. Validation
// outcomes carry their message through; unexpected failures are logged
// internally and surface only a generic message.
type Err struct {
	statusCode int
	internal   error

	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (e *Err) Error() string {
	return fmt.Sprintf("%v - %v", e.Code, e.Message)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		statusCode: http.StatusBadRequest,
		Code:       "bad_request",
		Message:    err.Error(),
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		statusCode: http.StatusUnauthorized,
		Code:       "unauthorized",
		Message:    err.Error(),
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		statusCode: http.StatusUnauthorized,
		Code:       "wrong_credentials",
		Message:    err.Error(),
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	return &Err{
		statusCode: http.StatusNotFound,
		Code:       "not_found",
		Message:    fmt.Sprintf("%v not found by %v (%v)", resource, key, value),
	}
}

func ErrConflict(err error) *Err {
	return &Err{
		statusCode: http.StatusConflict,
		Code:       "conflict",
		Message:    err.Error(),
	}
}

func ErrUnprocessable(err error) *Err {
	return &Err{
		statusCode: http.StatusUnprocessableEntity,
		Code:       "unprocessable",
		Message:    err.Error(),
	}
}

func ErrBadGateway(err error) *Err {
	return &Err{
		statusCode: http.StatusBadGateway,
		internal:   err,
		Code:       "bad_gateway",
		Message:    "upstream service unavailable",
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		statusCode: http.StatusInternalServerError,
		internal:   err,
		Code:       "internal_error",
		Message:    "something went wrong",
	}
}

func RenderErr(ctx *gin.Context, err *Err) {
	err.RequestID = requestid.Get(ctx)

	if err.internal != nil {
		zap.L().Error("request failed",
			zap.String("request_id", err.RequestID),
			zap.Int("status", err.statusCode),
			zap.Error(err.internal),
		)
	}

	ctx.JSON(err.statusCode, err)
}
