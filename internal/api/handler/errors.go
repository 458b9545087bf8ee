package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bca-portal/internal/service"
	"bca-portal/pkg/response"
)

// 业务错误码
const (
	codeValidation   = 10001
	codeUnauthorized = 10002
	codeForbidden    = 10003
	codeNotFound     = 10006

	codeInvalidCredentials = 11001
	codeInvalidRefresh     = 11002

	codeDuplicateSubmission = 40901
	codeOverpayment         = 40902
	codeInvalidState        = 40903
	codeConflict            = 40904
)

// handleError 将 service 层错误映射为 HTTP 响应；未分类错误统一 500
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, codeInvalidCredentials, "邮箱或密码错误")
		return
	case errors.Is(err, service.ErrInvalidRefresh):
		response.Unauthorized(c, codeInvalidRefresh, err.Error())
		return
	}

	msg := service.Message(err)
	switch service.Category(err) {
	case service.ErrValidation:
		response.BadRequest(c, codeValidation, msg)
	case service.ErrAccessDenied:
		response.Forbidden(c, codeForbidden, msg)
	case service.ErrNotFound:
		response.NotFound(c, codeNotFound, msg)
	case service.ErrDuplicateSubmission:
		response.Conflict(c, codeDuplicateSubmission, msg)
	case service.ErrOverpayment:
		response.Conflict(c, codeOverpayment, msg)
	case service.ErrInvalidState:
		response.Conflict(c, codeInvalidState, msg)
	case service.ErrConflict:
		response.Conflict(c, codeConflict, msg)
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// bindError 参数绑定失败，details 给出首个字段错误
func bindError(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, codeValidation, "参数校验失败", describeBindError(err))
}
