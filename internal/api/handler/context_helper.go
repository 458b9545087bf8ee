package handler

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"bca-portal/internal/service"
	"bca-portal/pkg/response"
)

// 由 JWTAuth 中间件写入的上下文键
const (
	CtxUserID    = "user_id"
	CtxRole      = "role"
	CtxProfileID = "profile_id"
	CtxTokenJTI  = "token_jti"
	CtxTokenExp  = "token_exp"
)

// MustGetActor 从 Gin 上下文构造当前操作者。
// JWT 中间件未注入 user_id / role 时写入 401 响应并返回 false，调用方应直接 return。
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	userID := c.GetString(CtxUserID)
	role := c.GetString(CtxRole)
	if userID == "" || role == "" {
		response.Unauthorized(c, codeUnauthorized, "未认证")
		return service.Actor{}, false
	}
	return service.Actor{
		UserID:    userID,
		Role:      role,
		ProfileID: c.GetString(CtxProfileID),
	}, true
}

// tokenMeta 当前 Access Token 的 JTI 与过期时间，用于注销拉黑
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString(CtxTokenJTI)
	exp, _ := c.Get(CtxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}

// bindOptionalJSON 请求体可为空的 JSON 绑定
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
