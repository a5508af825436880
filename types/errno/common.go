package errno

import (
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx/code"
)

const (
	UnAuthErrCode   = 1000
	InternalErrCode = 999
)

func init() {
	code.Register(
		UnAuthErrCode,
		"身份认证失败",
		code.WithAffectStability(false),
	)
	code.Register(
		InternalErrCode,
		"服务内部错误",
		code.WithAffectStability(true),
	)
}
