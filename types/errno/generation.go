package errno

import (
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx/code"
)

const (
	GenerationErrCode          = 50001
	ProviderTimeoutErrCode     = 50002
	ProviderRateLimitErrCode   = 50003
	ProviderUnavailableErrCode = 50004
)

func init() {
	code.Register(
		GenerationErrCode,
		"回复生成失败",
		code.WithAffectStability(true),
	)
	code.Register(
		ProviderTimeoutErrCode,
		"模型服务响应超时",
		code.WithAffectStability(true),
	)
	code.Register(
		ProviderRateLimitErrCode,
		"模型服务限流",
		code.WithAffectStability(false),
	)
	code.Register(
		ProviderUnavailableErrCode,
		"模型服务不可用",
		code.WithAffectStability(true),
	)
}
