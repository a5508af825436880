package errno

import (
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx/code"
)

const (
	QuotaConversationErrCode = 40001
	QuotaCallErrCode         = 40002
	QuotaCheckErrCode        = 40003
)

func init() {
	code.Register(
		QuotaConversationErrCode,
		"本周期对话额度已用尽",
		code.WithAffectStability(false),
	)
	code.Register(
		QuotaCallErrCode,
		"本小时调用额度已用尽",
		code.WithAffectStability(false),
	)
	code.Register(
		QuotaCheckErrCode,
		"额度校验失败",
		code.WithAffectStability(true),
	)
}
