package errno

import (
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx/code"
)

const (
	EscalationStoreErrCode = 60001
	HandoffErrCode         = 60002
)

func init() {
	code.Register(
		EscalationStoreErrCode,
		"升级记录保存失败",
		code.WithAffectStability(true),
	)
	code.Register(
		HandoffErrCode,
		"人工工单创建失败",
		code.WithAffectStability(true),
	)
}
