package errno

import (
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx/code"
)

const (
	KnowledgeSearchErrCode = 70001
	TenantPolicyErrCode    = 70002
	KnowledgeIndexErrCode  = 70003
)

func init() {
	code.Register(
		KnowledgeSearchErrCode,
		"知识库检索失败",
		code.WithAffectStability(true),
	)
	code.Register(
		TenantPolicyErrCode,
		"租户配置获取失败",
		code.WithAffectStability(true),
	)
	code.Register(
		KnowledgeIndexErrCode,
		"知识库写入失败",
		code.WithAffectStability(true),
	)
}
