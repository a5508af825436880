package errno

import (
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx/code"
)

const (
	ConversationNotFoundErrCode = 30001
	ConversationClosedErrCode   = 30002
	ProcessingTimeoutErrCode    = 30003
	ConversationCreateErrCode   = 30004
	ConversationListErrCode     = 30005
	ConversationSearchErrCode   = 30006
	StateConflictErrCode        = 30007
	MessageStoreErrCode         = 30008
	MessageFeedbackErrCode      = 30009
	ConversationResolveErrCode  = 30010
)

func init() {
	code.Register(
		ConversationNotFoundErrCode,
		"对话不存在",
		code.WithAffectStability(false),
	)
	code.Register(
		ConversationClosedErrCode,
		"对话已结束, 请创建新的对话",
		code.WithAffectStability(false),
	)
	code.Register(
		ProcessingTimeoutErrCode,
		"对话处理超时, 请稍后重试",
		code.WithAffectStability(true),
	)
	code.Register(
		ConversationCreateErrCode,
		"创建对话失败",
		code.WithAffectStability(false),
	)
	code.Register(
		ConversationListErrCode,
		"分页获取历史对话失败",
		code.WithAffectStability(false),
	)
	code.Register(
		ConversationSearchErrCode,
		"搜索历史对话失败",
		code.WithAffectStability(false),
	)
	code.Register(
		StateConflictErrCode,
		"对话状态已变更, 请重试",
		code.WithAffectStability(true),
	)
	code.Register(
		MessageStoreErrCode,
		"消息保存失败",
		code.WithAffectStability(true),
	)
	code.Register(
		MessageFeedbackErrCode,
		"消息反馈失败",
		code.WithAffectStability(false),
	)
	code.Register(
		ConversationResolveErrCode,
		"对话结单失败",
		code.WithAffectStability(false),
	)
}
