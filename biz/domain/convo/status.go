package convo

import (
	"errors"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/cst"
)

// ErrInvalidTransition 非法状态迁移
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions 状态迁移表, 不在表内的迁移一律拒绝
// processing->processing 允许: 预算耗尽后的续跑入口
var transitions = map[int32][]int32{
	cst.ConvInitialized:     {cst.ConvActive, cst.ConvAbandoned},
	cst.ConvActive:          {cst.ConvProcessing, cst.ConvAbandoned},
	cst.ConvProcessing:      {cst.ConvProcessing, cst.ConvWaitingForUser, cst.ConvWaitingForAgent, cst.ConvEscalated, cst.ConvAbandoned},
	cst.ConvWaitingForUser:  {cst.ConvProcessing, cst.ConvResolved, cst.ConvAbandoned},
	cst.ConvWaitingForAgent: {cst.ConvEscalated, cst.ConvTransferred, cst.ConvResolved, cst.ConvAbandoned},
	cst.ConvEscalated:       {cst.ConvTransferred, cst.ConvResolved, cst.ConvAbandoned},
	cst.ConvTransferred:     {cst.ConvResolved, cst.ConvAbandoned},
	cst.ConvResolved:        {cst.ConvArchived},
	cst.ConvAbandoned:       {cst.ConvArchived},
	cst.ConvArchived:        {},
}

var statusNames = map[int32]string{
	cst.ConvInitialized:     "initialized",
	cst.ConvActive:          "active",
	cst.ConvProcessing:      "processing",
	cst.ConvWaitingForUser:  "waiting_for_user",
	cst.ConvWaitingForAgent: "waiting_for_agent",
	cst.ConvEscalated:       "escalated",
	cst.ConvTransferred:     "transferred",
	cst.ConvResolved:        "resolved",
	cst.ConvAbandoned:       "abandoned",
	cst.ConvArchived:        "archived",
}

func StatusName(s int32) string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// CanTransition 查表校验迁移合法性
func CanTransition(from, to int32) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Closed 已终结的对话不再接受消息, 应创建后续对话
func Closed(s int32) bool {
	return s == cst.ConvResolved || s == cst.ConvAbandoned || s == cst.ConvArchived
}

// Sweepable 可被后台巡检判定为放弃的状态
func Sweepable() []int32 {
	return []int32{
		cst.ConvInitialized, cst.ConvActive, cst.ConvProcessing,
		cst.ConvWaitingForUser, cst.ConvWaitingForAgent,
		cst.ConvEscalated, cst.ConvTransferred,
	}
}
