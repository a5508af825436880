package code

import (
	"fmt"
	"sync"
)

// code 维护全局业务错误码注册表
// 各模块在types/errno中通过init()注册自己的错误码, 保证码值唯一

type definition struct {
	code            int32
	msg             string
	affectStability bool
}

var (
	mu       sync.RWMutex
	registry = map[int32]*definition{}
)

type Option func(*definition)

// WithAffectStability 标记该错误是否影响服务稳定性指标
func WithAffectStability(affect bool) Option {
	return func(d *definition) { d.affectStability = affect }
}

// Register 注册一个错误码, 重复注册视为编码错误, 直接panic
func Register(code int32, msg string, opts ...Option) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[code]; ok {
		panic(fmt.Sprintf("duplicate error code: %d", code))
	}
	d := &definition{code: code, msg: msg}
	for _, opt := range opts {
		opt(d)
	}
	registry[code] = d
}

// Msg 获取错误码对应的用户可见信息
func Msg(code int32) string {
	mu.RLock()
	defer mu.RUnlock()
	if d, ok := registry[code]; ok {
		return d.msg
	}
	return "未知错误"
}

// AffectStability 该错误码是否影响稳定性
func AffectStability(code int32) bool {
	mu.RLock()
	defer mu.RUnlock()
	if d, ok := registry[code]; ok {
		return d.affectStability
	}
	return false
}
