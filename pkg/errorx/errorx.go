package errorx

import (
	"errors"
	"fmt"
	"runtime/debug"

	regcode "github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx/code"
)

// errorx 是带错误码的业务异常
// 最佳实践:
// - 业务处理链路的末端使用errorx, PostProcess处理后给出用户友好的响应
// - 错误码在types/errno中集中注册
// - 除却末端的errorx外, 其余的error照常处理

// StatusError 带业务错误码的错误
type StatusError interface {
	error
	Code() int32
	Msg() string
}

type statusError struct {
	code  int32
	msg   string
	cause error
	stack []byte
}

var _ StatusError = (*statusError)(nil)

// New 根据注册过的错误码构造errorx
func New(code int32) error {
	return &statusError{code: code, msg: regcode.Msg(code), stack: debug.Stack()}
}

// WrapByCode 用错误码包装底层错误, err为nil时返回nil
func WrapByCode(err error, code int32) error {
	if err == nil {
		return nil
	}
	var se *statusError
	if errors.As(err, &se) { // 已经是errorx, 保留最初的错误码
		return err
	}
	return &statusError{code: code, msg: regcode.Msg(code), cause: err, stack: debug.Stack()}
}

func (e *statusError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("code=%d, msg=%s, cause=%s", e.code, e.msg, e.cause.Error())
	}
	return fmt.Sprintf("code=%d, msg=%s", e.code, e.msg)
}

func (e *statusError) Code() int32 { return e.code }

func (e *statusError) Msg() string { return e.msg }

func (e *statusError) Unwrap() error { return e.cause }

// CodeOf 提取错误码, 非errorx返回0
func CodeOf(err error) int32 {
	var se StatusError
	if errors.As(err, &se) {
		return se.Code()
	}
	return 0
}

// IsCode 判断错误链上是否存在指定错误码
func IsCode(err error, code int32) bool {
	return CodeOf(err) == code
}

// ErrorWithoutStack 日志用的错误描述, 不携带堆栈
func ErrorWithoutStack(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
