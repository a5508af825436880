package logs

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"
)

// logs 统一日志出口, 底层为go-zero logx
// 约定消息前缀为 [component] 或 [component] [method]

func Infof(format string, v ...any) {
	logx.Infof(format, v...)
}

func Errorf(format string, v ...any) {
	logx.Errorf(format, v...)
}

func CtxInfof(ctx context.Context, format string, v ...any) {
	logx.WithContext(ctx).Infof(format, v...)
}

func CtxWarnf(ctx context.Context, format string, v ...any) {
	logx.WithContext(ctx).Slowf(format, v...)
}

func CtxErrorf(ctx context.Context, format string, v ...any) {
	logx.WithContext(ctx).Errorf(format, v...)
}

// CondErrorf 条件成立时记录错误日志
func CondErrorf(cond bool, format string, v ...any) {
	if cond {
		logx.Errorf(format, v...)
	}
}
