package util

import (
	"encoding/json"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/application/dto/basic"
)

// Success 返回成功的basic.Response指针
func Success() *basic.Response {
	return &basic.Response{
		Code: 200,
		Msg:  "success",
	}
}

// JSONF 日志用, 序列化任意对象, 失败时返回错误描述而非中断
func JSONF(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "<marshal error: " + err.Error() + ">"
	}
	return string(data)
}
