package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// NormalizeQuery 归一化查询文本: 小写、折叠空白、去首尾空白
// 检索缓存与生成缓存的键都基于归一化后的文本, 保证同义请求命中同一缓存项
func NormalizeQuery(q string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range strings.TrimSpace(q) {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// HashKey 对任意字符串求sha256十六进制摘要, 用作缓存键
func HashKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
