package retrieval

import (
	"strings"
	"unicode"
)

// Tokenize 轻量分词: 拉丁字母/数字连续段为一个词, CJK逐字并补充相邻二字组合
// 检索的语义/词法两路打分共用该分词, 保证可复现实验
func Tokenize(s string) []string {
	var tokens []string
	var word strings.Builder
	var lastCJK rune

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}

	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			tokens = append(tokens, string(r))
			if lastCJK != 0 {
				tokens = append(tokens, string(lastCJK)+string(r))
			}
			lastCJK = r
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
			lastCJK = 0
		default:
			flush()
			lastCJK = 0
		}
	}
	flush()
	return tokens
}
