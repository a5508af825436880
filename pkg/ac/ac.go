package ac

import (
	"bytes"
	"strings"

	ahocorasick "github.com/anknown/ahocorasick"
)

// ac 封装Aho-Corasick多模式串匹配
// 每个Matcher持有一个独立字典, 供意图/实体/敏感词等多套字典并存

type Matcher struct {
	m    *ahocorasick.Machine
	dict []string
}

// readRunes 将字符串字典转换为rune切片数组, 用于Aho-Corasick算法的输入格式要求
func readRunes(dict []string) (runes [][]rune) {
	for _, word := range dict {
		word = strings.ToLower(word)          // 转换为小写, 实现大小写不敏感匹配
		l := bytes.TrimSpace([]byte(word))    // 去除前后空白字符
		runes = append(runes, bytes.Runes(l)) // 将字符串转换为rune切片, 支持中文等多字节字符
	}
	return runes
}

// NewMatcher 根据关键词字典构建AC自动机
func NewMatcher(dict []string) (*Matcher, error) {
	m := new(ahocorasick.Machine)
	runes := readRunes(dict)
	if err := m.Build(runes); err != nil { // 构建AC自动机的Trie树结构
		return nil, err
	}
	return &Matcher{m: m, dict: dict}, nil
}

// MustNewMatcher 构建失败直接panic, 用于启动期静态字典
func MustNewMatcher(dict []string) *Matcher {
	m, err := NewMatcher(dict)
	if err != nil {
		panic(err)
	}
	return m
}

// Search 多模式串搜索
// 参数: findText: 待搜索的文本内容  stopImmediately: 是否找到第一个匹配就停止搜索
// 返回值: bool: 是否找到匹配的关键词 []string: 匹配到的关键词列表
func (a *Matcher) Search(findText string, stopImmediately bool) (bool, []string) {
	// 空字典或空文本的边界情况处理
	if a == nil || len(a.dict) == 0 || len(findText) == 0 {
		return false, nil
	}

	// 执行多模式串搜索
	hits := a.m.MultiPatternSearch([]rune(strings.ToLower(findText)), stopImmediately)
	if len(hits) > 0 {
		words := make([]string, 0)
		for _, hit := range hits {
			words = append(words, string(hit.Word)) // 将匹配到的rune切片转换回字符串
		}
		return true, words
	}
	return false, nil
}

// Hit 是否命中任一关键词
func (a *Matcher) Hit(findText string) bool {
	ok, _ := a.Search(findText, true)
	return ok
}
