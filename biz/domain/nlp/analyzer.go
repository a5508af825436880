package nlp

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/google/wire"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/cst"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/ac"
)

// Analyzer 从单条消息抽取意图/实体/情感/情绪
// 只返回分析结果, 不直接修改对话状态, 状态落库由Conversation Manager负责

type Entity struct {
	Type  string
	Value string
}

type Analysis struct {
	Intent           string   // 主意图原值, 置信度不足时下游按unknown分支
	Confidence       float64  // 主意图置信度
	SecondaryIntents []string // 其余高于次要阈值的意图
	Entities         []Entity
	SentimentScore   float64 // [-1,1]
	SentimentLabel   string  // 五级标签
	EmotionLabel     string
	EmotionIntensity float64 // [0,1]
	Compliance       bool    // 命中合规敏感词
}

// BranchIntent 用于下游分支的意图: 低于阈值视作unknown, 原值仍保留在Intent中
func (a *Analysis) BranchIntent(threshold float64) string {
	if a.Confidence < threshold {
		return cst.IntentUnknown
	}
	return a.Intent
}

const secondaryIntentFloor = 0.3 // 次要意图下限

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	orderRe = regexp.MustCompile(`(?i)(?:ord|order|订单号?)[-_ #:：]*([0-9]{6,})`)
)

type intentRule struct {
	name    string
	matcher *ac.Matcher
}

type Analyzer struct {
	intents    []*intentRule
	compliance *ac.Matcher
	positive   *ac.Matcher
	negative   *ac.Matcher
	emotions   map[string]*ac.Matcher
	entities   map[string]*ac.Matcher
}

var AnalyzerSet = wire.NewSet(NewAnalyzer)

func NewAnalyzer() *Analyzer {
	a := &Analyzer{
		compliance: ac.MustNewMatcher(complianceDict),
		positive:   ac.MustNewMatcher(positiveDict),
		negative:   ac.MustNewMatcher(negativeDict),
		emotions:   make(map[string]*ac.Matcher),
		entities:   make(map[string]*ac.Matcher),
	}
	// 意图名排序后构建, 保证多意图同分时的平局顺序稳定
	names := make([]string, 0, len(intentDict))
	for name := range intentDict {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		a.intents = append(a.intents, &intentRule{name: name, matcher: ac.MustNewMatcher(intentDict[name])})
	}
	for name, dict := range emotionDict {
		a.emotions[name] = ac.MustNewMatcher(dict)
	}
	for name, dict := range entityDict {
		a.entities[name] = ac.MustNewMatcher(dict)
	}
	return a
}

// Analyze 分析一条用户消息, 纯函数, 相同输入恒得相同输出
func (a *Analyzer) Analyze(_ context.Context, content string) *Analysis {
	r := &Analysis{Intent: cst.IntentUnknown, SentimentLabel: cst.SentimentNeutral, EmotionLabel: cst.EmotionNeutral}
	if content == "" {
		return r
	}

	a.analyzeIntent(content, r)
	a.analyzeEntities(content, r)
	a.analyzeSentiment(content, r)
	a.analyzeEmotion(content, r)
	r.Compliance = a.compliance.Hit(content)
	return r
}

// analyzeIntent 意图置信度 = 0.5 + 0.15*命中数, 上限0.95
// 词典法没有概率输出, 以命中密度作为可复现实的置信度代理
func (a *Analyzer) analyzeIntent(content string, r *Analysis) {
	type scored struct {
		name string
		conf float64
	}
	var all []scored
	for _, rule := range a.intents {
		ok, words := rule.matcher.Search(content, false)
		if !ok {
			continue
		}
		conf := math.Min(0.95, 0.5+0.15*float64(len(uniq(words))))
		all = append(all, scored{name: rule.name, conf: conf})
	}
	if len(all) == 0 {
		return
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].conf > all[j].conf })
	r.Intent, r.Confidence = all[0].name, all[0].conf
	for _, s := range all[1:] {
		if s.conf >= secondaryIntentFloor {
			r.SecondaryIntents = append(r.SecondaryIntents, s.name)
		}
	}
}

func (a *Analyzer) analyzeEntities(content string, r *Analysis) {
	for _, email := range emailRe.FindAllString(content, -1) {
		r.Entities = append(r.Entities, Entity{Type: "email", Value: email})
	}
	for _, mm := range orderRe.FindAllStringSubmatch(content, -1) {
		r.Entities = append(r.Entities, Entity{Type: "order_id", Value: mm[1]})
	}
	// 词典实体按类型名排序遍历, 保证输出顺序稳定
	types := make([]string, 0, len(a.entities))
	for t := range a.entities {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		if ok, words := a.entities[t].Search(content, false); ok {
			for _, w := range uniq(words) {
				r.Entities = append(r.Entities, Entity{Type: t, Value: w})
			}
		}
	}
}

// analyzeSentiment 得分 = (正-负)/(正+负), 无命中为0
func (a *Analyzer) analyzeSentiment(content string, r *Analysis) {
	_, pos := a.positive.Search(content, false)
	_, neg := a.negative.Search(content, false)
	p, n := float64(len(pos)), float64(len(neg))
	if p+n > 0 {
		r.SentimentScore = (p - n) / (p + n)
	}
	r.SentimentLabel = SentimentLabel(r.SentimentScore)
}

// SentimentLabel [-1,1]映射五级标签, 阈值±0.2/±0.6
func SentimentLabel(score float64) string {
	switch {
	case score <= -0.6:
		return cst.SentimentVeryNegative
	case score <= -0.2:
		return cst.SentimentNegative
	case score < 0.2:
		return cst.SentimentNeutral
	case score < 0.6:
		return cst.SentimentPositive
	default:
		return cst.SentimentVeryPositive
	}
}

// analyzeEmotion 取命中数最多的情绪, 强度 = 0.4 + 0.2*命中数 + 感叹号加成, 上限1
func (a *Analyzer) analyzeEmotion(content string, r *Analysis) {
	names := make([]string, 0, len(a.emotions))
	for name := range a.emotions {
		names = append(names, name)
	}
	sort.Strings(names)

	best, bestHits := cst.EmotionNeutral, 0
	for _, name := range names {
		if ok, words := a.emotions[name].Search(content, false); ok {
			if hits := len(uniq(words)); hits > bestHits {
				best, bestHits = name, hits
			}
		}
	}
	if bestHits == 0 {
		return
	}
	bang := float64(strings.Count(content, "!") + strings.Count(content, "！"))
	r.EmotionLabel = best
	r.EmotionIntensity = math.Min(1, 0.4+0.2*float64(bestHits)+math.Min(0.3, 0.1*bang))
}

func uniq(ss []string) []string {
	seen := make(map[string]struct{}, len(ss))
	out := ss[:0]
	for _, s := range ss {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
