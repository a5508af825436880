package nlp

import (
	"context"
	"testing"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/cst"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeEmpty(t *testing.T) {
	a := NewAnalyzer()
	r := a.Analyze(context.Background(), "")
	assert.Equal(t, cst.IntentUnknown, r.Intent)
	assert.Equal(t, float64(0), r.Confidence)
	assert.Equal(t, cst.SentimentNeutral, r.SentimentLabel)
	assert.Equal(t, cst.EmotionNeutral, r.EmotionLabel)
	assert.False(t, r.Compliance)
}

func TestAnalyzeIntent(t *testing.T) {
	a := NewAnalyzer()

	r := a.Analyze(context.Background(), "我忘记密码了, 登录不上")
	assert.Equal(t, "password_reset", r.Intent)
	// 两个词典命中: 0.5 + 0.15*2
	assert.InDelta(t, 0.8, r.Confidence, 1e-9)

	r = a.Analyze(context.Background(), "这笔退款什么时候到账")
	assert.Equal(t, "billing", r.Intent)
	assert.InDelta(t, 0.65, r.Confidence, 1e-9)

	r = a.Analyze(context.Background(), "转人工")
	assert.Equal(t, IntentHumanHandoff, r.Intent)
	assert.GreaterOrEqual(t, r.Confidence, 0.65)

	r = a.Analyze(context.Background(), "今天天气不错")
	assert.Equal(t, cst.IntentUnknown, r.Intent)
}

func TestBranchIntent(t *testing.T) {
	r := &Analysis{Intent: "billing", Confidence: 0.65}
	assert.Equal(t, "billing", r.BranchIntent(0.6))
	assert.Equal(t, cst.IntentUnknown, r.BranchIntent(0.7))
}

func TestAnalyzeSentiment(t *testing.T) {
	a := NewAnalyzer()

	r := a.Analyze(context.Background(), "垃圾系统, 太差了, 根本没用")
	assert.InDelta(t, -1.0, r.SentimentScore, 1e-9)
	assert.Equal(t, cst.SentimentVeryNegative, r.SentimentLabel)

	r = a.Analyze(context.Background(), "谢谢, 问题解决了")
	assert.InDelta(t, 1.0, r.SentimentScore, 1e-9)
	assert.Equal(t, cst.SentimentVeryPositive, r.SentimentLabel)

	r = a.Analyze(context.Background(), "谢谢, 但是还是没用")
	assert.InDelta(t, 0, r.SentimentScore, 1e-9)
	assert.Equal(t, cst.SentimentNeutral, r.SentimentLabel)
}

func TestSentimentLabelBoundaries(t *testing.T) {
	assert.Equal(t, cst.SentimentVeryNegative, SentimentLabel(-0.6))
	assert.Equal(t, cst.SentimentNegative, SentimentLabel(-0.2))
	assert.Equal(t, cst.SentimentNeutral, SentimentLabel(-0.19))
	assert.Equal(t, cst.SentimentNeutral, SentimentLabel(0.19))
	assert.Equal(t, cst.SentimentPositive, SentimentLabel(0.2))
	assert.Equal(t, cst.SentimentVeryPositive, SentimentLabel(0.6))
}

func TestAnalyzeEmotion(t *testing.T) {
	a := NewAnalyzer()

	r := a.Analyze(context.Background(), "气死我了, 受够了!!!")
	assert.Equal(t, cst.EmotionAngry, r.EmotionLabel)
	// 两个命中0.8, 感叹号加成封顶0.3
	assert.InDelta(t, 1.0, r.EmotionIntensity, 1e-9)

	r = a.Analyze(context.Background(), "看不懂, 这个怎么弄")
	assert.Equal(t, cst.EmotionConfused, r.EmotionLabel)

	r = a.Analyze(context.Background(), "好的")
	assert.Equal(t, cst.EmotionNeutral, r.EmotionLabel)
	assert.Equal(t, float64(0), r.EmotionIntensity)
}

func TestAnalyzeCompliance(t *testing.T) {
	a := NewAnalyzer()
	assert.True(t, a.Analyze(context.Background(), "再不解决我就找律师起诉").Compliance)
	assert.False(t, a.Analyze(context.Background(), "帮我查下订单").Compliance)
}

func TestAnalyzeEntities(t *testing.T) {
	a := NewAnalyzer()
	r := a.Analyze(context.Background(), "订单号: 123456789 一直没发货, 回复发到 foo@example.com")

	var email, order string
	for _, e := range r.Entities {
		switch e.Type {
		case "email":
			email = e.Value
		case "order_id":
			order = e.Value
		}
	}
	assert.Equal(t, "foo@example.com", email)
	assert.Equal(t, "123456789", order)
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := NewAnalyzer()
	const msg = "第三次了还是不行!! 垃圾, 订单 ORD-888888 再不处理我就投诉到监管"
	first := a.Analyze(context.Background(), msg)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, a.Analyze(context.Background(), msg))
	}
}

func TestTrend(t *testing.T) {
	assert.Equal(t, cst.TrendStable, Trend(0, 0.5, 0.15, false))
	assert.Equal(t, cst.TrendStable, Trend(0.5, 0.6, 0.15, true))
	assert.Equal(t, cst.TrendImproving, Trend(0.0, 0.2, 0.15, true))
	assert.Equal(t, cst.TrendDeclining, Trend(0.2, 0.0, 0.15, true))
	assert.Equal(t, cst.TrendVolatile, Trend(-0.5, 0.5, 0.15, true))
}

func TestEmotionTrend(t *testing.T) {
	assert.Equal(t, cst.TrendStable, EmotionTrend(0, 0.9, 0.15, false))
	// 情绪强度攀升意味恶化
	assert.Equal(t, cst.TrendDeclining, EmotionTrend(0.3, 0.6, 0.15, true))
	assert.Equal(t, cst.TrendImproving, EmotionTrend(0.6, 0.3, 0.15, true))
	assert.Equal(t, cst.TrendVolatile, EmotionTrend(0.0, 0.5, 0.1, true))
}
