package nlp

import (
	"math"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/cst"
)

// Trend 比较新值与对话滚动当前值得出趋势
// 判定阈值delta(缺省0.15, 租户可调): |差|<=delta为stable, 超过为improving/declining,
// 超过3*delta视为剧烈波动volatile; 首条消息没有先前值, 恒为stable
func Trend(prev, cur, delta float64, hadPrev bool) string {
	if !hadPrev {
		return cst.TrendStable
	}
	d := cur - prev
	switch {
	case math.Abs(d) > 3*delta:
		return cst.TrendVolatile
	case d > delta:
		return cst.TrendImproving
	case d < -delta:
		return cst.TrendDeclining
	default:
		return cst.TrendStable
	}
}

// EmotionTrend 情绪趋势基于强度变化: 强度攀升视为declining(情绪恶化), 回落视为improving
func EmotionTrend(prevIntensity, curIntensity, delta float64, hadPrev bool) string {
	if !hadPrev {
		return cst.TrendStable
	}
	d := curIntensity - prevIntensity
	switch {
	case math.Abs(d) > 3*delta:
		return cst.TrendVolatile
	case d > delta:
		return cst.TrendDeclining
	case d < -delta:
		return cst.TrendImproving
	default:
		return cst.TrendStable
	}
}
