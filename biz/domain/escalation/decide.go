package escalation

import (
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/policy"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/cst"
)

// Signals 决策输入, 由会话管理器从本轮分析/生成结果汇总而来
type Signals struct {
	Intent         string
	Confidence     float64
	SentimentLabel string
	EmotionLabel   string
	AttemptCount   int64
	UserRequested  bool
	Compliance     bool
	TechnicalError bool
}

// Verdict 决策结果
type Verdict struct {
	Verdict string
	Reason  string
}

// Decide 纯函数, 按固定顺序逐条规则求值, 首条命中即返回:
//  1. technical_error  2. compliance_required  3. user_requested
//  4. sentiment_negative  5. emotion_angry  6. low_confidence
//  7. multiple_attempts  其余放行自动回复
func Decide(s *Signals, p *policy.Policy) *Verdict {
	if s.TechnicalError {
		return &Verdict{Verdict: cst.VerdictEscalate, Reason: cst.ReasonTechnicalError}
	}
	if s.Compliance || isCompliance(s.Intent, p) {
		return &Verdict{Verdict: cst.VerdictEscalate, Reason: cst.ReasonComplianceRequired}
	}
	if s.UserRequested && p.EscalateOnUserRequest {
		return &Verdict{Verdict: cst.VerdictEscalate, Reason: cst.ReasonUserRequested}
	}
	if s.SentimentLabel == cst.SentimentVeryNegative {
		return &Verdict{Verdict: cst.VerdictEscalate, Reason: cst.ReasonSentimentNegative}
	}
	if s.EmotionLabel == cst.EmotionAngry {
		return &Verdict{Verdict: cst.VerdictEscalate, Reason: cst.ReasonEmotionAngry}
	}
	if s.Confidence < p.ConfidenceThreshold {
		return &Verdict{Verdict: cst.VerdictEscalate, Reason: cst.ReasonLowConfidence}
	}
	if s.AttemptCount >= int64(p.MaxAttempts) {
		return &Verdict{Verdict: cst.VerdictEscalate, Reason: cst.ReasonMultipleAttempts}
	}
	return &Verdict{Verdict: cst.VerdictAutomate}
}

func isCompliance(intent string, p *policy.Policy) bool {
	for _, i := range p.ComplianceIntents {
		if i == intent {
			return true
		}
	}
	return false
}

// Priority 依据升级原因与租户VIP标记推导处理优先级
func Priority(reason string, vip bool) string {
	var pr string
	switch reason {
	case cst.ReasonTechnicalError, cst.ReasonComplianceRequired,
		cst.ReasonSentimentNegative, cst.ReasonEmotionAngry:
		pr = cst.PriorityHigh
	default:
		pr = cst.PriorityNormal
	}
	if vip {
		pr = elevate(pr)
	}
	return pr
}

func elevate(pr string) string {
	switch pr {
	case cst.PriorityLow:
		return cst.PriorityNormal
	case cst.PriorityNormal:
		return cst.PriorityHigh
	default:
		return cst.PriorityUrgent
	}
}
