package convo

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/escalation"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/generation"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/nlp"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/observability"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/policy"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/quota"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/retrieval"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/cst"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/conversation"
	mesc "github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/escalation"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/message"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/verdict"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/logs"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/types/errno"

	"github.com/cloudwego/eino/schema"
	"github.com/google/wire"
	"github.com/zeromicro/go-zero/core/mr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	historySize     = 10
	saveMaxRetries  = 3
	degradedFactor  = 0.8 // 无知识支撑时的置信度折减
	escalationBrief = "已为您升级到人工客服, 工单原因: "
)

var priorityStoI = map[string]int32{
	cst.PriorityLow:    0,
	cst.PriorityNormal: 1,
	cst.PriorityHigh:   2,
	cst.PriorityUrgent: 3,
}

// Output 一次入站消息处理的结果
type Output struct {
	UserMessageId  primitive.ObjectID
	ReplyMessageId primitive.ObjectID
	Reply          string
	Citations      []string
	Verdict        string
	Reason         string
	Escalation     *mesc.EscalationRecord
	Status         int32
}

// Manager 对话状态机与处理编排的入口
// 同一对话的处理持有对话锁整段串行, 锁内不允许超过预算的外部调用
type Manager struct {
	Config             *config.Config
	ConversationMapper conversation.MongoMapper
	MessageMapper      message.MongoMapper
	PolicyLoader       *policy.Loader
	Quota              *quota.Enforcer
	Analyzer           *nlp.Analyzer
	Retriever          *retrieval.Retriever
	Orchestrator       *generation.Orchestrator
	Handoff            *escalation.Handoff
	Recorder           *observability.Recorder

	locker *Locker
}

var ManagerSet = wire.NewSet(NewManager)

func NewManager(c *config.Config, cm conversation.MongoMapper, mm message.MongoMapper,
	pl *policy.Loader, q *quota.Enforcer, an *nlp.Analyzer, rt *retrieval.Retriever,
	or *generation.Orchestrator, ho *escalation.Handoff, rec *observability.Recorder) *Manager {
	return &Manager{
		Config:             c,
		ConversationMapper: cm,
		MessageMapper:      mm,
		PolicyLoader:       pl,
		Quota:              q,
		Analyzer:           an,
		Retriever:          rt,
		Orchestrator:       or,
		Handoff:            ho,
		Recorder:           rec,
		locker:             NewLocker(),
	}
}

// HandleInboundMessage 处理一条用户消息: 串行化 -> 额度 -> 并行分析/检索 ->
// 生成 -> 升级裁决 -> 持久化与状态迁移
func (m *Manager) HandleInboundMessage(ctx context.Context, tenantId, uid, cid, content, channel string) (*Output, error) {
	m.locker.Lock(cid)
	defer m.locker.Unlock(cid)

	c, err := m.loadOpen(ctx, tenantId, cid)
	if err != nil {
		return nil, err
	}

	pol, err := m.PolicyLoader.Load(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	if err = m.Quota.TakeCall(ctx, tenantId, pol); err != nil {
		return nil, err
	}

	// 先落processing, 预算耗尽时对话停留在该状态等待重试, 不会死锁
	if err = m.toProcessing(ctx, c); err != nil {
		return nil, err
	}

	budget := time.Duration(m.Config.Pipeline.BudgetMs) * time.Millisecond
	bctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	analysis, passages := m.fanOut(bctx, tenantId, content, pol)
	if bctx.Err() != nil {
		return nil, errorx.New(errno.ProcessingTimeoutErrCode)
	}

	userMsgId, replyMsgId := primitive.NewObjectID(), primitive.NewObjectID()
	branchIntent := analysis.BranchIntent(pol.ConfidenceThreshold)

	outcome, attempts := m.Orchestrator.Generate(bctx, &generation.Input{
		TenantId:       tenantId,
		ConversationId: c.ConversationId,
		MessageId:      replyMsgId,
		Query:          content,
		Intent:         branchIntent,
		History:        m.history(bctx, cid),
		Passages:       passages,
	})
	m.Recorder.RecordAttempts(attempts)

	confidence := outcome.Confidence
	if len(passages) == 0 {
		confidence *= degradedFactor
	}

	v := escalation.Decide(&escalation.Signals{
		Intent:         branchIntent,
		Confidence:     confidence,
		SentimentLabel: analysis.SentimentLabel,
		EmotionLabel:   analysis.EmotionLabel,
		AttemptCount:   int64(c.Aggregates.FailedAttempts),
		UserRequested:  branchIntent == nlp.IntentHumanHandoff,
		Compliance:     analysis.Compliance,
		TechnicalError: outcome.TechnicalError,
	}, pol)
	m.Recorder.RecordVerdict(&verdict.Verdict{
		TenantId:       tenantId,
		ConversationId: c.ConversationId,
		MessageId:      userMsgId,
		Verdict:        v.Verdict,
		Reason:         v.Reason,
		Confidence:     confidence,
	})

	if err = m.storeUserMessage(ctx, c, userMsgId, uid, content, analysis); err != nil {
		return nil, err
	}

	out := &Output{
		UserMessageId:  userMsgId,
		ReplyMessageId: replyMsgId,
		Verdict:        v.Verdict,
		Reason:         v.Reason,
	}
	if v.Verdict == cst.VerdictAutomate {
		err = m.applyAutomate(ctx, c, replyMsgId, outcome, out)
	} else {
		err = m.applyEscalate(ctx, c, branchIntent, analysis, v, pol, out)
	}
	if err != nil {
		return nil, err
	}

	m.applyAggregates(c, analysis, confidence, pol)
	if err = m.saveWithRetry(ctx, c); err != nil {
		return nil, err
	}
	out.Status = c.Status
	return out, nil
}

// loadOpen 读取并校验对话可接收消息
func (m *Manager) loadOpen(ctx context.Context, tenantId, cid string) (*conversation.Conversation, error) {
	c, err := m.ConversationMapper.FindOne(ctx, cid)
	if err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			return nil, errorx.New(errno.ConversationNotFoundErrCode)
		}
		return nil, errorx.WrapByCode(err, errno.InternalErrCode)
	}
	// 租户隔离
	if c.TenantId != tenantId {
		return nil, errorx.New(errno.ConversationNotFoundErrCode)
	}
	if Closed(c.Status) {
		return nil, errorx.New(errno.ConversationClosedErrCode)
	}
	return c, nil
}

func (m *Manager) toProcessing(ctx context.Context, c *conversation.Conversation) error {
	if c.Status == cst.ConvInitialized {
		c.Status = cst.ConvActive
	}
	if !CanTransition(c.Status, cst.ConvProcessing) {
		return errorx.New(errno.StateConflictErrCode)
	}
	c.Status = cst.ConvProcessing
	c.LastActivity = time.Now()
	return m.saveWithRetry(ctx, c)
}

// fanOut 分析与检索并行, 检索失败走降级路径而不是让请求失败
func (m *Manager) fanOut(ctx context.Context, tenantId, content string, pol *policy.Policy) (*nlp.Analysis, []*retrieval.Passage) {
	var analysis *nlp.Analysis
	var passages []*retrieval.Passage
	_ = mr.Finish(func() error {
		analysis = m.Analyzer.Analyze(ctx, content)
		return nil
	}, func() error {
		iter, err := m.Retriever.Retrieve(ctx, tenantId, content, pol)
		if err != nil {
			logs.CtxWarnf(ctx, "[Manager] [fanOut] retrieve degraded: %s", errorx.ErrorWithoutStack(err))
			return nil
		}
		passages = iter.Collect()
		return nil
	})
	return analysis, passages
}

// history 取最近的对话上下文, 倒序翻转为正序
func (m *Manager) history(ctx context.Context, cid string) []*schema.Message {
	msgs, err := m.MessageMapper.RetrieveMessages(ctx, cid, historySize)
	if err != nil {
		logs.CtxWarnf(ctx, "[Manager] [history] retrieve err:%s", errorx.ErrorWithoutStack(err))
		return nil
	}
	hs := make([]*schema.Message, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		switch message.RoleItoS[msgs[i].Role] {
		case cst.User:
			hs = append(hs, schema.UserMessage(msgs[i].Content))
		case cst.Assistant:
			hs = append(hs, schema.AssistantMessage(msgs[i].Content, nil))
		}
	}
	return hs
}

func (m *Manager) storeUserMessage(ctx context.Context, c *conversation.Conversation,
	mid primitive.ObjectID, uid, content string, analysis *nlp.Analysis) error {
	entities := make([]message.Entity, 0, len(analysis.Entities))
	for _, e := range analysis.Entities {
		entities = append(entities, message.Entity{Type: e.Type, Value: e.Value})
	}
	now := time.Now()
	msg := &message.Message{
		MessageId:      mid,
		ConversationId: c.ConversationId,
		TenantId:       c.TenantId,
		SenderId:       uid,
		Index:          int32(c.Aggregates.MessageCount),
		Role:           message.RoleStoI[cst.User],
		Content:        content,
		CreateTime:     now,
		UpdateTime:     now,
		NLP: &message.NLP{
			Intent:           analysis.Intent,
			Confidence:       analysis.Confidence,
			SecondaryIntents: analysis.SecondaryIntents,
			Entities:         entities,
			SentimentScore:   analysis.SentimentScore,
			SentimentLabel:   analysis.SentimentLabel,
			EmotionLabel:     analysis.EmotionLabel,
			EmotionIntensity: analysis.EmotionIntensity,
		},
	}
	if err := m.MessageMapper.InsertOne(ctx, msg); err != nil {
		return errorx.WrapByCode(err, errno.MessageStoreErrCode)
	}
	c.Aggregates.MessageCount++
	c.Aggregates.UserMessageCount++
	return nil
}

// applyAutomate 自动回复: 落assistant消息, processing -> waiting_for_user
func (m *Manager) applyAutomate(ctx context.Context, c *conversation.Conversation,
	mid primitive.ObjectID, outcome *generation.Outcome, out *Output) error {
	now := time.Now()
	msg := &message.Message{
		MessageId:      mid,
		ConversationId: c.ConversationId,
		TenantId:       c.TenantId,
		Index:          int32(c.Aggregates.MessageCount),
		Role:           message.RoleStoI[cst.Assistant],
		Content:        outcome.Text,
		CreateTime:     now,
		UpdateTime:     now,
		Gen: &message.Gen{
			Provider:   outcome.Provider,
			Confidence: outcome.Confidence,
			Cost:       outcome.Cost,
			Success:    true,
			CacheHit:   outcome.CacheHit,
			Citations:  outcome.Citations,
		},
	}
	if err := m.MessageMapper.InsertOne(ctx, msg); err != nil {
		return errorx.WrapByCode(err, errno.MessageStoreErrCode)
	}
	c.Aggregates.MessageCount++
	c.Aggregates.AutoMessageCount++
	// 未达成结单的自动回复计入尝试次数, 结单时清零
	c.Aggregates.FailedAttempts++
	c.Status = cst.ConvWaitingForUser

	out.Reply = outcome.Text
	out.Citations = outcome.Citations
	return nil
}

// applyEscalate 升级: 本地记录优先, 外部建单失败不阻塞, processing -> escalated
func (m *Manager) applyEscalate(ctx context.Context, c *conversation.Conversation,
	intent string, analysis *nlp.Analysis, v *escalation.Verdict, pol *policy.Policy, out *Output) error {
	priority := escalation.Priority(v.Reason, pol.VIP)
	record, err := m.Handoff.Escalate(ctx, c.TenantId, c.ConversationId, v.Reason, priority, map[string]string{
		"intent":    intent,
		"sentiment": analysis.SentimentLabel,
		"emotion":   analysis.EmotionLabel,
		"channel":   c.Channel,
	})
	if err != nil {
		return err
	}

	c.Aggregates.EscalationCount++
	c.Aggregates.FailedAttempts++
	c.Status = cst.ConvEscalated
	c.Priority = priorityStoI[priority]
	c.ExternalCaseId = record.ExternalCaseId

	out.Escalation = record
	out.Reply = escalationBrief + v.Reason
	return nil
}

// applyAggregates 滚动聚合: 置信度单调统计, 情感/情绪以最新消息覆盖并计算趋势
func (m *Manager) applyAggregates(c *conversation.Conversation, analysis *nlp.Analysis, confidence float64, pol *policy.Policy) {
	a := &c.Aggregates
	hadPrev := a.SentimentLabel != ""

	a.SentimentTrend = nlp.Trend(a.SentimentScore, analysis.SentimentScore, pol.TrendDelta, hadPrev)
	a.SentimentScore = analysis.SentimentScore
	a.SentimentLabel = analysis.SentimentLabel

	a.EmotionTrend = nlp.EmotionTrend(a.EmotionIntensity, analysis.EmotionIntensity, pol.TrendDelta, hadPrev)
	a.EmotionLabel = analysis.EmotionLabel
	a.EmotionIntensity = analysis.EmotionIntensity

	if a.ConfidenceCnt == 0 {
		a.ConfidenceMin = confidence
	} else {
		a.ConfidenceMin = math.Min(a.ConfidenceMin, confidence)
	}
	a.ConfidenceSum += confidence
	a.ConfidenceCnt++

	c.LastActivity = time.Now()
}

// saveWithRetry CAS冲突时重读版本重试, 锁内写入者以本次结果为准
func (m *Manager) saveWithRetry(ctx context.Context, c *conversation.Conversation) error {
	var err error
	for i := 0; i < saveMaxRetries; i++ {
		if err = m.ConversationMapper.SaveState(ctx, c); err == nil {
			return nil
		}
		if !errors.Is(err, conversation.ErrStateConflict) {
			return errorx.WrapByCode(err, errno.InternalErrCode)
		}
		fresh, ferr := m.ConversationMapper.FindOne(ctx, c.ConversationId.Hex())
		if ferr != nil {
			return errorx.WrapByCode(ferr, errno.StateConflictErrCode)
		}
		c.Version = fresh.Version
	}
	return errorx.WrapByCode(err, errno.StateConflictErrCode)
}

// Resolve 结单: 记录摘要后对话不可再变更, 仅可归档
func (m *Manager) Resolve(ctx context.Context, tenantId, cid, summary, outcome string) (*conversation.Conversation, error) {
	m.locker.Lock(cid)
	defer m.locker.Unlock(cid)

	c, err := m.loadOpen(ctx, tenantId, cid)
	if err != nil {
		return nil, err
	}
	if !CanTransition(c.Status, cst.ConvResolved) {
		return nil, errorx.New(errno.StateConflictErrCode)
	}

	now := time.Now()
	c.Status = cst.ConvResolved
	c.Resolution = conversation.Resolution{Resolved: true, Summary: summary, Outcome: outcome, ResolvedAt: &now}
	c.Aggregates.FailedAttempts = 0
	c.EndTime = &now
	c.LastActivity = now
	if err = m.saveWithRetry(ctx, c); err != nil {
		return nil, errorx.WrapByCode(err, errno.ConversationResolveErrCode)
	}
	if c.Aggregates.EscalationCount > 0 {
		if err = m.Handoff.Resolve(ctx, c.ConversationId); err != nil {
			logs.Errorf("[Manager] [Resolve] resolve escalations of %s err:%s", cid, errorx.ErrorWithoutStack(err))
		}
	}
	return c, nil
}
