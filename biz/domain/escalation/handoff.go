package escalation

import (
	"context"
	"net/http"
	"time"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/cst"
	mesc "github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/escalation"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/util/httpx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/logs"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/safego"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/types/errno"

	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// slaOf 各优先级的首次人工响应时限
func slaOf(priority string) time.Duration {
	switch priority {
	case cst.PriorityUrgent:
		return 15 * time.Minute
	case cst.PriorityHigh:
		return 30 * time.Minute
	case cst.PriorityLow:
		return 8 * time.Hour
	default:
		return 2 * time.Hour
	}
}

type handoffReq struct {
	ConversationId string            `json:"conversation_id"`
	TenantId       string            `json:"tenant_id"`
	Reason         string            `json:"reason"`
	Priority       string            `json:"priority"`
	Context        map[string]string `json:"context,omitempty"`
}

type handoffResp struct {
	CaseId string `json:"case_id"`
}

// Handoff 外部工单协作方客户端
// 升级先落本地记录, 外部建单失败不影响会话进入escalated, 由后台任务重试
type Handoff struct {
	Config           *config.Config
	EscalationMapper mesc.MongoMapper
}

var HandoffSet = wire.NewSet(
	wire.Struct(new(Handoff), "*"),
)

// Escalate 创建升级记录并尝试外部建单, 返回已持久化的记录
func (h *Handoff) Escalate(ctx context.Context, tenantId string, conversationId primitive.ObjectID,
	reason, priority string, hctx map[string]string) (*mesc.EscalationRecord, error) {
	record := &mesc.EscalationRecord{
		TenantId:       tenantId,
		ConversationId: conversationId,
		Reason:         reason,
		Priority:       priority,
		SlaDeadline:    time.Now().Add(slaOf(priority)),
		HandoffStatus:  mesc.HandoffPending,
	}
	if err := h.EscalationMapper.InsertOne(ctx, record); err != nil {
		return nil, errorx.WrapByCode(err, errno.EscalationStoreErrCode)
	}

	if caseId, err := h.createCase(ctx, record, hctx); err != nil {
		logs.CtxWarnf(ctx, "[Handoff] [Escalate] create external case failed, retry async: %s", errorx.ErrorWithoutStack(err))
		h.retryAsync(record, hctx)
	} else {
		record.ExternalCaseId = caseId
		record.HandoffStatus = mesc.HandoffCreated
		if err = h.EscalationMapper.UpdateHandoff(ctx, record.EscalationId, caseId, mesc.HandoffCreated); err != nil {
			logs.Errorf("[Handoff] [Escalate] update handoff err:%s", errorx.ErrorWithoutStack(err))
		}
	}
	return record, nil
}

// RecoverPending 补扫外部工单尚未建立的升级记录, 每轮对每条记录重试一次建单.
// 成功回写created; 失败保持pending留给下一轮, 升级记录不会被丢弃
func (h *Handoff) RecoverPending(ctx context.Context, limit int64) error {
	records, err := h.EscalationMapper.ListPendingHandoff(ctx, limit)
	if err != nil {
		return errorx.WrapByCode(err, errno.EscalationStoreErrCode)
	}
	for _, r := range records {
		caseId, err := h.createCase(ctx, r, nil)
		if err != nil {
			logs.CtxWarnf(ctx, "[Handoff] [RecoverPending] escalation %s still pending: %s",
				r.EscalationId.Hex(), errorx.ErrorWithoutStack(err))
			continue
		}
		if err = h.EscalationMapper.UpdateHandoff(ctx, r.EscalationId, caseId, mesc.HandoffCreated); err != nil {
			logs.Errorf("[Handoff] [RecoverPending] update err:%s", errorx.ErrorWithoutStack(err))
		}
	}
	return nil
}

// Resolve 会话收束, 其名下未结升级一并标记处理完成
func (h *Handoff) Resolve(ctx context.Context, conversationId primitive.ObjectID) error {
	return h.EscalationMapper.ResolveByConversation(ctx, conversationId, time.Now())
}

func (h *Handoff) createCase(ctx context.Context, r *mesc.EscalationRecord, hctx map[string]string) (string, error) {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Authorization", "Bearer "+h.Config.Handoff.APIKey)
	resp, err := httpx.Post[handoffResp](ctx, h.Config.Handoff.URL, headers, &handoffReq{
		ConversationId: r.ConversationId.Hex(),
		TenantId:       r.TenantId,
		Reason:         r.Reason,
		Priority:       r.Priority,
		Context:        hctx,
	})
	if err != nil {
		return "", errorx.WrapByCode(err, errno.HandoffErrCode)
	}
	return resp.CaseId, nil
}

// retryAsync 后台限次重试外部建单, 超过次数标记失败等待人工介入
func (h *Handoff) retryAsync(r *mesc.EscalationRecord, hctx map[string]string) {
	interval := time.Duration(h.Config.Handoff.RetryIntervalMs) * time.Millisecond
	maxRetries := h.Config.Handoff.MaxRetries
	safego.Go(context.Background(), func() {
		for i := 0; i < maxRetries; i++ {
			time.Sleep(interval)
			ctx := context.Background()
			caseId, err := h.createCase(ctx, r, hctx)
			if err != nil {
				logs.Errorf("[Handoff] [retryAsync] attempt %d err:%s", i+1, errorx.ErrorWithoutStack(err))
				continue
			}
			if err = h.EscalationMapper.UpdateHandoff(ctx, r.EscalationId, caseId, mesc.HandoffCreated); err != nil {
				logs.Errorf("[Handoff] [retryAsync] update err:%s", errorx.ErrorWithoutStack(err))
			}
			return
		}
		if err := h.EscalationMapper.UpdateHandoff(context.Background(), r.EscalationId, "", mesc.HandoffFailed); err != nil {
			logs.Errorf("[Handoff] [retryAsync] mark failed err:%s", errorx.ErrorWithoutStack(err))
		}
	})
}
