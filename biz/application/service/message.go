package service

import (
	"context"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/adaptor"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/application/dto/core_api"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/convo"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/cst"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/message"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/util"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/logs"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/types/errno"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/json"
	"github.com/cloudwego/hertz/pkg/protocol/sse"
	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IMessageService interface {
	ConversationMessage(c *app.RequestContext, ctx context.Context, req *core_api.ConversationMessageReq) (*core_api.ConversationMessageResp, error)
	Feedback(ctx context.Context, req *core_api.FeedbackReq) (*core_api.FeedbackResp, error)
}

type MessageService struct {
	Manager       *convo.Manager
	MessageMapper message.MongoMapper
}

var MessageServiceSet = wire.NewSet(
	wire.Struct(new(MessageService), "*"),
	wire.Bind(new(IMessageService), new(*MessageService)),
)

// ConversationMessage 入站消息处理入口
// req.Stream为true时以SSE推送处理结果, 否则返回JSON
func (s *MessageService) ConversationMessage(c *app.RequestContext, ctx context.Context, req *core_api.ConversationMessageReq) (*core_api.ConversationMessageResp, error) {
	// 鉴权
	id, err := adaptor.ExtractIdentity(ctx)
	if err != nil {
		logs.Errorf("extract identity error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	out, err := s.Manager.HandleInboundMessage(ctx, id.TenantId, id.UserId, req.ConversationId, req.Content, req.Channel)
	if err != nil {
		return nil, err
	}

	resp := &core_api.ConversationMessageResp{
		Resp:               util.Success(),
		MessageId:          out.UserMessageId.Hex(),
		ConversationStatus: convo.StatusName(out.Status),
	}
	if out.Verdict == cst.VerdictAutomate {
		resp.AutomatedReply = out.Reply
		resp.Citations = out.Citations
	} else if out.Escalation != nil {
		resp.EscalationTicket = &core_api.EscalationTicket{
			EscalationId: out.Escalation.EscalationId.Hex(),
			Reason:       out.Escalation.Reason,
			Priority:     out.Escalation.Priority,
			SlaDeadline:  out.Escalation.SlaDeadline.UnixMilli(),
			Ack:          out.Reply,
		}
	}

	if req.Stream {
		s.pushStream(c, req, out, resp)
		return nil, nil
	}
	return resp, nil
}

// pushStream 把处理结果按 meta -> reply|escalation -> end 顺序推给客户端
func (s *MessageService) pushStream(c *app.RequestContext, req *core_api.ConversationMessageReq, out *convo.Output, resp *core_api.ConversationMessageResp) {
	stream := adaptor.NewSSEStream(c)
	defer func() { _ = stream.W.Close() }()

	writeJSON := func(typ string, v any) {
		b, err := json.Marshal(v)
		if err != nil {
			logs.Errorf("marshal sse event error: %s", errorx.ErrorWithoutStack(err))
			return
		}
		_ = stream.Write(&sse.Event{Type: typ, Data: b})
	}

	writeJSON(cst.EventMeta, &adaptor.EventMeta{
		MessageId:      out.UserMessageId.Hex(),
		ReplyId:        out.ReplyMessageId.Hex(),
		ConversationId: req.ConversationId,
		Status:         convo.StatusName(out.Status),
	})
	if out.Verdict == cst.VerdictAutomate {
		writeJSON(cst.EventReply, &adaptor.EventReply{
			Content:   out.Reply,
			Citations: out.Citations,
			IsDelta:   false,
		})
	} else if resp.EscalationTicket != nil {
		writeJSON(cst.EventEscalation, &adaptor.EventEscalation{
			EscalationId: resp.EscalationTicket.EscalationId,
			Reason:       resp.EscalationTicket.Reason,
			Priority:     resp.EscalationTicket.Priority,
			SlaDeadline:  resp.EscalationTicket.SlaDeadline,
			Ack:          resp.EscalationTicket.Ack,
		})
	}
	_ = stream.Write(&sse.Event{Type: cst.EventEnd, Data: []byte(cst.EventEndValue)})
}

// Feedback 消息反馈标记, 消息本体不可变
func (s *MessageService) Feedback(ctx context.Context, req *core_api.FeedbackReq) (*core_api.FeedbackResp, error) {
	// 鉴权
	if _, err := adaptor.ExtractIdentity(ctx); err != nil {
		logs.Errorf("extract identity error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	mid, err := primitive.ObjectIDFromHex(req.MessageId)
	if err != nil {
		return nil, errorx.New(errno.MessageFeedbackErrCode)
	}
	if err = s.MessageMapper.Feedback(ctx, mid, req.Feedback); err != nil {
		logs.Errorf("message feedback error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.MessageFeedbackErrCode)
	}
	return &core_api.FeedbackResp{Resp: util.Success()}, nil
}
