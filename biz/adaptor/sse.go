package adaptor

// SSE流处理

import (
	"context"
	"strconv"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/util"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/logs"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/sse"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel/trace"
)

// SSEStream SSE事件流
type SSEStream struct {
	C    chan *sse.Event
	W    *sse.Writer
	id   int
	Done chan struct{}
}

// NewSSEStream 创建事件流
func NewSSEStream(c *app.RequestContext) *SSEStream {
	return &SSEStream{C: make(chan *sse.Event, 100), id: 0, Done: make(chan struct{}), W: sse.NewWriter(c)}
}

func (s *SSEStream) Close() {
	close(s.C)
	_ = s.W.Close()
}

// Write 直接写出事件并自动编号
func (s *SSEStream) Write(e *sse.Event) (err error) {
	e.ID = strconv.Itoa(s.id)
	s.id++
	if err = s.W.Write(e); err != nil {
		logs.Errorf("write sse err: %s", errorx.ErrorWithoutStack(err))
	}
	return err
}

// Nex 获取下一个事件并返回是否关闭
func (s *SSEStream) Nex() (*sse.Event, bool) {
	event, ok := <-s.C
	if !ok {
		return nil, false
	}
	event.ID = strconv.Itoa(s.id)
	s.id++
	return event, true
}

// SSE 实现sse流响应
func SSE(ctx context.Context, c *app.RequestContext, req any, stream *SSEStream, err error) {
	b3.New().Inject(ctx, &headerProvider{headers: &c.Response.Header})
	logs.CtxInfof(ctx, "[%s] req=%s, resp=sse stream, err=%s, trace=%s", c.Path(), util.JSONF(req), errorx.ErrorWithoutStack(err), trace.SpanContextFromContext(ctx).TraceID().String())

	if err != nil { // 有错误
		PostError(ctx, c, err)
		return
	}
}

// EventMeta 元数据事件
type EventMeta struct {
	MessageId      string `json:"messageId"`
	ReplyId        string `json:"replyId"`
	ConversationId string `json:"conversationId"`
	Status         string `json:"status"`
}

// EventReply 自动回复事件
type EventReply struct {
	Content   string   `json:"content"`
	Provider  string   `json:"provider,omitempty"`
	Citations []string `json:"citations,omitempty"`
	IsDelta   bool     `json:"isDelta"`
}

// EventEscalation 升级确认事件
type EventEscalation struct {
	EscalationId string `json:"escalationId"`
	Reason       string `json:"reason"`
	Priority     string `json:"priority"`
	SlaDeadline  int64  `json:"slaDeadline"`
	Ack          string `json:"ack"`
}

type EventEnd struct{}
