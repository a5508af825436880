package main

import (
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/adaptor/controller/core_api"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/provider"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/hertz-contrib/cors"
	prometheus "github.com/hertz-contrib/monitor-prometheus"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
)

func main() {
	provider.Init()
	c := provider.Get().Config

	// 后台巡检: 静默对话置为abandoned, 终结对话归档, 悬空工单补扫
	provider.Get().Sweeper.Start()
	defer provider.Get().Sweeper.Stop()

	tracer, cfg := hertztracing.NewServerTracer()
	h := server.Default(
		tracer,
		server.WithHostPorts(c.ListenOn),
		server.WithTracer(prometheus.NewServerTracer(c.MetricsOn, "/metrics")),
	)
	h.Use(hertztracing.ServerMiddleware(cfg))
	h.Use(cors.Default())
	register(h)
	h.Spin()
}

func register(h *server.Hertz) {
	g := h.Group("/")

	conv := g.Group("/conversation")
	conv.POST("/create", core_api.CreateConversation)
	conv.POST("/list", core_api.ListConversation)
	conv.POST("/search", core_api.SearchConversation)
	conv.POST("/resolve", core_api.ResolveConversation)
	conv.POST("/message", core_api.ConversationMessage)

	msg := g.Group("/message")
	msg.POST("/feedback", core_api.Feedback)

	kn := g.Group("/knowledge")
	kn.POST("/create", core_api.CreateKnowledge)
}
