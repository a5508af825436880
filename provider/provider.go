package provider

import (
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/application/service"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/convo"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/escalation"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/generation"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/nlp"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/observability"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/policy"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/quota"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/retrieval"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/attempt"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/conversation"
	mesc "github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/escalation"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/knowledge"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/message"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/tenant"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/verdict"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/google/wire"
)

var provider *Provider

func Init() {
	var err error
	provider, err = NewProvider()
	if err != nil {
		panic(err)
	}
}

// Provider 提供controller依赖的对象
type Provider struct {
	Config              *config.Config
	ConversationService service.IConversationService
	MessageService      service.IMessageService
	KnowledgeService    service.IKnowledgeService
	Sweeper             *convo.Sweeper
}

func Get() *Provider {
	return provider
}

var ApplicationSet = wire.NewSet(
	service.ConversationServiceSet,
	service.MessageServiceSet,
	service.KnowledgeServiceSet,
)

var DomainSet = wire.NewSet(
	nlp.AnalyzerSet,
	retrieval.RetrieverSet,
	wire.NewSet(retrieval.NewHashEmbedder, wire.Bind(new(embedding.Embedder), new(*retrieval.HashEmbedder))),
	generation.OrchestratorSet,
	escalation.HandoffSet,
	policy.LoaderSet,
	quota.EnforcerSet,
	observability.RecorderSet,
	convo.ManagerSet,
	convo.SweeperSet,
)

var InfraSet = wire.NewSet(
	config.NewConfig,
	conversation.NewConversationMongoMapper,
	message.NewMessageMongoMapper,
	knowledge.NewKnowledgeMongoMapper,
	attempt.NewAttemptMongoMapper,
	verdict.NewVerdictMongoMapper,
	mesc.NewEscalationMongoMapper,
	tenant.NewTenantMongoMapper,
)

var AllProvider = wire.NewSet(
	ApplicationSet,
	DomainSet,
	InfraSet,
)
