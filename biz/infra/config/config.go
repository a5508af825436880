package config

import (
	"os"
	"sync"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/service"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

var (
	config *Config
	once   sync.Once
)

type Auth struct {
	SecretKey    string
	PublicKey    string
	AccessExpire int64
}

type Mongo struct {
	URL string
	DB  string
}

// Provider 生成服务提供方配置, 按在配置中出现的顺序构成调用链
type Provider struct {
	Name              string
	BaseURL           string  `json:",optional"`
	APIKey            string  `json:",optional"`
	Model             string  `json:",optional"`
	TimeoutMs         int     `json:",default=2000"` // 单次调用超时
	PromptCostPer1K   float64 `json:",default=0"`    // 每千prompt token成本
	ResponseCostPer1K float64 `json:",default=0"`    // 每千completion token成本
	RuleBased         bool    `json:",optional"`     // 规则兜底, 不走网络
}

// Handoff 人工工单系统(CRM)配置
type Handoff struct {
	URL             string `json:",optional"`
	APIKey          string `json:",optional"`
	RetryIntervalMs int    `json:",default=5000"`
	MaxRetries      int    `json:",default=10"`
}

// TenantDefaults 租户策略缺省值, 可被租户文档覆盖
type TenantDefaults struct {
	ConfidenceThreshold float64 `json:",default=0.7"`  // 自动回复置信度阈值
	MaxAttempts         int     `json:",default=3"`    // 同一对话最大自动处理失败次数
	TrendDelta          float64 `json:",default=0.15"` // 情感/情绪趋势判定阈值
	SemanticWeight      float64 `json:",default=0.7"`
	LexicalWeight       float64 `json:",default=0.3"`
	MinFusedScore       float64 `json:",default=0.35"`
	TopK                int     `json:",default=5"`
	ConversationQuota   int     `json:",default=1000"` // 每周期对话数上限
	ConversationPeriodS int     `json:",default=2592000"`
	CallQuota           int     `json:",default=600"` // 每小时调用上限
}

// Pipeline 对话处理主流程的预算与周期配置
type Pipeline struct {
	BudgetMs            int `json:",default=3000"` // 端到端处理预算
	BreakerFailures     int `json:",default=5"`    // 熔断阈值: 窗口内连续失败次数
	BreakerWindowS      int `json:",default=60"`
	BreakerCooldownS    int `json:",default=30"`
	GenCacheTTLS        int `json:",default=30"`
	RetrievalCacheTTLS  int `json:",default=60"`
	InactivityWindowMin int `json:",default=30"` // 超过该时长无活动按放弃处理
	SweepIntervalMin    int `json:",default=5"`
}

type Config struct {
	service.ServiceConf
	ListenOn  string
	MetricsOn string `json:",default=0.0.0.0:9091"` // prometheus采集端口
	Auth      Auth
	Mongo     Mongo
	Cache     cache.CacheConf
	Redis     redis.RedisConf
	Providers []Provider
	Handoff   Handoff
	Tenant    TenantDefaults
	Pipeline  Pipeline
}

func NewConfig() (*Config, error) {
	c := new(Config)
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "etc/config.yaml"
	}
	err := conf.Load(path, c)
	if err != nil {
		return nil, err
	}
	err = c.SetUp()
	if err != nil {
		return nil, err
	}
	config = c
	return config, nil
}

func GetConfig() *Config {
	return config
}

// SetForTest 测试用, 注入一份配置单例
func SetForTest(c *Config) {
	config = c
}
