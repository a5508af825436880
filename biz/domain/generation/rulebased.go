package generation

import (
	"context"
	"strings"
	"time"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/cst"

	"github.com/cloudwego/eino/schema"
)

// 规则模板按意图给出固定话术, 作为链路兜底, 不依赖任何外部服务
var ruleTemplates = map[string]string{
	"password_reset":  "您可以在登录页点击\"忘记密码\", 通过注册邮箱或手机号重置密码。如果收不到验证邮件, 请检查垃圾邮箱。",
	"billing":         "账单与扣费明细可在\"我的账户-账单中心\"查看。如对某笔扣费有疑问, 请提供订单号以便进一步核实。",
	"order_status":    "订单状态可在\"我的订单\"页面实时查询, 发货后会同步物流单号。",
	"account":         "账户资料可在\"设置-账户信息\"中修改。涉及换绑手机或邮箱需要先完成身份验证。",
	"technical_issue": "请先尝试刷新页面或重新登录。如问题仍然存在, 请描述具体的报错信息, 我们会进一步排查。",
	"cancel_service":  "取消服务可在\"设置-订阅管理\"中发起, 当前计费周期结束前仍可正常使用。",
}

// RuleBasedProvider 本地规则供应商, 永不失败, 置于链尾
type RuleBasedProvider struct {
	name string
}

var _ Provider = (*RuleBasedProvider)(nil)

func NewRuleBasedProvider(name string) *RuleBasedProvider {
	return &RuleBasedProvider{name: name}
}

func (p *RuleBasedProvider) Name() string {
	return p.name
}

func (p *RuleBasedProvider) Generate(ctx context.Context, messages []*schema.Message) (*Result, error) {
	start := time.Now()
	intent, query := extractIntentAndQuery(messages)

	if text, ok := ruleTemplates[intent]; ok {
		return &Result{Text: text, Confidence: 0.6, LatencyMs: time.Since(start).Milliseconds()}, nil
	}
	_ = query
	return &Result{
		Text:       "抱歉, 我暂时无法准确回答这个问题, 即将为您转接人工客服。",
		Confidence: 0.2,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// extractIntentAndQuery 从系统提示携带的意图标记与末条用户消息还原输入
func extractIntentAndQuery(messages []*schema.Message) (intent, query string) {
	intent = cst.IntentUnknown
	for _, m := range messages {
		switch m.Role {
		case schema.System:
			if i := strings.Index(m.Content, intentMarker); i >= 0 {
				rest := m.Content[i+len(intentMarker):]
				if j := strings.IndexByte(rest, '\n'); j >= 0 {
					rest = rest[:j]
				}
				intent = strings.TrimSpace(rest)
			}
		case schema.User:
			query = m.Content
		}
	}
	return intent, query
}
