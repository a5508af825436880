package generation

import (
	"fmt"
	"strings"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/retrieval"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/util"

	"github.com/cloudwego/eino/schema"
)

const intentMarker = "intent:"

const systemPromptHeader = `你是客服助手, 基于以下资料回答用户问题。
要求: 只依据资料作答, 资料无法覆盖时如实说明; 回答保持简洁礼貌。`

// ComposePrompt 把意图/知识片段/近期对话组装为模型输入
// 片段按融合得分顺序编号, 回复中的引用以编号对应
func ComposePrompt(intent string, passages []*retrieval.Passage, history []*schema.Message, query string) []*schema.Message {
	var sb strings.Builder
	sb.WriteString(systemPromptHeader)
	sb.WriteString("\n")
	sb.WriteString(intentMarker)
	sb.WriteString(" ")
	sb.WriteString(intent)
	sb.WriteString("\n")
	if len(passages) > 0 {
		sb.WriteString("参考资料:\n")
		for i, p := range passages {
			sb.WriteString(fmt.Sprintf("[%d] %s\n%s\n", i+1, p.Title, p.Content))
		}
	} else {
		sb.WriteString("参考资料: 无\n")
	}

	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(sb.String()))
	messages = append(messages, history...)
	messages = append(messages, schema.UserMessage(query))
	return messages
}

// PromptHash 同一输入稳定命中同一缓存键
func PromptHash(messages []*schema.Message) string {
	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(string(m.Role))
		sb.WriteString("\x1f")
		sb.WriteString(m.Content)
		sb.WriteString("\x1e")
	}
	return util.HashKey(sb.String())
}
