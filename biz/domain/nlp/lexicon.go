package nlp

// 内置词典, 租户可在此基础上追加
// 词典驱动的分析保证同一输入永远得到同一结果, 便于回放与测试

// IntentHumanHandoff 用户主动要求人工
const IntentHumanHandoff = "human_handoff"

// 意图关键词
var intentDict = map[string][]string{
	"password_reset":  {"password", "reset my password", "forgot", "忘记密码", "重置密码", "改密码", "登录不上"},
	"billing":         {"bill", "invoice", "charge", "refund", "账单", "发票", "扣费", "退款", "多扣"},
	"order_status":    {"order", "shipping", "delivery", "track", "订单", "物流", "发货", "快递"},
	"account":         {"account", "profile", "email change", "账号", "资料", "换绑"},
	"technical_issue": {"error", "bug", "crash", "not working", "报错", "崩溃", "用不了", "打不开"},
	"cancel_service":  {"cancel", "unsubscribe", "close my account", "取消", "退订", "注销"},
	"human_handoff":   {"human", "agent", "real person", "speak to someone", "人工", "转人工", "真人", "客服"},
}

// 合规敏感意图的内置关键词, 命中即标记, 是否强制人工由租户策略决定
var complianceDict = []string{
	"gdpr", "delete my data", "lawsuit", "lawyer", "chargeback", "legal",
	"删除我的数据", "起诉", "律师", "投诉到监管", "举报",
}

// 情感词
var (
	positiveDict = []string{
		"thanks", "thank you", "great", "perfect", "awesome", "love", "helpful", "solved",
		"谢谢", "感谢", "太好了", "完美", "解决了", "满意", "赞",
	}
	negativeDict = []string{
		"bad", "terrible", "awful", "useless", "worst", "hate", "disappointed", "unacceptable",
		"ridiculous", "scam", "垃圾", "太差", "失望", "没用", "离谱", "骗", "不能接受", "差劲",
	}
)

// 情绪词
var emotionDict = map[string][]string{
	"angry": {
		"angry", "furious", "outrageous", "fed up", "enough", "immediately",
		"气死", "愤怒", "岂有此理", "受够了", "马上给我",
	},
	"frustrated": {
		"again", "still not", "third time", "how many times", "tired of",
		"又来了", "还是不行", "第三次", "多少次", "烦死",
	},
	"confused": {
		"confused", "don't understand", "what does", "how do i", "unclear",
		"不明白", "看不懂", "怎么弄", "啥意思",
	},
	"happy": {
		"happy", "glad", "wonderful", "nice",
		"开心", "很棒", "好评",
	},
}

// 实体词典
var entityDict = map[string][]string{
	"product": {"pro plan", "basic plan", "enterprise", "app", "专业版", "基础版", "企业版"},
	"channel": {"wechat", "app store", "web", "微信", "网页版"},
}
