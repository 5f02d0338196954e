package service

// ModelRate 模型单价，单位：美分 / 百万 Token。
// 使用整数定价避免浮点误差累积。
type ModelRate struct {
	InputCentsPerMTok  int64
	OutputCentsPerMTok int64
}

// modelRates 各模型的计费单价表。
// 未知模型统一落到 defaultRate（保守定价，宁可多计不可少计）。
var modelRates = map[string]ModelRate{
	"gemini-2.0-flash":      {InputCentsPerMTok: 10, OutputCentsPerMTok: 40},
	"gemini-2.0-flash-lite": {InputCentsPerMTok: 8, OutputCentsPerMTok: 30},
	"gemini-2.5-flash":      {InputCentsPerMTok: 15, OutputCentsPerMTok: 60},
	"gemini-2.5-pro":        {InputCentsPerMTok: 125, OutputCentsPerMTok: 1000},
	"gpt-4o-mini":           {InputCentsPerMTok: 15, OutputCentsPerMTok: 60},
	"gpt-4o":                {InputCentsPerMTok: 250, OutputCentsPerMTok: 1000},
	"gpt-4.1-mini":          {InputCentsPerMTok: 40, OutputCentsPerMTok: 160},
	"o3-mini":               {InputCentsPerMTok: 110, OutputCentsPerMTok: 440},
}

// defaultRate 未知模型的兜底单价
var defaultRate = ModelRate{InputCentsPerMTok: 250, OutputCentsPerMTok: 1000}

// RateFor 返回模型单价，未知模型返回兜底单价
func RateFor(model string) ModelRate {
	if r, ok := modelRates[model]; ok {
		return r
	}
	return defaultRate
}

// CostCents 计算单次调用成本（美分），向上取整。
// 不变式：CostCents(m, 0, 0) == 0；成本对 Token 数单调不减。
func CostCents(model string, promptTokens, completionTokens int) int64 {
	if promptTokens <= 0 && completionTokens <= 0 {
		return 0
	}
	r := RateFor(model)
	raw := int64(promptTokens)*r.InputCentsPerMTok + int64(completionTokens)*r.OutputCentsPerMTok
	// ceil(raw / 1e6)
	return (raw + 999_999) / 1_000_000
}
