package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostCentsZero(t *testing.T) {
	assert.Equal(t, int64(0), CostCents("gpt-4o", 0, 0))
	assert.Equal(t, int64(0), CostCents("unknown-model", 0, 0))
}

func TestCostCentsRoundsUp(t *testing.T) {
	// gemini-2.0-flash: 10 / 40 美分每百万 Token
	// 1 个 prompt token = 10/1e6 美分，向上取整为 1
	assert.Equal(t, int64(1), CostCents("gemini-2.0-flash", 1, 0))
	// 恰好整除时不多收
	assert.Equal(t, int64(1), CostCents("gemini-2.0-flash", 100_000, 0))
	assert.Equal(t, int64(2), CostCents("gemini-2.0-flash", 100_001, 0))
}

func TestCostCentsMonotonic(t *testing.T) {
	prev := int64(0)
	for _, tokens := range []int{0, 1, 100, 10_000, 1_000_000, 5_000_000} {
		cost := CostCents("gpt-4o", tokens, tokens)
		assert.GreaterOrEqual(t, cost, prev, "cost must not decrease with token count")
		prev = cost
	}
}

func TestCostCentsExact(t *testing.T) {
	// gpt-4o: 250 / 1000 美分每百万 Token
	// 1M prompt + 1M completion = 250 + 1000 = 1250 美分
	assert.Equal(t, int64(1250), CostCents("gpt-4o", 1_000_000, 1_000_000))
}

func TestRateForUnknownModelFallsBack(t *testing.T) {
	rate := RateFor("totally-unknown-model")
	assert.Equal(t, defaultRate, rate)
	// 兜底单价按保守高价计
	assert.Equal(t, CostCents("totally-unknown-model", 1000, 1000), CostCents("gpt-4o", 1000, 1000))
}
