// Package entity 定义领域实体
package entity

import "time"

// UsageRecord LLM 使用计量流水，只追加，不更新不删除
type UsageRecord struct {
	ID               string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID           string    `json:"user_id" gorm:"type:varchar(64);index"`
	Provider         string    `json:"provider" gorm:"type:varchar(32);not null"`
	Model            string    `json:"model" gorm:"type:varchar(64);not null"`
	TaskType         string    `json:"task_type" gorm:"type:varchar(32);not null"`
	TokensPrompt     int       `json:"tokens_prompt" gorm:"not null;default:0"`
	TokensCompletion int       `json:"tokens_completion" gorm:"not null;default:0"`
	CostCents        int64     `json:"cost_cents" gorm:"not null;default:0"`
	CacheHit         bool      `json:"cache_hit" gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

func (UsageRecord) TableName() string {
	return "usage_records"
}
