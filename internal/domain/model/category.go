package model

import "time"

// カテゴリ。nameは全体でユニーク。
type Category struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 商品レスポンスに埋め込む最小表現（id + name）。
type CategoryBrief struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
