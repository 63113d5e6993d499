package model

import "time"

// 商品とカテゴリの多対多の関連行。
// (product_id, category_id) の複合主キーで、同じ組み合わせは1行だけ。
// 親が消えたら関連行もDB側で消える（ON DELETE CASCADE）。
type ProductCategory struct {
	ProductID  int64     `gorm:"primaryKey" json:"product_id"`
	CategoryID int64     `gorm:"primaryKey" json:"category_id"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`

	Product  Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Category Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ProductCategory) TableName() string {
	return "product_categories"
}
