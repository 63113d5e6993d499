package repository

import (
	"app/internal/domain/model"
	"context"
)

// 一覧用の集計行。product_countは include_product_count=true のときだけ入る。
type CategoryWithCount struct {
	model.Category `gorm:"embedded"`
	ProductCount   *int64 `json:"product_count,omitempty"`
}

// カテゴリの永続化だけを約束。
type CategoryRepository interface {
	List(ctx context.Context, includeProductCount bool) ([]CategoryWithCount, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)

	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, id int64) error

	// idsのうち実在する件数（商品作成時の存在チェックに使う）
	CountByIDs(ctx context.Context, ids []int64) (int64, error)

	// カテゴリに属する商品の一覧
	ListProducts(ctx context.Context, categoryID int64) ([]model.Product, error)

	// このカテゴリを参照する関連行を全て消す
	ClearAssociations(ctx context.Context, categoryID int64) error
}
