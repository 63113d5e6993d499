package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")

	// ユニーク制約違反（カテゴリ名・SKUの重複）
	ErrConflict = errors.New("conflict")
)

// 一覧検索
type ProductListQuery struct {
	Page       int
	PageSize   int
	CategoryID *int64
}

// 商品の永続化（保存・取得）とカテゴリ関連行の維持を約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id int64) error

	// 関連行（product_categories）の操作
	AddCategories(ctx context.Context, productID int64, categoryIDs []int64) error
	ReplaceCategories(ctx context.Context, productID int64, categoryIDs []int64) error
	ClearCategories(ctx context.Context, productID int64) error

	// カテゴリ名順の brief（id + name）
	CategoryBriefs(ctx context.Context, productID int64) ([]model.CategoryBrief, error)
}
