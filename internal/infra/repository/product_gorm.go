package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 商品をid昇順・ページング付きで返す。totalはページ適用前の件数。
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	// カテゴリ絞り込み（関連行をJOIN）
	if q.CategoryID != nil {
		tx = tx.
			Joins("INNER JOIN product_categories pc ON pc.product_id = products.id").
			Where("pc.category_id = ?", *q.CategoryID)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	offset := (q.Page - 1) * q.PageSize
	if err := tx.Order("products.id asc").Offset(offset).Limit(q.PageSize).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, translateError(err)
	}
	return p, nil
}

// 商品の更新（updated_atはGORMが更新する）
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"sku":         p.SKU,
	})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除（物理削除）
func (r *ProductGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 関連行を追加。存在しないcategory_idはFK違反で失敗する。
func (r *ProductGormRepository) AddCategories(ctx context.Context, productID int64, categoryIDs []int64) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	rows := make([]model.ProductCategory, 0, len(categoryIDs))
	for _, cid := range categoryIDs {
		rows = append(rows, model.ProductCategory{ProductID: productID, CategoryID: cid})
	}

	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&rows).Error
	return translateError(err)
}

// 既存の関連行を全部消してから新しい集合で入れ直す。
func (r *ProductGormRepository) ReplaceCategories(ctx context.Context, productID int64, categoryIDs []int64) error {
	if err := r.ClearCategories(ctx, productID); err != nil {
		return err
	}
	return r.AddCategories(ctx, productID, categoryIDs)
}

// この商品を参照する関連行を全部消す
func (r *ProductGormRepository) ClearCategories(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&model.ProductCategory{}).Error
}

// 商品が属するカテゴリ（id + name）をカテゴリ名順で返す
func (r *ProductGormRepository) CategoryBriefs(ctx context.Context, productID int64) ([]model.CategoryBrief, error) {
	briefs := []model.CategoryBrief{}
	err := r.db.WithContext(ctx).
		Table("categories").
		Select("categories.id, categories.name").
		Joins("INNER JOIN product_categories pc ON pc.category_id = categories.id").
		Where("pc.product_id = ?", productID).
		Order("categories.name asc").
		Scan(&briefs).Error
	if err != nil {
		return nil, err
	}
	return briefs, nil
}
