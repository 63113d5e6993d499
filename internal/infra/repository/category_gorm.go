package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

// DI
func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

// 全カテゴリを名前昇順で返す。
// includeProductCount=trueのときだけ、関連する商品のdistinct件数を集計して載せる。
func (r *CategoryGormRepository) List(ctx context.Context, includeProductCount bool) ([]repo.CategoryWithCount, error) {
	if !includeProductCount {
		var categories []model.Category
		if err := r.db.WithContext(ctx).Order("name asc").Find(&categories).Error; err != nil {
			return nil, err
		}
		rows := make([]repo.CategoryWithCount, 0, len(categories))
		for _, c := range categories {
			rows = append(rows, repo.CategoryWithCount{Category: c})
		}
		return rows, nil
	}

	rows := []repo.CategoryWithCount{}
	err := r.db.WithContext(ctx).
		Model(&model.Category{}).
		Select("categories.*, count(DISTINCT pc.product_id) AS product_count").
		Joins("LEFT JOIN product_categories pc ON pc.category_id = categories.id").
		Group("categories.id").
		Order("categories.name asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// IDでカテゴリを取得
func (r *CategoryGormRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// カテゴリの作成。名前重複はErrConflict。
func (r *CategoryGormRepository) Create(ctx context.Context, c model.Category) (model.Category, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Category{}, translateError(err)
	}
	return c, nil
}

// カテゴリの更新（updated_atはGORMが更新する）
func (r *CategoryGormRepository) Update(ctx context.Context, c model.Category) error {
	res := r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"name":        c.Name,
		"description": c.Description,
	})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// カテゴリ削除（物理削除）
func (r *CategoryGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// idsのうち実在する件数
func (r *CategoryGormRepository) CountByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Category{}).
		Where("id IN ?", ids).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}

// カテゴリに属する商品をid昇順で返す
func (r *CategoryGormRepository) ListProducts(ctx context.Context, categoryID int64) ([]model.Product, error) {
	products := []model.Product{}
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Joins("INNER JOIN product_categories pc ON pc.product_id = products.id").
		Where("pc.category_id = ?", categoryID).
		Order("products.id asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// このカテゴリを参照する関連行を全部消す
func (r *CategoryGormRepository) ClearAssociations(ctx context.Context, categoryID int64) error {
	return r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Delete(&model.ProductCategory{}).Error
}
