package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type CategoryUsecase struct {
	categoryRepo repo.CategoryRepository
	productRepo  repo.ProductRepository
	tx           repo.TransactionManager
}

// DI
func NewCategoryUsecase(
	categoryRepo repo.CategoryRepository,
	productRepo repo.ProductRepository,
	tx repo.TransactionManager,
) *CategoryUsecase {
	return &CategoryUsecase{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		tx:           tx,
	}
}

// POST /categoriesの入力DTO
type CreateCategoryInput struct {
	Name        string
	Description *string
}

// PUT /categories/:idの入力DTO。nilのフィールドは変更しない。
type UpdateCategoryInput struct {
	Name        *string
	Description *string
}

type CategoryOutput struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CategoryListOutput struct {
	Categories []repo.CategoryWithCount `json:"categories"`
}

func toCategoryOutput(c model.Category) CategoryOutput {
	return CategoryOutput{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func validateCategoryName(name string) error {
	if len(name) < 1 || len(name) > 100 {
		return NewHTTPError(http.StatusBadRequest, "name must be 1-100 characters")
	}
	return nil
}

// カテゴリ作成。名前の重複はDBのunique制約で検出する。
// 同名の同時作成でも成功するのは必ず1件だけ。
func (u *CategoryUsecase) Create(ctx context.Context, in CreateCategoryInput) (CategoryOutput, error) {
	if err := validateCategoryName(in.Name); err != nil {
		return CategoryOutput{}, err
	}

	c, err := u.categoryRepo.Create(ctx, model.Category{
		Name:        in.Name,
		Description: in.Description,
	})
	if errors.Is(err, repo.ErrConflict) {
		return CategoryOutput{}, NewHTTPError(http.StatusConflict, "category name already exists")
	}
	if err != nil {
		return CategoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toCategoryOutput(c), nil
}

// カテゴリ詳細
func (u *CategoryUsecase) Get(ctx context.Context, categoryID int64) (CategoryOutput, error) {
	if categoryID <= 0 {
		return CategoryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid category id")
	}

	c, err := u.categoryRepo.FindByID(ctx, categoryID)
	if errors.Is(err, repo.ErrNotFound) {
		return CategoryOutput{}, NewHTTPError(http.StatusNotFound, "category not found")
	}
	if err != nil {
		return CategoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toCategoryOutput(c), nil
}

// カテゴリ一覧（名前昇順）。
// includeProductCount=trueのときだけ各カテゴリの商品数が入る。
func (u *CategoryUsecase) List(ctx context.Context, includeProductCount bool) (CategoryListOutput, error) {
	rows, err := u.categoryRepo.List(ctx, includeProductCount)
	if err != nil {
		return CategoryListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return CategoryListOutput{Categories: rows}, nil
}

// カテゴリ更新。渡されたフィールドだけ上書き。
// 名前変更が他カテゴリと衝突したら409。
func (u *CategoryUsecase) Update(ctx context.Context, categoryID int64, in UpdateCategoryInput) (CategoryOutput, error) {
	if categoryID <= 0 {
		return CategoryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid category id")
	}
	if in.Name != nil {
		if err := validateCategoryName(*in.Name); err != nil {
			return CategoryOutput{}, err
		}
	}

	c, err := u.categoryRepo.FindByID(ctx, categoryID)
	if errors.Is(err, repo.ErrNotFound) {
		return CategoryOutput{}, NewHTTPError(http.StatusNotFound, "category not found")
	}
	if err != nil {
		return CategoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = in.Description
	}

	err = u.categoryRepo.Update(ctx, c)
	if errors.Is(err, repo.ErrConflict) {
		return CategoryOutput{}, NewHTTPError(http.StatusConflict, "category name already exists")
	}
	if errors.Is(err, repo.ErrNotFound) {
		return CategoryOutput{}, NewHTTPError(http.StatusNotFound, "category not found")
	}
	if err != nil {
		return CategoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//updated_at込みで取り直す
	fresh, err := u.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return CategoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toCategoryOutput(fresh), nil
}

// カテゴリ削除。関連行→カテゴリ行の順で同一トランザクション内で消す。
// 属していた商品自体は消えない。
func (u *CategoryUsecase) Delete(ctx context.Context, categoryID int64) error {
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid category id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Categories().FindByID(ctx, categoryID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "category not found")
			}
			return err
		}

		if err := r.Categories().ClearAssociations(ctx, categoryID); err != nil {
			return err
		}
		return r.Categories().Delete(ctx, categoryID)
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return err
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

// カテゴリに属する商品の一覧。カテゴリが無ければ404（空一覧と区別する）。
// 各商品には自分の全カテゴリbriefが付く（このカテゴリだけではない）。
func (u *CategoryUsecase) ListProducts(ctx context.Context, categoryID int64) ([]ProductOutput, error) {
	if categoryID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid category id")
	}

	//親の存在チェックを先にやる
	if _, err := u.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "category not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.categoryRepo.ListProducts(ctx, categoryID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	products := make([]ProductOutput, 0, len(items))
	for _, p := range items {
		briefs, err := u.productRepo.CategoryBriefs(ctx, p.ID)
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		products = append(products, toProductOutput(p, briefs))
	}

	return products, nil
}
