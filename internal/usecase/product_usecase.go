package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	tx           repo.TransactionManager
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
	tx repo.TransactionManager,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		tx:           tx,
	}
}

// POST /productsの入力DTO
type CreateProductInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	SKU         *string
	CategoryIDs []int64
}

// PUT /products/:idの入力DTO。nilのフィールドは変更しない。
// CategoryIDsが非nilなら関連集合を丸ごと置き換える。
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	SKU         *string
	CategoryIDs *[]int64
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page       int
	PageSize   int
	CategoryID *int64
}

type ProductOutput struct {
	ID          int64                 `json:"id"`
	Name        string                `json:"name"`
	Description *string               `json:"description"`
	Price       decimal.Decimal       `json:"price"`
	SKU         *string               `json:"sku"`
	Categories  []model.CategoryBrief `json:"categories"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

type ProductListOutput struct {
	Products []ProductOutput `json:"products"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

func toProductOutput(p model.Product, briefs []model.CategoryBrief) ProductOutput {
	return ProductOutput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		SKU:         p.SKU,
		Categories:  briefs,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func validateProductName(name string) error {
	if len(name) < 1 || len(name) > 255 {
		return NewHTTPError(http.StatusBadRequest, "name must be 1-255 characters")
	}
	return nil
}

func validateSKU(sku *string) error {
	if sku != nil && len(*sku) > 50 {
		return NewHTTPError(http.StatusBadRequest, "sku must be at most 50 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	// ゼロは不可（正の値のみ）
	if price.Sign() <= 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be greater than 0")
	}
	return nil
}

// 順序を保ったまま重複idを落とす
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// 商品作成。商品行と関連行を1トランザクションで入れる。
// category_idsは必須（最低1件）で、1つでも実在しなければ何も残さない。
func (u *ProductUsecase) Create(ctx context.Context, in CreateProductInput) (ProductOutput, error) {
	if err := validateProductName(in.Name); err != nil {
		return ProductOutput{}, err
	}
	if err := validatePrice(in.Price); err != nil {
		return ProductOutput{}, err
	}
	if err := validateSKU(in.SKU); err != nil {
		return ProductOutput{}, err
	}
	if len(in.CategoryIDs) == 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "at least one category id must be provided")
	}

	categoryIDs := dedupeIDs(in.CategoryIDs)

	var out ProductOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//全category_idの存在チェック
		n, err := r.Categories().CountByIDs(ctx, categoryIDs)
		if err != nil {
			return err
		}
		if n != int64(len(categoryIDs)) {
			return NewHTTPError(http.StatusBadRequest, "one or more category ids do not exist")
		}

		p, err := r.Products().Create(ctx, model.Product{
			Name:        in.Name,
			Description: in.Description,
			Price:       in.Price,
			SKU:         in.SKU,
		})
		if errors.Is(err, repo.ErrConflict) {
			return NewHTTPError(http.StatusConflict, "sku already exists")
		}
		if err != nil {
			return err
		}

		if err := r.Products().AddCategories(ctx, p.ID, categoryIDs); err != nil {
			return err
		}

		briefs, err := r.Products().CategoryBriefs(ctx, p.ID)
		if err != nil {
			return err
		}

		out = toProductOutput(p, briefs)
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return ProductOutput{}, err
		}
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return out, nil
}

// 商品詳細（カテゴリbrief付き）
func (u *ProductUsecase) Get(ctx context.Context, productID int64) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	briefs, err := u.productRepo.CategoryBriefs(ctx, productID)
	if err != nil {
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toProductOutput(p, briefs), nil
}

// 商品一覧。pageは1始まり（下限1）、page_sizeは1〜100に丸める。
// totalはページ適用前の該当件数。
func (u *ProductUsecase) List(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	pageSize := in.PageSize
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: in.CategoryID,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	products := make([]ProductOutput, 0, len(items))
	for _, p := range items {
		briefs, err := u.productRepo.CategoryBriefs(ctx, p.ID)
		if err != nil {
			return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		products = append(products, toProductOutput(p, briefs))
	}

	return ProductListOutput{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// 商品更新。渡されたフィールドだけ上書き。
// CategoryIDsが来たら関連集合を同一トランザクション内で全置換する。
func (u *ProductUsecase) Update(ctx context.Context, productID int64, in UpdateProductInput) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if in.Name != nil {
		if err := validateProductName(*in.Name); err != nil {
			return ProductOutput{}, err
		}
	}
	if in.Price != nil {
		if err := validatePrice(*in.Price); err != nil {
			return ProductOutput{}, err
		}
	}
	if err := validateSKU(in.SKU); err != nil {
		return ProductOutput{}, err
	}

	var categoryIDs []int64
	if in.CategoryIDs != nil {
		categoryIDs = dedupeIDs(*in.CategoryIDs)
		if len(categoryIDs) == 0 {
			return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "at least one category id must be provided")
		}
	}

	var out ProductOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return err
		}

		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.Description != nil {
			p.Description = in.Description
		}
		if in.Price != nil {
			p.Price = *in.Price
		}
		if in.SKU != nil {
			p.SKU = in.SKU
		}

		err = r.Products().Update(ctx, p)
		if errors.Is(err, repo.ErrConflict) {
			return NewHTTPError(http.StatusConflict, "sku already exists")
		}
		if err != nil {
			return err
		}

		if in.CategoryIDs != nil {
			n, err := r.Categories().CountByIDs(ctx, categoryIDs)
			if err != nil {
				return err
			}
			if n != int64(len(categoryIDs)) {
				return NewHTTPError(http.StatusBadRequest, "one or more category ids do not exist")
			}
			if err := r.Products().ReplaceCategories(ctx, productID, categoryIDs); err != nil {
				return err
			}
		}

		//updated_at込みで取り直す
		fresh, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		briefs, err := r.Products().CategoryBriefs(ctx, productID)
		if err != nil {
			return err
		}

		out = toProductOutput(fresh, briefs)
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return ProductOutput{}, err
		}
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return out, nil
}

// 商品削除。関連行→商品行の順で同一トランザクション内で消す。
func (u *ProductUsecase) Delete(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Products().FindByID(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "product not found")
			}
			return err
		}

		// FKのcascadeにも守られているが、消す対象は明示する
		if err := r.Products().ClearCategories(ctx, productID); err != nil {
			return err
		}
		return r.Products().Delete(ctx, productID)
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return err
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}
