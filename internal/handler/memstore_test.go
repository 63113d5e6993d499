package handler_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// DBなしでhandler〜usecase〜repositoryの経路を通すためのインメモリ実装。
// unique制約の挙動だけ真似る。
type memStore struct {
	mu             sync.Mutex
	products       map[int64]model.Product
	categories     map[int64]model.Category
	assocs         map[[2]int64]time.Time // (productID, categoryID)
	nextProductID  int64
	nextCategoryID int64
}

func newMemStore() *memStore {
	return &memStore{
		products:   map[int64]model.Product{},
		categories: map[int64]model.Category{},
		assocs:     map[[2]int64]time.Time{},
	}
}

type memProductRepo struct{ s *memStore }
type memCategoryRepo struct{ s *memStore }

// TransactionManagerとTxReposを兼ねる（ロールバックは再現しない）
type memTx struct {
	products   *memProductRepo
	categories *memCategoryRepo
}

func newMemTx(s *memStore) *memTx {
	return &memTx{
		products:   &memProductRepo{s: s},
		categories: &memCategoryRepo{s: s},
	}
}

func (m *memTx) Products() repo.ProductRepository    { return m.products }
func (m *memTx) Categories() repo.CategoryRepository { return m.categories }

func (m *memTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m)
}

// =====================
// ProductRepository
// =====================

func (r *memProductRepo) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids := make([]int64, 0, len(r.s.products))
	for id := range r.s.products {
		if q.CategoryID != nil {
			if _, ok := r.s.assocs[[2]int64{id, *q.CategoryID}]; !ok {
				continue
			}
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := int64(len(ids))
	offset := (q.Page - 1) * q.PageSize
	if offset > len(ids) {
		offset = len(ids)
	}
	end := offset + q.PageSize
	if end > len(ids) {
		end = len(ids)
	}

	out := make([]model.Product, 0, end-offset)
	for _, id := range ids[offset:end] {
		out = append(out, r.s.products[id])
	}
	return out, total, nil
}

func (r *memProductRepo) FindByID(ctx context.Context, id int64) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.SKU != nil {
		for _, other := range r.s.products {
			if other.SKU != nil && *other.SKU == *p.SKU {
				return model.Product{}, repo.ErrConflict
			}
		}
	}

	r.s.nextProductID++
	p.ID = r.s.nextProductID
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.s.products[p.ID] = p
	return p, nil
}

func (r *memProductRepo) Update(ctx context.Context, p model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.products[p.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if p.SKU != nil {
		for id, other := range r.s.products {
			if id != p.ID && other.SKU != nil && *other.SKU == *p.SKU {
				return repo.ErrConflict
			}
		}
	}
	cur.Name = p.Name
	cur.Description = p.Description
	cur.Price = p.Price
	cur.SKU = p.SKU
	cur.UpdatedAt = time.Now()
	r.s.products[p.ID] = cur
	return nil
}

func (r *memProductRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r *memProductRepo) AddCategories(ctx context.Context, productID int64, categoryIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, cid := range categoryIDs {
		r.s.assocs[[2]int64{productID, cid}] = time.Now()
	}
	return nil
}

func (r *memProductRepo) ReplaceCategories(ctx context.Context, productID int64, categoryIDs []int64) error {
	if err := r.ClearCategories(ctx, productID); err != nil {
		return err
	}
	return r.AddCategories(ctx, productID, categoryIDs)
}

func (r *memProductRepo) ClearCategories(ctx context.Context, productID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for key := range r.s.assocs {
		if key[0] == productID {
			delete(r.s.assocs, key)
		}
	}
	return nil
}

func (r *memProductRepo) CategoryBriefs(ctx context.Context, productID int64) ([]model.CategoryBrief, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	briefs := []model.CategoryBrief{}
	for key := range r.s.assocs {
		if key[0] != productID {
			continue
		}
		if c, ok := r.s.categories[key[1]]; ok {
			briefs = append(briefs, model.CategoryBrief{ID: c.ID, Name: c.Name})
		}
	}
	sort.Slice(briefs, func(i, j int) bool { return briefs[i].Name < briefs[j].Name })
	return briefs, nil
}

// =====================
// CategoryRepository
// =====================

func (r *memCategoryRepo) List(ctx context.Context, includeProductCount bool) ([]repo.CategoryWithCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := make([]repo.CategoryWithCount, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		row := repo.CategoryWithCount{Category: c}
		if includeProductCount {
			n := int64(0)
			for key := range r.s.assocs {
				if key[1] == c.ID {
					n++
				}
			}
			row.ProductCount = &n
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

func (r *memCategoryRepo) FindByID(ctx context.Context, id int64) (model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return model.Category{}, repo.ErrNotFound
	}
	return c, nil
}

func (r *memCategoryRepo) Create(ctx context.Context, c model.Category) (model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.categories {
		if other.Name == c.Name {
			return model.Category{}, repo.ErrConflict
		}
	}

	r.s.nextCategoryID++
	c.ID = r.s.nextCategoryID
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.s.categories[c.ID] = c
	return c, nil
}

func (r *memCategoryRepo) Update(ctx context.Context, c model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.categories[c.ID]
	if !ok {
		return repo.ErrNotFound
	}
	for id, other := range r.s.categories {
		if id != c.ID && other.Name == c.Name {
			return repo.ErrConflict
		}
	}
	cur.Name = c.Name
	cur.Description = c.Description
	cur.UpdatedAt = time.Now()
	r.s.categories[c.ID] = cur
	return nil
}

func (r *memCategoryRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.categories, id)
	return nil
}

func (r *memCategoryRepo) CountByIDs(ctx context.Context, ids []int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, id := range ids {
		if _, ok := r.s.categories[id]; ok {
			n++
		}
	}
	return n, nil
}

func (r *memCategoryRepo) ListProducts(ctx context.Context, categoryID int64) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids := []int64{}
	for key := range r.s.assocs {
		if key[1] == categoryID {
			ids = append(ids, key[0])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memCategoryRepo) ClearAssociations(ctx context.Context, categoryID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for key := range r.s.assocs {
		if key[1] == categoryID {
			delete(r.s.assocs, key)
		}
	}
	return nil
}
