package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewTestClient(t *testing.T) *TestClient {
	t.Helper()

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		t.Skip("BASE_URL not set")
	}

	return &TestClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type CategoryBrief struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	SKU         *string         `json:"sku"`
	Categories  []CategoryBrief `json:"categories"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

type ProductList struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

type Category struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	ProductCount *int64  `json:"product_count"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type CategoryList struct {
	Categories []Category `json:"categories"`
}

func (c *TestClient) doJSON(
	ctx context.Context,
	t *testing.T,
	method string,
	path string,
	body interface{},
) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal failed: %v", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("HTTP.Do failed: %v", err)
	}

	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	return resp, data
}

func requireStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status=%d want=%d body=%s", resp.StatusCode, want, string(body))
	}
}

func mustDecodeProduct(t *testing.T, body []byte) Product {
	t.Helper()
	var v Product
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(Product) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeProductList(t *testing.T, body []byte) ProductList {
	t.Helper()
	var v ProductList
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(ProductList) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeProducts(t *testing.T, body []byte) []Product {
	t.Helper()
	var v []Product
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal([]Product) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeCategory(t *testing.T, body []byte) Category {
	t.Helper()
	var v Category
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(Category) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeCategoryList(t *testing.T, body []byte) CategoryList {
	t.Helper()
	var v CategoryList
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(CategoryList) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeError(t *testing.T, body []byte) ErrorResponse {
	t.Helper()
	var v ErrorResponse
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(ErrorResponse) failed: %v body=%s", err, string(body))
	}
	return v
}

// 後始末付きでカテゴリを作る
func createCategory(t *testing.T, c *TestClient, ctx context.Context, name string) Category {
	t.Helper()

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/categories", map[string]interface{}{"name": name})
	requireStatus(t, resp, http.StatusCreated, body)
	cat := mustDecodeCategory(t, body)

	t.Cleanup(func() {
		resp, _ := c.doJSON(context.Background(), t, http.MethodDelete, "/categories/"+toStr(cat.ID), nil)
		_ = resp
	})
	return cat
}

// 後始末付きで商品を作る
func createProduct(t *testing.T, c *TestClient, ctx context.Context, name string, price string, categoryIDs []int64) Product {
	t.Helper()

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/products", map[string]interface{}{
		"name":         name,
		"price":        price,
		"category_ids": categoryIDs,
	})
	requireStatus(t, resp, http.StatusCreated, body)
	p := mustDecodeProduct(t, body)

	t.Cleanup(func() {
		resp, _ := c.doJSON(context.Background(), t, http.MethodDelete, "/products/"+toStr(p.ID), nil)
		_ = resp
	})
	return p
}

func toStr(v int64) string {
	return strconv.FormatInt(v, 10)
}
