package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
)

func seedCatalog(t *testing.T, db *sqlx.DB) {
	t.Helper()
	stmts := []string{
		`INSERT INTO products(id,farmer_id,title,category,price,quantity,unit,status,created_at)
		 VALUES('p1','f1','Tomatoes','vegetables',4,10,'kg','AVAILABLE','2025-06-01 10:00:00')`,
		`INSERT INTO products(id,farmer_id,title,category,price,quantity,unit,status,created_at)
		 VALUES('p2','f1','Yams','tubers',9,10,'kg','SOLD','2025-06-02 10:00:00')`,
		`INSERT INTO product_images(id,product_id,url) VALUES('i1','p1','/media/f1/a.jpg')`,
		`INSERT INTO orders(id,product_id,buyer_id,quantity,total_price,status)
		 VALUES('o1','p1','b1',2,8,'DELIVERED')`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatal(err)
		}
	}
}

func TestProductListingScopes(t *testing.T) {
	app, db, tokens := newApp(t)
	seedCatalog(t, db)

	// market scope is public and hides non-available products
	resp, err := app.Test(httptest.NewRequest("GET", "/products", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if strings.Contains(string(body["products"]), `"p2"`) {
		t.Fatal("sold product leaked into the market listing")
	}
	if strings.Contains(string(body["products"]), `"orders"`) {
		t.Fatal("order history leaked into the market listing")
	}

	// farmer scope needs a farmer identity
	req := httptest.NewRequest("GET", "/products?scope=farmer", nil)
	req.AddCookie(sessionFor(t, tokens, "b1", "buyer"))
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("buyer in farmer scope: want 403, got %d", resp.StatusCode)
	}

	// a farmer sees every own product with recent orders attached
	req = httptest.NewRequest("GET", "/products?scope=farmer", nil)
	req.AddCookie(sessionFor(t, tokens, "f1", "farmer"))
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("farmer scope: want 200, got %d", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	products := string(body["products"])
	if !strings.Contains(products, `"p2"`) || !strings.Contains(products, `"o1"`) {
		t.Fatalf("farmer scope missing own products or orders: %s", products)
	}
}

// Product detail is public and includes farmer contact and buyer names.
func TestProductDetail(t *testing.T) {
	app, db, _ := newApp(t)
	seedCatalog(t, db)

	resp, err := app.Test(httptest.NewRequest("GET", "/products/p1", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	product := string(body["product"])
	for _, needle := range []string{`"Tomatoes"`, `"f1@test.local"`, `"/media/f1/a.jpg"`, `"o1"`} {
		if !strings.Contains(product, needle) {
			t.Fatalf("detail missing %s: %s", needle, product)
		}
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/products/ghost", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown product: want 404, got %d", resp.StatusCode)
	}
}

// A broken orders table degrades the detail view instead of failing it.
func TestProductDetailSurvivesOrderFailure(t *testing.T) {
	app, db, _ := newApp(t)
	seedCatalog(t, db)
	if _, err := db.Exec(`DROP TABLE orders`); err != nil {
		t.Fatal(err)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/products/p1", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200 despite enrichment failure, got %d", resp.StatusCode)
	}
	var product struct {
		ID     string            `json:"id"`
		Orders []json.RawMessage `json:"orders"`
	}
	raw := decodeBody(t, resp)
	if err := json.Unmarshal(raw["product"], &product); err != nil {
		t.Fatal(err)
	}
	if product.ID != "p1" || len(product.Orders) != 0 {
		t.Fatalf("want p1 with empty orders, got %+v", product)
	}
}

func TestCreateProductJSON(t *testing.T) {
	app, db, tokens := newApp(t)
	farmer := sessionFor(t, tokens, "f1", "farmer")

	// price as JSON number, quantity as string: both accepted
	req := cloneJSON(t, "POST", "/products",
		`{"title":"Okra","category":"vegetables","unit":"kg","price":3.25,"quantity":"15","images":["https://cdn.test/okra.jpg"]}`)
	req.AddCookie(farmer)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if !strings.Contains(string(body["product"]), `"Okra"`) {
		t.Fatalf("created product missing from response: %s", body["product"])
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM product_images WHERE url='https://cdn.test/okra.jpg'`); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("hosted image url not stored, count=%d", n)
	}

	// invalid numerics -> 400
	req = cloneJSON(t, "POST", "/products",
		`{"title":"Bad","category":"vegetables","unit":"kg","price":0,"quantity":5}`)
	req.AddCookie(farmer)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("zero price: want 400, got %d", resp.StatusCode)
	}
}

func TestCreateProductMultipart(t *testing.T) {
	app, db, tokens := newApp(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"title": "Pepper", "category": "vegetables", "unit": "kg",
		"price": "2.5", "quantity": "30",
	} {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"one.png", "two.jpg"} {
		fw, err := w.CreateFormFile("images", name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte("fake image bytes")); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", "/products", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(sessionFor(t, tokens, "f1", "farmer"))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201, got %d", resp.StatusCode)
	}
	var n int
	if err := db.Get(&n, `
	  SELECT COUNT(*) FROM product_images i
	  JOIN products p ON p.id = i.product_id
	  WHERE p.title = 'Pepper'`); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("want 2 stored images, got %d", n)
	}
}
