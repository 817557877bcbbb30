package services_test

import (
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"

	"agrimarket/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, db *sqlx.DB, id, name, role string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users(id,email,name,password_hash,role) VALUES(?,?,?,'x',?)`,
		id, id+"@test.local", name, role)
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func seedProduct(t *testing.T, db *sqlx.DB, id, farmerID, title, category string, price float64, status, createdAt string) {
	t.Helper()
	_, err := db.Exec(`
	  INSERT INTO products(id,farmer_id,title,category,price,quantity,unit,status,created_at)
	  VALUES(?,?,?,?,?,10,'kg',?,?)`,
		id, farmerID, title, category, price, status, createdAt)
	if err != nil {
		t.Fatalf("seed product %s: %v", id, err)
	}
}

func seedOrder(t *testing.T, db *sqlx.DB, id, productID, buyerID string, total float64, status, createdAt string) {
	t.Helper()
	_, err := db.Exec(`
	  INSERT INTO orders(id,product_id,buyer_id,quantity,total_price,status,created_at)
	  VALUES(?,?,?,1,?,?,?)`,
		id, productID, buyerID, total, status, createdAt)
	if err != nil {
		t.Fatalf("seed order %s: %v", id, err)
	}
}

func seedImage(t *testing.T, db *sqlx.DB, id, productID, url string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO product_images(id,product_id,url) VALUES(?,?,?)`, id, productID, url)
	if err != nil {
		t.Fatalf("seed image %s: %v", id, err)
	}
}

// countingStore records every Put/Remove so tests can assert the
// all-or-nothing upload contract without touching disk.
type countingStore struct {
	puts    []string
	removes []string
	failPut bool
}

func (s *countingStore) Put(key string, data []byte) (string, error) {
	if s.failPut {
		return "", fmt.Errorf("store down")
	}
	s.puts = append(s.puts, key)
	return "mem://" + key, nil
}

func (s *countingStore) Remove(key string) error {
	s.removes = append(s.removes, key)
	return nil
}
