package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // SQLite driver registration.

	"price_bot/internal/model"
	"price_bot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// AddProduct inserts a new tracked product and populates its CreatedAt.
// The (user_id, title) primary key makes concurrent adds of the same key
// collapse to a single row; the loser sees created == false.
func (s *SQLite) AddProduct(ctx context.Context, p *model.TrackedProduct) (bool, error) {
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO tracked_products (user_id, title, link, variant_key, price, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Title, p.Link, string(p.Variant), p.Price.String(), now,
	)
	if err != nil {
		return false, fmt.Errorf("insert product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	p.CreatedAt, _ = time.Parse(timeLayout, now)
	return true, nil
}

// GetProduct returns a single tracked product by its (user, title) key.
func (s *SQLite) GetProduct(ctx context.Context, userID int64, title string) (*model.TrackedProduct, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, title, link, variant_key, price, created_at
		 FROM tracked_products WHERE user_id = ? AND title = ?`,
		userID, title,
	)
	return scanProduct(row)
}

// ListProducts returns all products tracked by the given user.
func (s *SQLite) ListProducts(ctx context.Context, userID int64) ([]model.TrackedProduct, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, title, link, variant_key, price, created_at
		 FROM tracked_products WHERE user_id = ? ORDER BY title`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanProducts(rows)
}

// ListAllProducts returns every tracked product across all users.
func (s *SQLite) ListAllProducts(ctx context.Context) ([]model.TrackedProduct, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, title, link, variant_key, price, created_at
		 FROM tracked_products ORDER BY user_id, title`,
	)
	if err != nil {
		return nil, fmt.Errorf("query all products: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanProducts(rows)
}

// UpdatePrice stores a new baseline price for the given (user, title) key.
func (s *SQLite) UpdatePrice(ctx context.Context, userID int64, title string, price decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tracked_products SET price = ? WHERE user_id = ? AND title = ?`,
		price.String(), userID, title,
	)
	if err != nil {
		return fmt.Errorf("update price: %w", err)
	}
	return nil
}

// RemoveProduct deletes a tracked product.
func (s *SQLite) RemoveProduct(ctx context.Context, userID int64, title string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM tracked_products WHERE user_id = ? AND title = ?`,
		userID, title,
	)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanProduct(row scannable) (*model.TrackedProduct, error) {
	var p model.TrackedProduct
	var variant, priceStr string
	var created sql.NullString
	if err := row.Scan(&p.UserID, &p.Title, &p.Link, &variant, &priceStr, &created); err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	p.Variant = model.ParseVariantKey(variant)
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("parse stored price %q: %w", priceStr, err)
	}
	p.Price = price
	if created.Valid {
		p.CreatedAt, _ = time.Parse(timeLayout, created.String)
	}
	return &p, nil
}

func scanProducts(rows *sql.Rows) ([]model.TrackedProduct, error) {
	var products []model.TrackedProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}
