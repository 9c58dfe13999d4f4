package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

func (r *productRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var product domain.Product
	err := r.db.QueryRowContext(queryCtx, `
		SELECT id, name, description, price, quantity, version, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(
		&product.ID, &product.Name, &product.Description, &product.Price,
		&product.Quantity, &product.Version, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}

	return product, nil
}

// Save выполняет insert-or-update по ID с optimistic locking: обновление
// проходит только при совпадении версии, иначе ErrProductVersionConflict.
func (r *productRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(queryCtx, nil)
	if err != nil {
		return domain.Product{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(queryCtx, `
		UPDATE products
		SET name = $1,
		    description = $2,
		    price = $3,
		    quantity = $4,
		    version = version + 1,
		    updated_at = $5
		WHERE id = $6
		  AND version = $7
	`,
		product.Name, product.Description, product.Price, product.Quantity,
		product.UpdatedAt, product.ID, product.Version,
	)
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Product{}, fmt.Errorf("rows affected: %w", err)
	}

	switch {
	case affected > 0:
		product.Version++
	default:
		exists, checkErr := r.productExistsTx(queryCtx, tx, product.ID)
		if checkErr != nil {
			err = checkErr
			return domain.Product{}, err
		}
		if exists {
			err = domain.ErrProductVersionConflict
			return domain.Product{}, err
		}

		if _, err = tx.ExecContext(queryCtx, `
			INSERT INTO products (
				id, name, description, price, quantity, version, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			product.ID, product.Name, product.Description, product.Price,
			product.Quantity, product.Version, product.CreatedAt, product.UpdatedAt,
		); err != nil {
			if isUniqueViolation(err) {
				err = domain.ErrProductVersionConflict
				return domain.Product{}, err
			}
			return domain.Product{}, fmt.Errorf("insert product: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return domain.Product{}, fmt.Errorf("commit save product: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindAll(ctx context.Context, page, size int) (domain.ProductPage, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}

	var total int64
	if err := r.db.QueryRowContext(queryCtx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return domain.ProductPage{}, fmt.Errorf("count products: %w", err)
	}

	rows, err := r.db.QueryContext(queryCtx, `
		SELECT id, name, description, price, quantity, version, created_at, updated_at
		FROM products
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`, size, page*size)
	if err != nil {
		return domain.ProductPage{}, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	items, err := scanProducts(rows)
	if err != nil {
		return domain.ProductPage{}, err
	}

	totalPages := int((total + int64(size) - 1) / int64(size))

	return domain.ProductPage{
		Items:      items,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

func (r *productRepository) FindAvailable(ctx context.Context, page, size, minQty int) ([]domain.Product, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}

	rows, err := r.db.QueryContext(queryCtx, `
		SELECT id, name, description, price, quantity, version, created_at, updated_at
		FROM products
		WHERE quantity > $1
		ORDER BY id ASC
		LIMIT $2 OFFSET $3
	`, minQty, size, page*size)
	if err != nil {
		return nil, fmt.Errorf("list available products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Description, &product.Price,
			&product.Quantity, &product.Version, &product.CreatedAt, &product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

func (r *productRepository) productExistsTx(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var found string
	err := tx.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1`, id).Scan(&found)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check product exists: %w", err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

const defaultPageSize = 20

var _ domain.ProductRepository = (*productRepository)(nil)
