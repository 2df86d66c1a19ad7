package catalogrepo

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/go-retail-ledger/core"
	"github.com/sksmith/go-retail-ledger/core/catalog"
	"github.com/sksmith/go-retail-ledger/db"
)

type dbRepo struct {
	conn core.Conn
	c    *lru.Cache
}

func NewPostgresRepo(conn core.Conn) catalog.Repository {
	l, err := lru.New(1024)
	if err != nil {
		log.Warn().Err(err).Msg("unable to configure barcode cache")
	}
	return &dbRepo{
		conn: conn,
		c:    l,
	}
}

const productCols = `id, name, description, barcode, price, is_unique, quantity, status, created_at, updated_at`

// searchProductsQuery backs the scan fallback: a smudged or mistyped code has
// to be matchable against the name, the description, and the barcode itself.
const searchProductsQuery = `SELECT ` + productCols + ` FROM products
          WHERE name ILIKE '%' || $1 || '%'
             OR description ILIKE '%' || $1 || '%'
             OR barcode ILIKE '%' || $1 || '%'
          ORDER BY name LIMIT $2 `

func scanProduct(row pgx.Row) (catalog.Product, error) {
	p := catalog.Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Barcode, &p.Price,
		&p.IsUnique, &p.Quantity, &p.Status, &p.Created, &p.Updated)
	return p, err
}

func (d *dbRepo) GetProduct(ctx context.Context, id uint64, options ...core.QueryOptions) (catalog.Product, error) {
	m := db.StartMetric("GetProduct")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	p, err := scanProduct(tx.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE id = $1 `+forUpdate, id))
	if err != nil {
		m.Complete(err)
		if err == pgx.ErrNoRows {
			return p, errors.WithStack(core.ErrNotFound)
		}
		return p, errors.WithStack(err)
	}

	m.Complete(nil)
	return p, nil
}

func (d *dbRepo) GetProductByBarcode(ctx context.Context, barcode string, options ...core.QueryOptions) (catalog.Product, error) {
	m := db.StartMetric("GetProductByBarcode")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	// Lock-free lookups may serve the cached id; the row itself is always
	// reread so quantity and status stay fresh.
	if forUpdate == "" {
		if id, ok := d.getcache(barcode); ok {
			return d.GetProduct(ctx, id, options...)
		}
	}

	p, err := scanProduct(tx.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE barcode = $1 `+forUpdate, barcode))
	if err != nil {
		m.Complete(err)
		if err == pgx.ErrNoRows {
			return p, errors.WithStack(core.ErrNotFound)
		}
		return p, errors.WithStack(err)
	}

	d.cache(p)
	m.Complete(nil)
	return p, nil
}

func (d *dbRepo) GetProducts(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]catalog.Product, error) {
	m := db.StartMetric("GetProducts")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	products := make([]catalog.Product, 0)
	rows, err := tx.Query(ctx,
		`SELECT `+productCols+` FROM products ORDER BY id LIMIT $1 OFFSET $2 `+forUpdate,
		limit, offset)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		products = append(products, p)
	}

	m.Complete(nil)
	return products, nil
}

func (d *dbRepo) SearchProducts(ctx context.Context, term string, limit int, options ...core.QueryOptions) ([]catalog.Product, error) {
	m := db.StartMetric("SearchProducts")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	products := make([]catalog.Product, 0)
	rows, err := tx.Query(ctx, searchProductsQuery+forUpdate, term, limit)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		products = append(products, p)
	}

	m.Complete(nil)
	return products, nil
}

func (d *dbRepo) SaveProduct(ctx context.Context, product *catalog.Product, options ...core.UpdateOptions) error {
	m := db.StartMetric("SaveProduct")
	tx := db.GetUpdateOptions(d.conn, options...)

	if product.ID == 0 {
		err := tx.QueryRow(ctx, `
			INSERT INTO products (name, description, barcode, price, is_unique, quantity, status, created_at, updated_at)
			              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id;`,
			product.Name, product.Description, product.Barcode, product.Price,
			product.IsUnique, product.Quantity, product.Status, product.Created, product.Updated).
			Scan(&product.ID)
		if err != nil {
			m.Complete(err)
			return errors.WithStack(err)
		}
	} else {
		_, err := tx.Exec(ctx, `
			UPDATE products
			   SET name = $2, description = $3, barcode = $4, price = $5,
			       is_unique = $6, quantity = $7, status = $8, updated_at = $9
			 WHERE id = $1;`,
			product.ID, product.Name, product.Description, product.Barcode, product.Price,
			product.IsUnique, product.Quantity, product.Status, product.Updated)
		if err != nil {
			m.Complete(err)
			return errors.WithStack(err)
		}
	}

	d.cache(*product)
	m.Complete(nil)
	return nil
}

func (d *dbRepo) BeginTransaction(ctx context.Context) (core.Transaction, error) {
	tx, err := d.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (d *dbRepo) cache(p catalog.Product) {
	if d.c == nil || p.Barcode == "" {
		return
	}
	d.c.Add(p.Barcode, p.ID)
}

func (d *dbRepo) getcache(barcode string) (uint64, bool) {
	if d.c == nil {
		return 0, false
	}

	v, ok := d.c.Get(barcode)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
