package stockrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/sksmith/go-retail-ledger/core"
	"github.com/sksmith/go-retail-ledger/core/catalog"
	"github.com/sksmith/go-retail-ledger/core/stock"
	"github.com/sksmith/go-retail-ledger/db"
)

type dbRepo struct {
	conn core.Conn
}

func NewPostgresRepo(conn core.Conn) stock.Repository {
	return &dbRepo{
		conn: conn,
	}
}

func (d *dbRepo) GetMovement(ctx context.Context, id uint64, options ...core.QueryOptions) (stock.StockMovement, error) {
	m := db.StartMetric("GetMovement")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	mv := stock.StockMovement{}
	err := tx.QueryRow(ctx,
		`SELECT id, type, product_id, quantity, reason, notes, created_at FROM stock_movements WHERE id = $1 `+forUpdate, id).
		Scan(&mv.ID, &mv.Type, &mv.ProductID, &mv.Quantity, &mv.Reason, &mv.Notes, &mv.Created)
	if err != nil {
		m.Complete(err)
		if err == pgx.ErrNoRows {
			return mv, errors.WithStack(core.ErrNotFound)
		}
		return mv, errors.WithStack(err)
	}

	m.Complete(nil)
	return mv, nil
}

func (d *dbRepo) GetMovements(ctx context.Context, productID uint64, limit, offset int, options ...core.QueryOptions) ([]stock.StockMovement, error) {
	m := db.StartMetric("GetMovements")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	params := []interface{}{limit, offset}
	whereClause := ""
	if productID != 0 {
		whereClause = " WHERE product_id = $3"
		params = append(params, productID)
	}

	movements := make([]stock.StockMovement, 0)
	rows, err := tx.Query(ctx,
		`SELECT id, type, product_id, quantity, reason, notes, created_at FROM stock_movements`+
			whereClause+` ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2 `+forUpdate,
		params...)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		mv := stock.StockMovement{}
		err = rows.Scan(&mv.ID, &mv.Type, &mv.ProductID, &mv.Quantity, &mv.Reason, &mv.Notes, &mv.Created)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		movements = append(movements, mv)
	}

	m.Complete(nil)
	return movements, nil
}

func (d *dbRepo) SaveMovement(ctx context.Context, movement *stock.StockMovement, options ...core.UpdateOptions) error {
	m := db.StartMetric("SaveMovement")
	tx := db.GetUpdateOptions(d.conn, options...)

	insert := `INSERT INTO stock_movements (type, product_id, quantity, reason, notes, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`

	err := tx.QueryRow(ctx, insert,
		movement.Type, movement.ProductID, movement.Quantity, movement.Reason, movement.Notes, movement.Created).
		Scan(&movement.ID)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	m.Complete(nil)
	return nil
}

func (d *dbRepo) UpdateMovement(ctx context.Context, movement *stock.StockMovement, options ...core.UpdateOptions) error {
	m := db.StartMetric("UpdateMovement")
	tx := db.GetUpdateOptions(d.conn, options...)

	update := `UPDATE stock_movements
	              SET type = $2, product_id = $3, quantity = $4, reason = $5, notes = $6
	            WHERE id = $1;`
	_, err := tx.Exec(ctx, update,
		movement.ID, movement.Type, movement.ProductID, movement.Quantity, movement.Reason, movement.Notes)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	m.Complete(nil)
	return nil
}

func (d *dbRepo) DeleteMovement(ctx context.Context, id uint64, options ...core.UpdateOptions) error {
	m := db.StartMetric("DeleteMovement")
	tx := db.GetUpdateOptions(d.conn, options...)

	ct, err := tx.Exec(ctx, `DELETE FROM stock_movements WHERE id = $1`, id)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	if ct.RowsAffected() == 0 {
		m.Complete(nil)
		return errors.WithStack(core.ErrNotFound)
	}
	m.Complete(nil)
	return nil
}

// Movement and order references are kept as nullable columns so the database
// can enforce them as foreign keys; zero values in Go map to NULL.
const unitCols = `id, product_id, code, status,
	COALESCE(entry_movement_id, 0), COALESCE(exit_movement_id, 0), COALESCE(order_id, 0), created_at`

func scanUnit(row pgx.Row) (stock.InventoryUnit, error) {
	u := stock.InventoryUnit{}
	err := row.Scan(&u.ID, &u.ProductID, &u.Code, &u.Status,
		&u.EntryMovementID, &u.ExitMovementID, &u.OrderID, &u.Created)
	return u, err
}

func (d *dbRepo) queryUnits(ctx context.Context, tx core.Conn, metric *db.Metric, query string, args ...interface{}) ([]stock.InventoryUnit, error) {
	units := make([]stock.InventoryUnit, 0)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		metric.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			metric.Complete(err)
			return nil, errors.WithStack(err)
		}
		units = append(units, u)
	}

	metric.Complete(nil)
	return units, nil
}

func (d *dbRepo) GetUnits(ctx context.Context, productID uint64, limit, offset int, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
	m := db.StartMetric("GetUnits")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	params := []interface{}{limit, offset}
	whereClause := ""
	if productID != 0 {
		whereClause = " WHERE product_id = $3"
		params = append(params, productID)
	}

	return d.queryUnits(ctx, tx, m,
		`SELECT `+unitCols+` FROM inventory_units`+whereClause+
			` ORDER BY id LIMIT $1 OFFSET $2 `+forUpdate,
		params...)
}

func (d *dbRepo) GetUnitsByIDs(ctx context.Context, ids []uint64, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
	m := db.StartMetric("GetUnitsByIDs")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	return d.queryUnits(ctx, tx, m,
		`SELECT `+unitCols+` FROM inventory_units WHERE id = ANY($1) ORDER BY id `+forUpdate,
		ids)
}

func (d *dbRepo) GetAvailableUnits(ctx context.Context, productID uint64, count int64, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
	m := db.StartMetric("GetAvailableUnits")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	return d.queryUnits(ctx, tx, m,
		`SELECT `+unitCols+` FROM inventory_units
		  WHERE product_id = $1 AND status IN ($2, $3)
		  ORDER BY created_at, id LIMIT $4 `+forUpdate,
		productID, stock.UnitPrinted, stock.UnitScanned, count)
}

func (d *dbRepo) GetUnitsByEntryMovement(ctx context.Context, movementID uint64, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
	m := db.StartMetric("GetUnitsByEntryMovement")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	return d.queryUnits(ctx, tx, m,
		`SELECT `+unitCols+` FROM inventory_units WHERE entry_movement_id = $1 ORDER BY id `+forUpdate,
		movementID)
}

func (d *dbRepo) GetUnitsByExitMovement(ctx context.Context, movementID uint64, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
	m := db.StartMetric("GetUnitsByExitMovement")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	return d.queryUnits(ctx, tx, m,
		`SELECT `+unitCols+` FROM inventory_units WHERE exit_movement_id = $1 ORDER BY id `+forUpdate,
		movementID)
}

func (d *dbRepo) GetUnitsByOrder(ctx context.Context, orderID, productID uint64, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
	m := db.StartMetric("GetUnitsByOrder")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	return d.queryUnits(ctx, tx, m,
		`SELECT `+unitCols+` FROM inventory_units WHERE order_id = $1 AND product_id = $2 ORDER BY id `+forUpdate,
		orderID, productID)
}

func (d *dbRepo) CreateUnits(ctx context.Context, units []stock.InventoryUnit, options ...core.UpdateOptions) error {
	m := db.StartMetric("CreateUnits")
	tx := db.GetUpdateOptions(d.conn, options...)

	values := make([]string, 0, len(units))
	params := make([]interface{}, 0, len(units)*5)
	for i, u := range units {
		n := i * 5
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, NULLIF($%d, 0), $%d)", n+1, n+2, n+3, n+4, n+5))
		params = append(params, u.ProductID, u.Code, u.Status, u.EntryMovementID, u.Created)
	}

	insert := `INSERT INTO inventory_units (product_id, code, status, entry_movement_id, created_at)
	                VALUES ` + strings.Join(values, ", ") + `;`

	_, err := tx.Exec(ctx, insert, params...)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	m.Complete(nil)
	return nil
}

func (d *dbRepo) MarkUnits(ctx context.Context, ids []uint64, status stock.UnitStatus, exitMovementID, orderID uint64, options ...core.UpdateOptions) error {
	m := db.StartMetric("MarkUnits")
	tx := db.GetUpdateOptions(d.conn, options...)

	update := `UPDATE inventory_units
	              SET status = $2, exit_movement_id = NULLIF($3, 0), order_id = NULLIF($4, 0)
	            WHERE id = ANY($1);`
	_, err := tx.Exec(ctx, update, ids, status, exitMovementID, orderID)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	m.Complete(nil)
	return nil
}

func (d *dbRepo) DeleteUnits(ctx context.Context, ids []uint64, options ...core.UpdateOptions) error {
	m := db.StartMetric("DeleteUnits")
	tx := db.GetUpdateOptions(d.conn, options...)

	_, err := tx.Exec(ctx, `DELETE FROM inventory_units WHERE id = ANY($1)`, ids)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	m.Complete(nil)
	return nil
}

func (d *dbRepo) GetProduct(ctx context.Context, id uint64, options ...core.QueryOptions) (catalog.Product, error) {
	m := db.StartMetric("GetStockProduct")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	p := catalog.Product{}
	err := tx.QueryRow(ctx,
		`SELECT id, name, description, barcode, price, is_unique, quantity, status, created_at, updated_at
		   FROM products WHERE id = $1 `+forUpdate, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Barcode, &p.Price,
			&p.IsUnique, &p.Quantity, &p.Status, &p.Created, &p.Updated)
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

func (d *dbRepo) SaveProduct(ctx context.Context, product *catalog.Product, options ...core.UpdateOptions) error {
	m := db.StartMetric("SaveStockProduct")
	tx := db.GetUpdateOptions(d.conn, options...)

	_, err := tx.Exec(ctx, `
		UPDATE products
		   SET quantity = $2, status = $3, updated_at = now()
		 WHERE id = $1;`,
		product.ID, product.Quantity, product.Status)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
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
