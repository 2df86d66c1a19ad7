package orderrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/sksmith/go-retail-ledger/core"
	"github.com/sksmith/go-retail-ledger/core/order"
	"github.com/sksmith/go-retail-ledger/db"
)

type dbRepo struct {
	conn core.Conn
}

func NewPostgresRepo(conn core.Conn) order.Repository {
	return &dbRepo{
		conn: conn,
	}
}

const orderCols = `id, customer, invoice_number, discount, tax_percent, total_amount, status, created_at`

func scanOrder(row pgx.Row) (order.Order, error) {
	o := order.Order{}
	err := row.Scan(&o.ID, &o.Customer, &o.InvoiceNumber, &o.Discount,
		&o.TaxPercent, &o.TotalAmount, &o.Status, &o.Created)
	return o, err
}

func (d *dbRepo) GetOrder(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error) {
	m := db.StartMetric("GetOrder")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	o, err := scanOrder(tx.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id = $1 `+forUpdate, id))
	if err != nil {
		m.Complete(err)
		if err == pgx.ErrNoRows {
			return o, errors.WithStack(core.ErrNotFound)
		}
		return o, errors.WithStack(err)
	}

	o.Items, err = d.getItems(ctx, tx, o.ID)
	if err != nil {
		m.Complete(err)
		return o, err
	}

	m.Complete(nil)
	return o, nil
}

func (d *dbRepo) getItems(ctx context.Context, tx core.Conn, orderID uint64) ([]order.OrderItem, error) {
	items := make([]order.OrderItem, 0)
	rows, err := tx.Query(ctx,
		`SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id = $1 ORDER BY id`,
		orderID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		item := order.OrderItem{}
		err = rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		items = append(items, item)
	}

	return items, nil
}

func (d *dbRepo) GetOrders(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]order.Order, error) {
	m := db.StartMetric("GetOrders")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	orders := make([]order.Order, 0)
	rows, err := tx.Query(ctx,
		`SELECT `+orderCols+` FROM orders ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2 `+forUpdate,
		limit, offset)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		orders = append(orders, o)
	}
	rows.Close()

	for i := range orders {
		orders[i].Items, err = d.getItems(ctx, tx, orders[i].ID)
		if err != nil {
			m.Complete(err)
			return nil, err
		}
	}

	m.Complete(nil)
	return orders, nil
}

func (d *dbRepo) SaveOrder(ctx context.Context, o *order.Order, options ...core.UpdateOptions) error {
	m := db.StartMetric("SaveOrder")
	tx := db.GetUpdateOptions(d.conn, options...)

	insert := `INSERT INTO orders (customer, invoice_number, discount, tax_percent, total_amount, status, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id;`

	err := tx.QueryRow(ctx, insert,
		o.Customer, o.InvoiceNumber, o.Discount, o.TaxPercent, o.TotalAmount, o.Status, o.Created).
		Scan(&o.ID)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	m.Complete(nil)
	return nil
}

func (d *dbRepo) UpdateOrder(ctx context.Context, o *order.Order, options ...core.UpdateOptions) error {
	m := db.StartMetric("UpdateOrder")
	tx := db.GetUpdateOptions(d.conn, options...)

	update := `UPDATE orders
	              SET customer = $2, discount = $3, tax_percent = $4, total_amount = $5, status = $6
	            WHERE id = $1;`
	_, err := tx.Exec(ctx, update,
		o.ID, o.Customer, o.Discount, o.TaxPercent, o.TotalAmount, o.Status)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	m.Complete(nil)
	return nil
}

func (d *dbRepo) ReplaceItems(ctx context.Context, orderID uint64, items []order.OrderItem, options ...core.UpdateOptions) error {
	m := db.StartMetric("ReplaceItems")
	tx := db.GetUpdateOptions(d.conn, options...)

	_, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}

	if len(items) == 0 {
		m.Complete(nil)
		return nil
	}

	values := make([]string, 0, len(items))
	params := make([]interface{}, 0, len(items)*4)
	for i, item := range items {
		n := i * 4
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4))
		params = append(params, orderID, item.ProductID, item.Quantity, item.Price)
	}

	insert := `INSERT INTO order_items (order_id, product_id, quantity, price)
	                VALUES ` + strings.Join(values, ", ") + `;`

	_, err = tx.Exec(ctx, insert, params...)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	m.Complete(nil)
	return nil
}

func (d *dbRepo) DeleteOrder(ctx context.Context, id uint64, options ...core.UpdateOptions) error {
	m := db.StartMetric("DeleteOrder")
	tx := db.GetUpdateOptions(d.conn, options...)

	_, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
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

const saleCols = `id, order_id, total_amount, amount_paid, remaining_amount, over_paid,
	payment_method, notes, status, created_at, updated_at`

func scanSale(row pgx.Row) (order.Sale, error) {
	s := order.Sale{}
	err := row.Scan(&s.ID, &s.OrderID, &s.TotalAmount, &s.AmountPaid, &s.RemainingAmount,
		&s.OverPaid, &s.PaymentMethod, &s.Notes, &s.Status, &s.Created, &s.Updated)
	return s, err
}

func (d *dbRepo) GetSaleByOrder(ctx context.Context, orderID uint64, options ...core.QueryOptions) (order.Sale, error) {
	m := db.StartMetric("GetSaleByOrder")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	s, err := scanSale(tx.QueryRow(ctx,
		`SELECT `+saleCols+` FROM sales WHERE order_id = $1 `+forUpdate, orderID))
	if err != nil {
		m.Complete(err)
		if err == pgx.ErrNoRows {
			return s, errors.WithStack(core.ErrNotFound)
		}
		return s, errors.WithStack(err)
	}

	m.Complete(nil)
	return s, nil
}

func (d *dbRepo) GetSales(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]order.Sale, error) {
	m := db.StartMetric("GetSales")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	sales := make([]order.Sale, 0)
	rows, err := tx.Query(ctx,
		`SELECT `+saleCols+` FROM sales ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2 `+forUpdate,
		limit, offset)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		sales = append(sales, s)
	}

	m.Complete(nil)
	return sales, nil
}

func (d *dbRepo) SaveSale(ctx context.Context, s *order.Sale, options ...core.UpdateOptions) error {
	m := db.StartMetric("SaveSale")
	tx := db.GetUpdateOptions(d.conn, options...)

	insert := `INSERT INTO sales (order_id, total_amount, amount_paid, remaining_amount, over_paid,
	                              payment_method, notes, status, created_at, updated_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id;`

	err := tx.QueryRow(ctx, insert,
		s.OrderID, s.TotalAmount, s.AmountPaid, s.RemainingAmount, s.OverPaid,
		s.PaymentMethod, s.Notes, s.Status, s.Created, s.Updated).
		Scan(&s.ID)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	m.Complete(nil)
	return nil
}

func (d *dbRepo) UpdateSale(ctx context.Context, s *order.Sale, options ...core.UpdateOptions) error {
	m := db.StartMetric("UpdateSale")
	tx := db.GetUpdateOptions(d.conn, options...)

	update := `UPDATE sales
	              SET total_amount = $2, amount_paid = $3, remaining_amount = $4, over_paid = $5,
	                  payment_method = $6, notes = $7, status = $8, updated_at = $9
	            WHERE id = $1;`
	_, err := tx.Exec(ctx, update,
		s.ID, s.TotalAmount, s.AmountPaid, s.RemainingAmount, s.OverPaid,
		s.PaymentMethod, s.Notes, s.Status, s.Updated)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	m.Complete(nil)
	return nil
}

func (d *dbRepo) DeleteSaleByOrder(ctx context.Context, orderID uint64, options ...core.UpdateOptions) error {
	m := db.StartMetric("DeleteSaleByOrder")
	tx := db.GetUpdateOptions(d.conn, options...)

	_, err := tx.Exec(ctx, `DELETE FROM sales WHERE order_id = $1`, orderID)
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
