package order

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/go-retail-ledger/core"
	"github.com/sksmith/go-retail-ledger/core/catalog"
	"github.com/shopspring/decimal"
)

const maxTxAttempts = 3

func NewService(repo Repository, stock StockService, q Queue) *service {
	return &service{repo: repo, stock: stock, queue: q}
}

type Service interface {
	CreateOrder(ctx context.Context, req OrderRequest) (Order, Sale, error)
	UpdateOrder(ctx context.Context, id uint64, req OrderRequest) (Order, error)
	CancelOrder(ctx context.Context, id uint64) (Order, error)
	CompleteOrder(ctx context.Context, id uint64) (Order, error)
	DeleteOrder(ctx context.Context, id uint64) error
	GetOrder(ctx context.Context, id uint64) (Order, error)
	GetOrders(ctx context.Context, limit, offset int) ([]Order, error)

	ConfirmPayment(ctx context.Context, req PaymentRequest) (Sale, error)
	GetSales(ctx context.Context, limit, offset int) ([]Sale, error)
}

type service struct {
	repo  Repository
	stock StockService
	queue Queue
}

func (s *service) CreateOrder(ctx context.Context, req OrderRequest) (Order, Sale, error) {
	const funcName = "CreateOrder"

	log.Info().
		Str("func", funcName).
		Str("customer", req.Customer).
		Int("items", len(req.Items)).
		Msg("creating order")

	if err := validateOrderRequest(req); err != nil {
		return Order{}, Sale{}, err
	}

	var order Order
	var sale Sale
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		order, sale, err = s.createOrder(ctx, req)
		if !core.Retryable(err) {
			return order, sale, err
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("create order conflicted, retrying")
	}
	return Order{}, Sale{}, errors.WithMessage(core.ErrConflict, "create order retries exhausted")
}

func (s *service) createOrder(ctx context.Context, req OrderRequest) (Order, Sale, error) {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Order{}, Sale{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	now := time.Now()
	order := Order{
		Customer:      req.Customer,
		InvoiceNumber: newInvoiceNumber(now),
		Discount:      req.Discount,
		TaxPercent:    req.Tax,
		TotalAmount:   decimal.Zero,
		Status:        Pending,
		Created:       now,
	}

	if err = s.repo.SaveOrder(ctx, &order, core.UpdateOptions{Tx: tx}); err != nil {
		return Order{}, Sale{}, errors.WithMessage(err, "failed to save order")
	}

	var items []OrderItem
	var levels []catalog.StockLevel
	items, levels, err = s.reserveItems(ctx, tx, order.ID, req.Items)
	if err != nil {
		return Order{}, Sale{}, err
	}

	if req.Discount.GreaterThan(Subtotal(items)) {
		err = errors.WithMessage(core.ErrValidation, "discount exceeds order subtotal")
		return Order{}, Sale{}, err
	}

	if err = s.repo.ReplaceItems(ctx, order.ID, items, core.UpdateOptions{Tx: tx}); err != nil {
		return Order{}, Sale{}, errors.WithMessage(err, "failed to save order items")
	}
	order.Items = items
	order.TotalAmount = ComputeTotal(items, order.Discount, order.TaxPercent)

	if err = s.repo.UpdateOrder(ctx, &order, core.UpdateOptions{Tx: tx}); err != nil {
		return Order{}, Sale{}, errors.WithMessage(err, "failed to update order total")
	}

	sale := Sale{
		OrderID:         order.ID,
		TotalAmount:     order.TotalAmount,
		AmountPaid:      decimal.Zero,
		RemainingAmount: order.TotalAmount,
		OverPaid:        decimal.Zero,
		PaymentMethod:   MethodNone,
		Status:          SalePending,
		Created:         now,
		Updated:         now,
	}

	if err = s.repo.SaveSale(ctx, &sale, core.UpdateOptions{Tx: tx}); err != nil {
		return Order{}, Sale{}, errors.WithMessage(err, "failed to save sale")
	}

	if err = tx.Commit(ctx); err != nil {
		return Order{}, Sale{}, errors.WithMessage(err, "failed to commit order transaction")
	}

	s.publishLevels(ctx, levels)
	s.publishSale(ctx, sale)
	return order, sale, nil
}

func (s *service) UpdateOrder(ctx context.Context, id uint64, req OrderRequest) (Order, error) {
	const funcName = "UpdateOrder"

	log.Info().
		Str("func", funcName).
		Uint64("id", id).
		Int("items", len(req.Items)).
		Msg("updating order")

	if err := validateOrderItems(req); err != nil {
		return Order{}, err
	}

	var order Order
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		order, err = s.updateOrder(ctx, id, req)
		if !core.Retryable(err) {
			return order, err
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("update order conflicted, retrying")
	}
	return Order{}, errors.WithMessage(core.ErrConflict, "update order retries exhausted")
}

func (s *service) updateOrder(ctx context.Context, id uint64, req OrderRequest) (Order, error) {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Order{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	order, err := s.repo.GetOrder(ctx, id, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return Order{}, errors.WithStack(err)
	}
	if order.Status != Pending {
		err = errors.WithMessage(core.ErrValidation, "only pending orders can be updated")
		return Order{}, err
	}

	var levels []catalog.StockLevel
	levels, err = s.releaseItems(ctx, tx, order)
	if err != nil {
		return Order{}, err
	}

	var items []OrderItem
	var reserved []catalog.StockLevel
	items, reserved, err = s.reserveItems(ctx, tx, order.ID, req.Items)
	if err != nil {
		return Order{}, err
	}
	levels = append(levels, reserved...)

	if req.Discount.GreaterThan(Subtotal(items)) {
		err = errors.WithMessage(core.ErrValidation, "discount exceeds order subtotal")
		return Order{}, err
	}

	if err = s.repo.ReplaceItems(ctx, order.ID, items, core.UpdateOptions{Tx: tx}); err != nil {
		return Order{}, errors.WithMessage(err, "failed to replace order items")
	}

	order.Items = items
	order.Discount = req.Discount
	order.TaxPercent = req.Tax
	order.TotalAmount = ComputeTotal(items, order.Discount, order.TaxPercent)

	sale, err := s.repo.GetSaleByOrder(ctx, order.ID, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return Order{}, errors.WithStack(err)
	}
	sale.Rebase(order.TotalAmount)
	sale.Updated = time.Now()

	// status stays in lock-step: a rebased sale that is now fully covered
	// completes the order.
	if sale.Status == SalePaid {
		order.Status = Completed
	}

	if err = s.repo.UpdateSale(ctx, &sale, core.UpdateOptions{Tx: tx}); err != nil {
		return Order{}, errors.WithMessage(err, "failed to update sale")
	}
	if err = s.repo.UpdateOrder(ctx, &order, core.UpdateOptions{Tx: tx}); err != nil {
		return Order{}, errors.WithMessage(err, "failed to update order")
	}

	if err = tx.Commit(ctx); err != nil {
		return Order{}, errors.WithMessage(err, "failed to commit order update")
	}

	s.publishLevels(ctx, levels)
	s.publishSale(ctx, sale)
	return order, nil
}

func (s *service) CancelOrder(ctx context.Context, id uint64) (Order, error) {
	const funcName = "CancelOrder"

	log.Info().
		Str("func", funcName).
		Uint64("id", id).
		Msg("canceling order")

	var order Order
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		order, err = s.cancelOrder(ctx, id)
		if !core.Retryable(err) {
			return order, err
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("cancel order conflicted, retrying")
	}
	return Order{}, errors.WithMessage(core.ErrConflict, "cancel order retries exhausted")
}

func (s *service) cancelOrder(ctx context.Context, id uint64) (Order, error) {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Order{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	order, err := s.repo.GetOrder(ctx, id, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return Order{}, errors.WithStack(err)
	}
	if order.Status != Pending {
		err = errors.WithMessage(core.ErrValidation, "only pending orders can be canceled")
		return Order{}, err
	}

	var levels []catalog.StockLevel
	levels, err = s.releaseItems(ctx, tx, order)
	if err != nil {
		return Order{}, err
	}

	order.Status = Canceled
	if err = s.repo.UpdateOrder(ctx, &order, core.UpdateOptions{Tx: tx}); err != nil {
		return Order{}, errors.WithMessage(err, "failed to update order")
	}

	if err = tx.Commit(ctx); err != nil {
		return Order{}, errors.WithMessage(err, "failed to commit cancellation")
	}

	s.publishLevels(ctx, levels)
	return order, nil
}

// CompleteOrder is an administrative override: it moves a pending order to
// completed without checking its settlement. Payment-driven completion goes
// through ConfirmPayment.
func (s *service) CompleteOrder(ctx context.Context, id uint64) (Order, error) {
	const funcName = "CompleteOrder"

	log.Info().
		Str("func", funcName).
		Uint64("id", id).
		Msg("completing order")

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Order{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	order, err := s.repo.GetOrder(ctx, id, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return Order{}, errors.WithStack(err)
	}
	if order.Status != Pending {
		err = errors.WithMessagef(core.ErrValidation, "order is %s and cannot be completed", order.Status)
		return Order{}, err
	}

	order.Status = Completed
	if err = s.repo.UpdateOrder(ctx, &order, core.UpdateOptions{Tx: tx}); err != nil {
		return Order{}, errors.WithMessage(err, "failed to update order")
	}

	if err = tx.Commit(ctx); err != nil {
		return Order{}, errors.WithMessage(err, "failed to commit completion")
	}

	return order, nil
}

func (s *service) DeleteOrder(ctx context.Context, id uint64) error {
	const funcName = "DeleteOrder"

	log.Info().
		Str("func", funcName).
		Uint64("id", id).
		Msg("deleting order")

	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = s.deleteOrder(ctx, id)
		if !core.Retryable(err) {
			return err
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("delete order conflicted, retrying")
	}
	return errors.WithMessage(core.ErrConflict, "delete order retries exhausted")
}

func (s *service) deleteOrder(ctx context.Context, id uint64) error {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	order, err := s.repo.GetOrder(ctx, id, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return errors.WithStack(err)
	}

	// Reserved stock is only returned for orders that never left pending;
	// completed orders already handed their goods over.
	var levels []catalog.StockLevel
	if order.Status == Pending {
		levels, err = s.releaseItems(ctx, tx, order)
		if err != nil {
			return err
		}
	}

	if err = s.repo.DeleteSaleByOrder(ctx, order.ID, core.UpdateOptions{Tx: tx}); err != nil {
		return errors.WithMessage(err, "failed to delete sale")
	}
	if err = s.repo.DeleteOrder(ctx, order.ID, core.UpdateOptions{Tx: tx}); err != nil {
		return errors.WithMessage(err, "failed to delete order")
	}

	if err = tx.Commit(ctx); err != nil {
		return errors.WithMessage(err, "failed to commit order deletion")
	}

	s.publishLevels(ctx, levels)
	return nil
}

func (s *service) GetOrder(ctx context.Context, id uint64) (Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return order, errors.WithStack(err)
	}
	return order, nil
}

func (s *service) GetOrders(ctx context.Context, limit, offset int) ([]Order, error) {
	return s.repo.GetOrders(ctx, limit, offset)
}

func (s *service) ConfirmPayment(ctx context.Context, req PaymentRequest) (Sale, error) {
	const funcName = "ConfirmPayment"

	log.Info().
		Str("func", funcName).
		Uint64("orderId", req.OrderID).
		Str("method", string(req.Method)).
		Str("amount", req.Amount.String()).
		Msg("confirming payment")

	if req.OrderID == 0 {
		return Sale{}, errors.WithMessage(core.ErrValidation, "order id is required")
	}
	if !req.Amount.IsPositive() {
		return Sale{}, errors.WithMessage(core.ErrValidation, "amount must be a positive number")
	}
	if _, err := ParsePaymentMethod(string(req.Method)); err != nil || req.Method == MethodNone {
		return Sale{}, errors.WithMessage(core.ErrValidation, "invalid payment method")
	}

	var sale Sale
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		sale, err = s.confirmPayment(ctx, req)
		if !core.Retryable(err) {
			return sale, err
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("payment conflicted, retrying")
	}
	return Sale{}, errors.WithMessage(core.ErrConflict, "confirm payment retries exhausted")
}

func (s *service) confirmPayment(ctx context.Context, req PaymentRequest) (Sale, error) {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Sale{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	// FOR UPDATE serializes concurrent confirmations on the same order, so
	// both payments land and neither overwrites the other.
	order, err := s.repo.GetOrder(ctx, req.OrderID, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return Sale{}, errors.WithStack(err)
	}
	if order.Status == Canceled {
		err = errors.WithMessage(core.ErrValidation, "canceled orders cannot accept payment")
		return Sale{}, err
	}

	sale, err := s.repo.GetSaleByOrder(ctx, order.ID, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return Sale{}, errors.WithStack(err)
	}

	sale.ApplyPayment(req.Amount)
	sale.PaymentMethod = req.Method
	if req.Method == MethodMobile {
		sale.Notes = req.Notes
	} else {
		sale.Notes = ""
	}
	sale.Updated = time.Now()

	if err = s.repo.UpdateSale(ctx, &sale, core.UpdateOptions{Tx: tx}); err != nil {
		return Sale{}, errors.WithMessage(err, "failed to update sale")
	}

	if sale.Status == SalePaid && order.Status == Pending {
		order.Status = Completed
		if err = s.repo.UpdateOrder(ctx, &order, core.UpdateOptions{Tx: tx}); err != nil {
			return Sale{}, errors.WithMessage(err, "failed to complete order")
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return Sale{}, errors.WithMessage(err, "failed to commit payment")
	}

	s.publishSale(ctx, sale)
	return sale, nil
}

func (s *service) GetSales(ctx context.Context, limit, offset int) ([]Sale, error) {
	return s.repo.GetSales(ctx, limit, offset)
}

func (s *service) reserveItems(ctx context.Context, tx core.Transaction, orderID uint64, reqs []ItemRequest) ([]OrderItem, []catalog.StockLevel, error) {
	items := make([]OrderItem, 0, len(reqs))
	levels := make([]catalog.StockLevel, 0, len(reqs))

	for _, req := range reqs {
		product, err := s.stock.Reserve(ctx, req.ProductID, req.Quantity, orderID, core.UpdateOptions{Tx: tx})
		if err != nil {
			return nil, nil, err
		}

		price := req.Price
		if price.IsZero() {
			price = product.Price
		}

		items = append(items, OrderItem{
			OrderID:   orderID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Price:     price,
		})
		levels = append(levels, catalog.LevelFor(product))
	}

	return items, levels, nil
}

func (s *service) releaseItems(ctx context.Context, tx core.Transaction, order Order) ([]catalog.StockLevel, error) {
	levels := make([]catalog.StockLevel, 0, len(order.Items))
	for _, item := range order.Items {
		product, err := s.stock.Release(ctx, item.ProductID, item.Quantity, order.ID, core.UpdateOptions{Tx: tx})
		if err != nil {
			return nil, err
		}
		levels = append(levels, catalog.LevelFor(product))
	}
	return levels, nil
}

func (s *service) publishLevels(ctx context.Context, levels []catalog.StockLevel) {
	for _, level := range levels {
		if err := s.queue.PublishStockLevel(ctx, level); err != nil {
			log.Warn().Err(err).Uint64("productId", level.ProductID).Msg("failed to publish stock level")
		}
	}
}

func (s *service) publishSale(ctx context.Context, sale Sale) {
	if err := s.queue.PublishSale(ctx, sale); err != nil {
		log.Warn().Err(err).Uint64("orderId", sale.OrderID).Msg("failed to publish sale")
	}
}

func validateOrderRequest(req OrderRequest) error {
	if req.Customer == "" {
		return errors.WithMessage(core.ErrValidation, "customer is required")
	}
	return validateOrderItems(req)
}

func validateOrderItems(req OrderRequest) error {
	if len(req.Items) == 0 {
		return errors.WithMessage(core.ErrValidation, "at least one item is required")
	}
	for _, item := range req.Items {
		if item.ProductID == 0 {
			return errors.WithMessage(core.ErrValidation, "each item requires a product")
		}
		if item.Quantity < 1 {
			return errors.WithMessage(core.ErrValidation, "item quantity must be greater than zero")
		}
		if item.Price.IsNegative() {
			return errors.WithMessage(core.ErrValidation, "item price must not be negative")
		}
	}
	if req.Discount.IsNegative() {
		return errors.WithMessage(core.ErrValidation, "discount must not be negative")
	}
	if req.Tax.IsNegative() {
		return errors.WithMessage(core.ErrValidation, "tax must not be negative")
	}
	return nil
}
