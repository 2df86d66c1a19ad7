package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/go-retail-ledger/core"
	"github.com/sksmith/go-retail-ledger/core/catalog"
)

// maxTxAttempts bounds the retries performed when a transaction loses a
// serialization race before the conflict is surfaced to the caller.
const maxTxAttempts = 3

func NewService(repo Repository, q Queue) *service {
	return &service{repo: repo, queue: q}
}

type Service interface {
	ApplyMovement(ctx context.Context, req MovementRequest) (StockMovement, error)
	ReviseMovement(ctx context.Context, id uint64, req MovementRequest) (StockMovement, error)
	RetractMovement(ctx context.Context, id uint64) error
	GetMovement(ctx context.Context, id uint64) (StockMovement, error)
	GetMovements(ctx context.Context, productID uint64, limit, offset int) ([]StockMovement, error)

	CreateUnits(ctx context.Context, productID uint64, count int64) ([]InventoryUnit, error)
	GetUnits(ctx context.Context, productID uint64, limit, offset int) ([]InventoryUnit, error)
	MarkUnits(ctx context.Context, ids []uint64, status UnitStatus) error

	Reserve(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error)
	Release(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error)
}

type service struct {
	repo  Repository
	queue Queue
}

func (s *service) ApplyMovement(ctx context.Context, req MovementRequest) (StockMovement, error) {
	const funcName = "ApplyMovement"

	log.Info().
		Str("func", funcName).
		Str("type", string(req.Type)).
		Uint64("productId", req.ProductID).
		Int64("quantity", req.Quantity).
		Str("reason", string(req.Reason)).
		Msg("applying stock movement")

	if err := validateRequest(req); err != nil {
		return StockMovement{}, err
	}

	var movement StockMovement
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		movement, err = s.applyMovement(ctx, req)
		if !core.Retryable(err) {
			return movement, err
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("movement transaction conflicted, retrying")
	}
	return StockMovement{}, errors.WithMessage(core.ErrConflict, "apply movement retries exhausted")
}

func (s *service) applyMovement(ctx context.Context, req MovementRequest) (StockMovement, error) {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return StockMovement{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	movement := StockMovement{
		Type:      req.Type,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		Notes:     req.Notes,
		Created:   time.Now(),
	}

	if err = s.repo.SaveMovement(ctx, &movement, core.UpdateOptions{Tx: tx}); err != nil {
		return StockMovement{}, errors.WithMessage(err, "failed to save stock movement")
	}

	var product catalog.Product
	if product, err = s.applyEffect(ctx, tx, movement); err != nil {
		return StockMovement{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return StockMovement{}, errors.WithMessage(err, "failed to commit movement transaction")
	}

	s.publishLevel(ctx, product)
	return movement, nil
}

func (s *service) ReviseMovement(ctx context.Context, id uint64, req MovementRequest) (StockMovement, error) {
	const funcName = "ReviseMovement"

	log.Info().
		Str("func", funcName).
		Uint64("id", id).
		Str("type", string(req.Type)).
		Uint64("productId", req.ProductID).
		Int64("quantity", req.Quantity).
		Msg("revising stock movement")

	if err := validateRequest(req); err != nil {
		return StockMovement{}, err
	}

	var movement StockMovement
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		movement, err = s.reviseMovement(ctx, id, req)
		if !core.Retryable(err) {
			return movement, err
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("revise transaction conflicted, retrying")
	}
	return StockMovement{}, errors.WithMessage(core.ErrConflict, "revise movement retries exhausted")
}

func (s *service) reviseMovement(ctx context.Context, id uint64, req MovementRequest) (StockMovement, error) {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return StockMovement{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	movement, err := s.repo.GetMovement(ctx, id, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return StockMovement{}, errors.WithStack(err)
	}

	// Undo the effect currently on record before the replacement effect is
	// applied. Both halves share the transaction: if the new effect cannot
	// be applied the reversal never becomes visible either.
	reversed, err := s.reverseEffect(ctx, tx, movement)
	if err != nil {
		return StockMovement{}, err
	}

	movement.Type = req.Type
	movement.ProductID = req.ProductID
	movement.Quantity = req.Quantity
	movement.Reason = req.Reason
	movement.Notes = req.Notes

	if err = s.repo.UpdateMovement(ctx, &movement, core.UpdateOptions{Tx: tx}); err != nil {
		return StockMovement{}, errors.WithMessage(err, "failed to update stock movement")
	}

	applied, err := s.applyEffect(ctx, tx, movement)
	if err != nil {
		return StockMovement{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return StockMovement{}, errors.WithMessage(err, "failed to commit revise transaction")
	}

	s.publishLevel(ctx, reversed)
	if applied.ID != reversed.ID {
		s.publishLevel(ctx, applied)
	}
	return movement, nil
}

func (s *service) RetractMovement(ctx context.Context, id uint64) error {
	const funcName = "RetractMovement"

	log.Info().
		Str("func", funcName).
		Uint64("id", id).
		Msg("retracting stock movement")

	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = s.retractMovement(ctx, id)
		if !core.Retryable(err) {
			return err
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("retract transaction conflicted, retrying")
	}
	return errors.WithMessage(core.ErrConflict, "retract movement retries exhausted")
}

func (s *service) retractMovement(ctx context.Context, id uint64) error {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	movement, err := s.repo.GetMovement(ctx, id, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return errors.WithStack(err)
	}

	product, err := s.reverseEffect(ctx, tx, movement)
	if err != nil {
		return err
	}

	if err = s.repo.DeleteMovement(ctx, id, core.UpdateOptions{Tx: tx}); err != nil {
		return errors.WithMessage(err, "failed to delete stock movement")
	}

	if err = tx.Commit(ctx); err != nil {
		return errors.WithMessage(err, "failed to commit retract transaction")
	}

	s.publishLevel(ctx, product)
	return nil
}

func (s *service) GetMovement(ctx context.Context, id uint64) (StockMovement, error) {
	movement, err := s.repo.GetMovement(ctx, id)
	if err != nil {
		return movement, errors.WithStack(err)
	}
	return movement, nil
}

func (s *service) GetMovements(ctx context.Context, productID uint64, limit, offset int) ([]StockMovement, error) {
	return s.repo.GetMovements(ctx, productID, limit, offset)
}

func (s *service) CreateUnits(ctx context.Context, productID uint64, count int64) ([]InventoryUnit, error) {
	const funcName = "CreateUnits"

	log.Info().
		Str("func", funcName).
		Uint64("productId", productID).
		Int64("count", count).
		Msg("creating inventory units")

	if count < 1 {
		return nil, errors.WithMessage(core.ErrValidation, "count must be greater than zero")
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	product, err := s.repo.GetProduct(ctx, productID, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !product.IsUnique {
		return nil, errors.WithMessage(core.ErrValidation, "product does not track serialized units")
	}

	units := newUnits(productID, 0, count)
	if err = s.repo.CreateUnits(ctx, units, core.UpdateOptions{Tx: tx}); err != nil {
		return nil, errors.WithMessage(err, "failed to create inventory units")
	}

	product.Quantity += count
	product.RefreshStatus()
	if err = s.repo.SaveProduct(ctx, &product, core.UpdateOptions{Tx: tx}); err != nil {
		return nil, errors.WithMessage(err, "failed to update product quantity")
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, errors.WithMessage(err, "failed to commit unit creation")
	}

	s.publishLevel(ctx, product)
	return units, nil
}

func (s *service) GetUnits(ctx context.Context, productID uint64, limit, offset int) ([]InventoryUnit, error) {
	return s.repo.GetUnits(ctx, productID, limit, offset)
}

// MarkUnits transitions unit statuses directly, e.g. printed to scanned at
// the register. A unit that already left the sellable pool stays gone: the
// only path back is reversing the movement or order that consumed it.
func (s *service) MarkUnits(ctx context.Context, ids []uint64, status UnitStatus) error {
	const funcName = "MarkUnits"

	log.Info().
		Str("func", funcName).
		Ints64("ids", toInt64(ids)).
		Str("status", string(status)).
		Msg("marking inventory units")

	if len(ids) == 0 {
		return errors.WithMessage(core.ErrValidation, "at least one unit id is required")
	}
	if _, err := ParseUnitStatus(string(status)); err != nil {
		return errors.WithMessage(core.ErrValidation, err.Error())
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	units, err := s.repo.GetUnitsByIDs(ctx, ids, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return errors.WithStack(err)
	}
	if len(units) != len(ids) {
		return errors.WithStack(core.ErrNotFound)
	}

	removed := map[uint64]int64{}
	for _, unit := range units {
		if !unit.Status.Sellable() && status.Sellable() {
			return errors.WithMessagef(core.ErrValidation,
				"unit %d is %s and cannot be made sellable without reversing its movement", unit.ID, unit.Status)
		}
		if unit.Status.Sellable() && !status.Sellable() {
			removed[unit.ProductID]++
		}
	}

	if err = s.repo.MarkUnits(ctx, ids, status, 0, 0, core.UpdateOptions{Tx: tx}); err != nil {
		return errors.WithMessage(err, "failed to mark inventory units")
	}

	products := make([]catalog.Product, 0, len(removed))
	for productID, count := range removed {
		var product catalog.Product
		product, err = s.repo.GetProduct(ctx, productID, core.QueryOptions{Tx: tx, ForUpdate: true})
		if err != nil {
			return errors.WithStack(err)
		}
		product.Quantity -= count
		if product.Quantity < 0 {
			product.Quantity = 0
		}
		product.RefreshStatus()
		if err = s.repo.SaveProduct(ctx, &product, core.UpdateOptions{Tx: tx}); err != nil {
			return errors.WithMessage(err, "failed to update product quantity")
		}
		products = append(products, product)
	}

	if err = tx.Commit(ctx); err != nil {
		return errors.WithMessage(err, "failed to commit unit marking")
	}

	for _, product := range products {
		s.publishLevel(ctx, product)
	}
	return nil
}

// Reserve decrements availability for an order line inside the caller's
// transaction. It performs exactly the checks and unit selection a movement
// exit would, but records the consumption against the order instead of a
// ledger row.
func (s *service) Reserve(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error) {
	if quantity < 1 {
		return catalog.Product{}, errors.WithMessage(core.ErrValidation, "quantity must be greater than zero")
	}

	product, err := s.repo.GetProduct(ctx, productID, core.QueryOptions{Tx: options.Tx, ForUpdate: true})
	if err != nil {
		return catalog.Product{}, errors.WithStack(err)
	}

	if product.IsUnique {
		if err := s.consumeUnits(ctx, options.Tx, product, quantity, UnitSold, 0, orderID); err != nil {
			return catalog.Product{}, err
		}
	} else if product.Quantity < quantity {
		return catalog.Product{}, errors.WithMessagef(core.ErrInsufficientStock,
			"product %q has %d on hand, requested %d", product.Name, product.Quantity, quantity)
	}

	product.Quantity -= quantity
	product.RefreshStatus()
	if err := s.repo.SaveProduct(ctx, &product, options); err != nil {
		return catalog.Product{}, errors.WithMessage(err, "failed to update product quantity")
	}
	return product, nil
}

// Release is the inverse of Reserve, used when an order is updated, canceled
// or deleted while still pending.
func (s *service) Release(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error) {
	product, err := s.repo.GetProduct(ctx, productID, core.QueryOptions{Tx: options.Tx, ForUpdate: true})
	if err != nil {
		return catalog.Product{}, errors.WithStack(err)
	}

	if product.IsUnique {
		units, err := s.repo.GetUnitsByOrder(ctx, orderID, productID, core.QueryOptions{Tx: options.Tx, ForUpdate: true})
		if err != nil {
			return catalog.Product{}, errors.WithStack(err)
		}
		if len(units) > 0 {
			if err := s.repo.MarkUnits(ctx, unitIDs(units), UnitPrinted, 0, 0, options); err != nil {
				return catalog.Product{}, errors.WithMessage(err, "failed to release inventory units")
			}
		}
		quantity = int64(len(units))
	}

	product.Quantity += quantity
	product.RefreshStatus()
	if err := s.repo.SaveProduct(ctx, &product, options); err != nil {
		return catalog.Product{}, errors.WithMessage(err, "failed to update product quantity")
	}
	return product, nil
}

// applyEffect performs the product and unit mutations for a movement within
// tx and returns the product as mutated.
func (s *service) applyEffect(ctx context.Context, tx core.Transaction, movement StockMovement) (catalog.Product, error) {
	product, err := s.repo.GetProduct(ctx, movement.ProductID, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return catalog.Product{}, errors.WithStack(err)
	}

	switch movement.Type {
	case Entry:
		if product.IsUnique {
			units := newUnits(product.ID, movement.ID, movement.Quantity)
			if err := s.repo.CreateUnits(ctx, units, core.UpdateOptions{Tx: tx}); err != nil {
				return catalog.Product{}, errors.WithMessage(err, "failed to create inventory units")
			}
		}
		product.Quantity += movement.Quantity
	case Exit:
		if product.IsUnique {
			if err := s.consumeUnits(ctx, tx, product, movement.Quantity, StatusForReason(movement.Reason), movement.ID, 0); err != nil {
				return catalog.Product{}, err
			}
		} else if product.Quantity < movement.Quantity {
			return catalog.Product{}, errors.WithMessagef(core.ErrInsufficientStock,
				"product %q has %d on hand, requested %d", product.Name, product.Quantity, movement.Quantity)
		}
		product.Quantity -= movement.Quantity
	}

	product.RefreshStatus()
	if err := s.repo.SaveProduct(ctx, &product, core.UpdateOptions{Tx: tx}); err != nil {
		return catalog.Product{}, errors.WithMessage(err, "failed to update product quantity")
	}
	return product, nil
}

// reverseEffect undoes the stored effect of a movement within tx and returns
// the product as restored.
func (s *service) reverseEffect(ctx context.Context, tx core.Transaction, movement StockMovement) (catalog.Product, error) {
	product, err := s.repo.GetProduct(ctx, movement.ProductID, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return catalog.Product{}, errors.WithStack(err)
	}

	switch movement.Type {
	case Entry:
		if product.IsUnique {
			units, err := s.repo.GetUnitsByEntryMovement(ctx, movement.ID, core.QueryOptions{Tx: tx, ForUpdate: true})
			if err != nil {
				return catalog.Product{}, errors.WithStack(err)
			}
			for _, unit := range units {
				if !unit.Status.Sellable() {
					return catalog.Product{}, errors.WithMessagef(core.ErrInsufficientUnits,
						"unit %s created by movement %d is already %s", unit.Code, movement.ID, unit.Status)
				}
			}
			if err := s.repo.DeleteUnits(ctx, unitIDs(units), core.UpdateOptions{Tx: tx}); err != nil {
				return catalog.Product{}, errors.WithMessage(err, "failed to delete inventory units")
			}
		} else if product.Quantity < movement.Quantity {
			return catalog.Product{}, errors.WithMessagef(core.ErrInsufficientStock,
				"cannot reverse entry of %d, product %q has only %d on hand", movement.Quantity, product.Name, product.Quantity)
		}
		product.Quantity -= movement.Quantity
	case Exit:
		if product.IsUnique {
			units, err := s.repo.GetUnitsByExitMovement(ctx, movement.ID, core.QueryOptions{Tx: tx, ForUpdate: true})
			if err != nil {
				return catalog.Product{}, errors.WithStack(err)
			}
			if len(units) > 0 {
				if err := s.repo.MarkUnits(ctx, unitIDs(units), UnitPrinted, 0, 0, core.UpdateOptions{Tx: tx}); err != nil {
					return catalog.Product{}, errors.WithMessage(err, "failed to restore inventory units")
				}
			}
		}
		product.Quantity += movement.Quantity
	}

	product.RefreshStatus()
	if err := s.repo.SaveProduct(ctx, &product, core.UpdateOptions{Tx: tx}); err != nil {
		return catalog.Product{}, errors.WithMessage(err, "failed to update product quantity")
	}
	return product, nil
}

// consumeUnits selects the oldest sellable units and marks them consumed.
// Selection is all-or-nothing: a shortfall fails before any unit is touched.
func (s *service) consumeUnits(ctx context.Context, tx core.Transaction, product catalog.Product, quantity int64, status UnitStatus, movementID, orderID uint64) error {
	units, err := s.repo.GetAvailableUnits(ctx, product.ID, quantity, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		return errors.WithStack(err)
	}
	if int64(len(units)) < quantity {
		return errors.WithMessagef(core.ErrInsufficientUnits,
			"product %q has %d sellable units, requested %d", product.Name, len(units), quantity)
	}
	if err := s.repo.MarkUnits(ctx, unitIDs(units), status, movementID, orderID, core.UpdateOptions{Tx: tx}); err != nil {
		return errors.WithMessage(err, "failed to mark inventory units")
	}
	return nil
}

func (s *service) publishLevel(ctx context.Context, product catalog.Product) {
	if err := s.queue.PublishStockLevel(ctx, catalog.LevelFor(product)); err != nil {
		log.Warn().Err(err).Uint64("productId", product.ID).Msg("failed to publish stock level")
	}
}

func validateRequest(req MovementRequest) error {
	if _, err := ParseMovementType(string(req.Type)); err != nil {
		return errors.WithMessage(core.ErrValidation, err.Error())
	}
	if req.ProductID == 0 {
		return errors.WithMessage(core.ErrValidation, "product id is required")
	}
	if req.Quantity < 1 {
		return errors.WithMessage(core.ErrValidation, "quantity must be greater than zero")
	}
	if req.Reason != ReasonNone {
		if _, err := ParseMovementReason(string(req.Reason)); err != nil {
			return errors.WithMessage(core.ErrValidation, err.Error())
		}
	}
	if req.Type == Exit && req.Reason == ReasonNone {
		return errors.WithMessage(core.ErrValidation, "reason is required for exit movements")
	}
	return nil
}

func newUnits(productID, movementID uint64, count int64) []InventoryUnit {
	units := make([]InventoryUnit, 0, count)
	for i := int64(0); i < count; i++ {
		units = append(units, InventoryUnit{
			ProductID:       productID,
			Code:            uuid.NewString(),
			Status:          UnitPrinted,
			EntryMovementID: movementID,
			Created:         time.Now(),
		})
	}
	return units
}

func unitIDs(units []InventoryUnit) []uint64 {
	ids := make([]uint64, 0, len(units))
	for _, unit := range units {
		ids = append(ids, unit.ID)
	}
	return ids
}

func toInt64(ids []uint64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		out = append(out, int64(id))
	}
	return out
}
