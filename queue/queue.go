package queue

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/bunnyq"
	"github.com/sksmith/go-retail-ledger/core/catalog"
	"github.com/sksmith/go-retail-ledger/core/order"
	"github.com/streadway/amqp"
)

// ledgerQueue posts stock level and settlement updates to their exchanges.
// It satisfies both the stock and the order package's Queue interfaces.
type ledgerQueue struct {
	queue         *bunnyq.BunnyQ
	stockExchange string
	saleExchange  string
}

func New(bq *bunnyq.BunnyQ, stockExchange, saleExchange string) *ledgerQueue {
	return &ledgerQueue{queue: bq, stockExchange: stockExchange, saleExchange: saleExchange}
}

func (q *ledgerQueue) PublishStockLevel(ctx context.Context, level catalog.StockLevel) error {
	body, err := json.Marshal(level)
	if err != nil {
		return errors.WithMessage(err, "failed to serialize stock level for queue")
	}
	if err = q.queue.Publish(ctx, q.stockExchange, body); err != nil {
		return errors.WithMessage(err, "failed to send stock level update to queue")
	}
	return nil
}

func (q *ledgerQueue) PublishSale(ctx context.Context, sale order.Sale) error {
	body, err := json.Marshal(sale)
	if err != nil {
		return errors.WithMessage(err, "failed to serialize sale for queue")
	}
	if err = q.queue.Publish(ctx, q.saleExchange, body); err != nil {
		return errors.WithMessage(err, "failed to send sale update to queue")
	}
	return nil
}

// ProductQueue consumes product definitions pushed by an upstream product
// management system.
type ProductQueue struct {
	queue           *bunnyq.BunnyQ
	productQueue    string
	productDltExchg string
}

func NewProductQueue(bq *bunnyq.BunnyQ, productQueue, productDltExchange string) *ProductQueue {
	return &ProductQueue{queue: bq, productQueue: productQueue, productDltExchg: productDltExchange}
}

type ProductHandler interface {
	CreateProduct(ctx context.Context, product catalog.Product) (catalog.Product, error)
}

func (p *ProductQueue) ConsumeProducts(ctx context.Context, handler ProductHandler) {
	p.queue.Stream(ctx, p.productQueue, func(delivery amqp.Delivery) {
		product := catalog.Product{}
		err := json.Unmarshal(delivery.Body, &product)
		if err != nil {
			log.Error().Err(err).Msg("error unmarshalling product, writing to dlt")
			p.sendToDlt(ctx, delivery.Body)
			return
		}

		if _, err = handler.CreateProduct(ctx, product); err != nil {
			log.Error().Err(err).Msg("error handling product, writing to dlt")
			p.sendToDlt(ctx, delivery.Body)
		}
	}, bunnyq.StreamOpAutoAck)
}

func (p *ProductQueue) sendToDlt(ctx context.Context, data []byte) {
	err := p.queue.Publish(ctx, p.productDltExchg, data)
	if err != nil {
		log.Error().Err(err).Msg("error writing to dlt")
	}
}
