package queue

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/go-retail-ledger/core/catalog"
	"github.com/sksmith/go-retail-ledger/core/order"
)

// LevelBroker fans stock level updates out to in-process subscribers, which
// back the websocket subscription endpoint.
//
// Note: this isn't exactly realistic because in the real world, this
// application would need to be able to scale. If it were scaled, clients
// would only get updates that occurred in their connected instance.
type LevelBroker struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]chan<- catalog.StockLevel
}

func NewLevelBroker() *LevelBroker {
	return &LevelBroker{subs: make(map[uuid.UUID]chan<- catalog.StockLevel)}
}

func (b *LevelBroker) SubscribeStockLevels(ch chan<- catalog.StockLevel) uuid.UUID {
	id := uuid.New()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[id] = ch
	return id
}

func (b *LevelBroker) UnsubscribeStockLevels(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		close(ch)
		delete(b.subs, id)
	}
}

func (b *LevelBroker) Notify(level catalog.StockLevel) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- level:
		default:
			log.Warn().Interface("clientId", id).Msg("subscriber is not keeping up, dropping update")
		}
	}
}

// Publisher is the outbound queue surface the services depend on.
type Publisher interface {
	PublishStockLevel(ctx context.Context, level catalog.StockLevel) error
	PublishSale(ctx context.Context, sale order.Sale) error
}

// Fanout forwards publishes to the broker in addition to the broker-less
// delegate, so websocket clients see every stock level change regardless of
// which service produced it.
type Fanout struct {
	delegate Publisher
	broker   *LevelBroker
}

func NewFanout(delegate Publisher, broker *LevelBroker) *Fanout {
	return &Fanout{delegate: delegate, broker: broker}
}

func (f *Fanout) PublishStockLevel(ctx context.Context, level catalog.StockLevel) error {
	f.broker.Notify(level)
	return f.delegate.PublishStockLevel(ctx, level)
}

func (f *Fanout) PublishSale(ctx context.Context, sale order.Sale) error {
	return f.delegate.PublishSale(ctx, sale)
}
