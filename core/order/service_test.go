package order_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/pkg/errors"
	"github.com/sksmith/go-retail-ledger/core"
	"github.com/sksmith/go-retail-ledger/core/catalog"
	"github.com/sksmith/go-retail-ledger/core/order"
	"github.com/sksmith/go-retail-ledger/db"
	"github.com/sksmith/go-retail-ledger/db/orderrepo"
	"github.com/sksmith/go-retail-ledger/queue"
	"github.com/sksmith/go-retail-ledger/test"
)

func TestMain(m *testing.M) {
	test.ConfigLogging()
	os.Exit(m.Run())
}

func TestCreateOrder(t *testing.T) {
	tests := []struct {
		name string

		request order.OrderRequest

		reserveFunc func(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error)

		wantRepoCallCnt  map[string]int
		wantQueueCallCnt map[string]int
		wantTxCallCnt    map[string]int
		wantTotal        string
		wantErr          error
	}{
		{
			name: "order and sale are created together",
			request: order.OrderRequest{
				Customer: "somecustomer",
				Items: []order.ItemRequest{
					{ProductID: 1, Quantity: 2, Price: dec("10.00")},
					{ProductID: 2, Quantity: 1, Price: dec("5.00")},
				},
				Discount: dec("5.00"),
				Tax:      dec("10"),
			},

			wantRepoCallCnt:  map[string]int{"SaveOrder": 1, "ReplaceItems": 1, "UpdateOrder": 1, "SaveSale": 1},
			wantQueueCallCnt: map[string]int{"PublishStockLevel": 2, "PublishSale": 1},
			wantTxCallCnt:    map[string]int{"Commit": 1, "Rollback": 0},
			wantTotal:        "22",
		},
		{
			name: "catalog price fills in when the item has none",
			request: order.OrderRequest{
				Customer: "somecustomer",
				Items:    []order.ItemRequest{{ProductID: 1, Quantity: 2}},
			},

			reserveFunc: func(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error) {
				return catalog.Product{ID: productID, Price: dec("7.50")}, nil
			},

			wantRepoCallCnt:  map[string]int{"SaveOrder": 1, "SaveSale": 1},
			wantQueueCallCnt: map[string]int{"PublishStockLevel": 1, "PublishSale": 1},
			wantTxCallCnt:    map[string]int{"Commit": 1, "Rollback": 0},
			wantTotal:        "15",
		},
		{
			name: "customer is required",
			request: order.OrderRequest{
				Items: []order.ItemRequest{{ProductID: 1, Quantity: 1}},
			},

			wantRepoCallCnt: map[string]int{"SaveOrder": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 0},
			wantErr:         core.ErrValidation,
		},
		{
			name:    "at least one item is required",
			request: order.OrderRequest{Customer: "somecustomer"},

			wantRepoCallCnt: map[string]int{"SaveOrder": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 0},
			wantErr:         core.ErrValidation,
		},
		{
			name: "item quantity must be positive",
			request: order.OrderRequest{
				Customer: "somecustomer",
				Items:    []order.ItemRequest{{ProductID: 1, Quantity: 0}},
			},

			wantRepoCallCnt: map[string]int{"SaveOrder": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 0},
			wantErr:         core.ErrValidation,
		},
		{
			name: "insufficient stock rolls everything back",
			request: order.OrderRequest{
				Customer: "somecustomer",
				Items:    []order.ItemRequest{{ProductID: 1, Quantity: 5, Price: dec("10.00")}},
			},

			reserveFunc: func(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error) {
				return catalog.Product{}, errors.WithStack(core.ErrInsufficientStock)
			},

			wantRepoCallCnt:  map[string]int{"SaveOrder": 1, "ReplaceItems": 0, "SaveSale": 0},
			wantQueueCallCnt: map[string]int{"PublishStockLevel": 0, "PublishSale": 0},
			wantTxCallCnt:    map[string]int{"Commit": 0, "Rollback": 1},
			wantErr:          core.ErrInsufficientStock,
		},
		{
			name: "discount cannot exceed the subtotal",
			request: order.OrderRequest{
				Customer: "somecustomer",
				Items:    []order.ItemRequest{{ProductID: 1, Quantity: 1, Price: dec("10.00")}},
				Discount: dec("15.00"),
			},

			wantRepoCallCnt: map[string]int{"SaveOrder": 1, "ReplaceItems": 0, "SaveSale": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantErr:         core.ErrValidation,
		},
	}

	for _, tt := range tests {
		mockRepo := orderrepo.NewMockRepo()
		mockStock := order.NewMockStockService()
		if tt.reserveFunc != nil {
			mockStock.ReserveFunc = tt.reserveFunc
		}

		mockTx := db.NewMockTransaction()
		mockRepo.BeginTransactionFunc = func(ctx context.Context) (core.Transaction, error) {
			return mockTx, nil
		}

		mockQueue := queue.NewMockQueue()
		service := order.NewService(mockRepo, &mockStock, mockQueue)

		t.Run(tt.name, func(t *testing.T) {
			o, sale, err := service.CreateOrder(context.Background(), tt.request)
			if tt.wantErr == nil && err != nil {
				t.Errorf("did not want error, got=%v", err)
			} else if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("got error=%v want=%v", err, tt.wantErr)
			}

			if tt.wantErr == nil {
				if !o.TotalAmount.Equal(dec(tt.wantTotal)) {
					t.Errorf("got total=%s want=%s", o.TotalAmount, tt.wantTotal)
				}
				if !sale.TotalAmount.Equal(o.TotalAmount) {
					t.Errorf("sale total=%s does not match order total=%s", sale.TotalAmount, o.TotalAmount)
				}
				if !sale.RemainingAmount.Equal(sale.TotalAmount) {
					t.Errorf("got remaining=%s want=%s", sale.RemainingAmount, sale.TotalAmount)
				}
				if sale.Status != order.SalePending {
					t.Errorf("got sale status=%s want=%s", sale.Status, order.SalePending)
				}
				if o.Status != order.Pending {
					t.Errorf("got order status=%s want=%s", o.Status, order.Pending)
				}
				if o.InvoiceNumber == "" {
					t.Error("order has no invoice number")
				}
			}

			for f, c := range tt.wantRepoCallCnt {
				mockRepo.VerifyCount(f, c, t)
			}
			for f, c := range tt.wantQueueCallCnt {
				mockQueue.VerifyCount(f, c, t)
			}
			for f, c := range tt.wantTxCallCnt {
				mockTx.VerifyCount(f, c, t)
			}
		})
	}
}

func TestUpdateOrder(t *testing.T) {
	tests := []struct {
		name string

		request order.OrderRequest

		getOrderFunc       func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error)
		getSaleByOrderFunc func(ctx context.Context, orderID uint64, options ...core.QueryOptions) (order.Sale, error)

		wantReleaseCnt  int
		wantReserveCnt  int
		wantOrderStatus order.OrderStatus
		wantErr         error
	}{
		{
			name: "items are swapped and the sale rebased",
			request: order.OrderRequest{
				Items: []order.ItemRequest{{ProductID: 3, Quantity: 1, Price: dec("30.00")}},
			},

			wantReleaseCnt:  2,
			wantReserveCnt:  1,
			wantOrderStatus: order.Pending,
		},
		{
			name: "a covered sale completes the order",
			request: order.OrderRequest{
				Items: []order.ItemRequest{{ProductID: 3, Quantity: 1, Price: dec("10.00")}},
			},

			getSaleByOrderFunc: func(ctx context.Context, orderID uint64, options ...core.QueryOptions) (order.Sale, error) {
				return order.Sale{ID: 1, OrderID: orderID, TotalAmount: dec("25.00"), AmountPaid: dec("25.00")}, nil
			},

			wantReleaseCnt:  2,
			wantReserveCnt:  1,
			wantOrderStatus: order.Completed,
		},
		{
			name: "completed orders cannot be updated",
			request: order.OrderRequest{
				Items: []order.ItemRequest{{ProductID: 3, Quantity: 1, Price: dec("30.00")}},
			},

			getOrderFunc: func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error) {
				return order.Order{ID: id, Status: order.Completed}, nil
			},

			wantErr: core.ErrValidation,
		},
		{
			name: "missing order",
			request: order.OrderRequest{
				Items: []order.ItemRequest{{ProductID: 3, Quantity: 1, Price: dec("30.00")}},
			},

			getOrderFunc: func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error) {
				return order.Order{}, core.ErrNotFound
			},

			wantErr: core.ErrNotFound,
		},
	}

	for _, tt := range tests {
		mockRepo := orderrepo.NewMockRepo()
		mockRepo.GetOrderFunc = func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error) {
			return order.Order{
				ID:     id,
				Status: order.Pending,
				Items: []order.OrderItem{
					{ID: 1, OrderID: id, ProductID: 1, Quantity: 2, Price: dec("10.00")},
					{ID: 2, OrderID: id, ProductID: 2, Quantity: 1, Price: dec("5.00")},
				},
			}, nil
		}
		if tt.getOrderFunc != nil {
			mockRepo.GetOrderFunc = tt.getOrderFunc
		}
		if tt.getSaleByOrderFunc != nil {
			mockRepo.GetSaleByOrderFunc = tt.getSaleByOrderFunc
		}

		var updated *order.Order
		mockRepo.UpdateOrderFunc = func(ctx context.Context, o *order.Order, options ...core.UpdateOptions) error {
			updated = o
			return nil
		}

		releases, reserves := 0, 0
		mockStock := order.NewMockStockService()
		mockStock.ReleaseFunc = func(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error) {
			releases++
			return catalog.Product{ID: productID}, nil
		}
		mockStock.ReserveFunc = func(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error) {
			reserves++
			return catalog.Product{ID: productID}, nil
		}

		service := order.NewService(mockRepo, &mockStock, queue.NewMockQueue())

		t.Run(tt.name, func(t *testing.T) {
			_, err := service.UpdateOrder(context.Background(), 42, tt.request)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("got error=%v want=%v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("did not want error, got=%v", err)
			}

			if releases != tt.wantReleaseCnt {
				t.Errorf("got %d releases, want %d", releases, tt.wantReleaseCnt)
			}
			if reserves != tt.wantReserveCnt {
				t.Errorf("got %d reserves, want %d", reserves, tt.wantReserveCnt)
			}
			if updated.Status != tt.wantOrderStatus {
				t.Errorf("got order status=%s want=%s", updated.Status, tt.wantOrderStatus)
			}
		})
	}
}

func TestCancelOrder(t *testing.T) {
	tests := []struct {
		name string

		getOrderFunc func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error)

		wantStatus order.OrderStatus
		wantErr    error
	}{
		{
			name: "pending order is canceled and stock returned",

			getOrderFunc: func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error) {
				return order.Order{
					ID:     id,
					Status: order.Pending,
					Items:  []order.OrderItem{{ProductID: 1, Quantity: 2, Price: dec("10.00")}},
				}, nil
			},

			wantStatus: order.Canceled,
		},
		{
			name: "completed orders cannot be canceled",

			getOrderFunc: func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error) {
				return order.Order{ID: id, Status: order.Completed}, nil
			},

			wantErr: core.ErrValidation,
		},
	}

	for _, tt := range tests {
		mockRepo := orderrepo.NewMockRepo()
		mockRepo.GetOrderFunc = tt.getOrderFunc

		releases := 0
		mockStock := order.NewMockStockService()
		mockStock.ReleaseFunc = func(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error) {
			releases++
			return catalog.Product{ID: productID}, nil
		}

		service := order.NewService(mockRepo, &mockStock, queue.NewMockQueue())

		t.Run(tt.name, func(t *testing.T) {
			o, err := service.CancelOrder(context.Background(), 42)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("got error=%v want=%v", err, tt.wantErr)
				}
				if releases != 0 {
					t.Errorf("got %d releases, want 0", releases)
				}
				return
			}
			if err != nil {
				t.Fatalf("did not want error, got=%v", err)
			}

			if o.Status != tt.wantStatus {
				t.Errorf("got status=%s want=%s", o.Status, tt.wantStatus)
			}
			if releases != 1 {
				t.Errorf("got %d releases, want 1", releases)
			}
		})
	}
}

func TestCompleteOrder(t *testing.T) {
	t.Run("pending order is completed", func(t *testing.T) {
		mockRepo := orderrepo.NewMockRepo()
		mockRepo.GetOrderFunc = func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error) {
			return order.Order{ID: id, Status: order.Pending}, nil
		}

		mockStock := order.NewMockStockService()
		service := order.NewService(mockRepo, &mockStock, queue.NewMockQueue())

		o, err := service.CompleteOrder(context.Background(), 42)
		if err != nil {
			t.Fatalf("did not want error, got=%v", err)
		}
		if o.Status != order.Completed {
			t.Errorf("got status=%s want=%s", o.Status, order.Completed)
		}
	})

	t.Run("canceled order stays canceled", func(t *testing.T) {
		mockRepo := orderrepo.NewMockRepo()
		mockRepo.GetOrderFunc = func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error) {
			return order.Order{ID: id, Status: order.Canceled}, nil
		}

		mockStock := order.NewMockStockService()
		service := order.NewService(mockRepo, &mockStock, queue.NewMockQueue())

		_, err := service.CompleteOrder(context.Background(), 42)
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("got error=%v want=%v", err, core.ErrValidation)
		}
	})
}

func TestDeleteOrder(t *testing.T) {
	tests := []struct {
		name string

		status order.OrderStatus

		wantReleaseCnt int
	}{
		{
			name:           "deleting a pending order returns its stock",
			status:         order.Pending,
			wantReleaseCnt: 1,
		},
		{
			name:           "deleting a completed order leaves stock alone",
			status:         order.Completed,
			wantReleaseCnt: 0,
		},
	}

	for _, tt := range tests {
		mockRepo := orderrepo.NewMockRepo()
		mockRepo.GetOrderFunc = func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error) {
			return order.Order{
				ID:     id,
				Status: tt.status,
				Items:  []order.OrderItem{{ProductID: 1, Quantity: 2, Price: dec("10.00")}},
			}, nil
		}

		releases := 0
		mockStock := order.NewMockStockService()
		mockStock.ReleaseFunc = func(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error) {
			releases++
			return catalog.Product{ID: productID}, nil
		}

		service := order.NewService(mockRepo, &mockStock, queue.NewMockQueue())

		t.Run(tt.name, func(t *testing.T) {
			if err := service.DeleteOrder(context.Background(), 42); err != nil {
				t.Fatalf("did not want error, got=%v", err)
			}
			if releases != tt.wantReleaseCnt {
				t.Errorf("got %d releases, want %d", releases, tt.wantReleaseCnt)
			}
			mockRepo.VerifyCount("DeleteSaleByOrder", 1, t)
			mockRepo.VerifyCount("DeleteOrder", 1, t)
		})
	}
}

func TestConfirmPayment(t *testing.T) {
	tests := []struct {
		name string

		request order.PaymentRequest

		getOrderFunc       func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error)
		getSaleByOrderFunc func(ctx context.Context, orderID uint64, options ...core.QueryOptions) (order.Sale, error)

		wantSaleStatus   order.SaleStatus
		wantRemaining    string
		wantOverPaid     string
		wantNotes        string
		wantOrderUpdates int
		wantErr          error
	}{
		{
			name:    "partial payment leaves the order open",
			request: order.PaymentRequest{OrderID: 42, Method: order.MethodCash, Amount: dec("60")},

			wantSaleStatus:   order.SaleHalfPaid,
			wantRemaining:    "40",
			wantOverPaid:     "0",
			wantOrderUpdates: 0,
		},
		{
			name:    "full payment completes the order",
			request: order.PaymentRequest{OrderID: 42, Method: order.MethodCard, Amount: dec("100")},

			wantSaleStatus:   order.SalePaid,
			wantRemaining:    "0",
			wantOverPaid:     "0",
			wantOrderUpdates: 1,
		},
		{
			name:    "overpayment is recorded not refused",
			request: order.PaymentRequest{OrderID: 42, Method: order.MethodCash, Amount: dec("110")},

			wantSaleStatus:   order.SalePaid,
			wantRemaining:    "0",
			wantOverPaid:     "10",
			wantOrderUpdates: 1,
		},
		{
			name:    "mobile payments keep their reference notes",
			request: order.PaymentRequest{OrderID: 42, Method: order.MethodMobile, Amount: dec("100"), Notes: "txn-12345"},

			wantSaleStatus:   order.SalePaid,
			wantRemaining:    "0",
			wantOverPaid:     "0",
			wantNotes:        "txn-12345",
			wantOrderUpdates: 1,
		},
		{
			name:    "cash payments drop the notes",
			request: order.PaymentRequest{OrderID: 42, Method: order.MethodCash, Amount: dec("100"), Notes: "irrelevant"},

			wantSaleStatus:   order.SalePaid,
			wantRemaining:    "0",
			wantOverPaid:     "0",
			wantNotes:        "",
			wantOrderUpdates: 1,
		},
		{
			name:    "canceled orders refuse payment",
			request: order.PaymentRequest{OrderID: 42, Method: order.MethodCash, Amount: dec("10")},

			getOrderFunc: func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error) {
				return order.Order{ID: id, Status: order.Canceled}, nil
			},

			wantErr: core.ErrValidation,
		},
		{
			name:    "amount must be positive",
			request: order.PaymentRequest{OrderID: 42, Method: order.MethodCash, Amount: dec("0")},
			wantErr: core.ErrValidation,
		},
		{
			name:    "payment method is required",
			request: order.PaymentRequest{OrderID: 42, Amount: dec("10")},
			wantErr: core.ErrValidation,
		},
		{
			name:    "order id is required",
			request: order.PaymentRequest{Method: order.MethodCash, Amount: dec("10")},
			wantErr: core.ErrValidation,
		},
	}

	for _, tt := range tests {
		mockRepo := orderrepo.NewMockRepo()
		mockRepo.GetOrderFunc = func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error) {
			return order.Order{ID: id, Status: order.Pending}, nil
		}
		if tt.getOrderFunc != nil {
			mockRepo.GetOrderFunc = tt.getOrderFunc
		}
		mockRepo.GetSaleByOrderFunc = func(ctx context.Context, orderID uint64, options ...core.QueryOptions) (order.Sale, error) {
			return order.Sale{ID: 1, OrderID: orderID, TotalAmount: dec("100"), RemainingAmount: dec("100"), Status: order.SalePending}, nil
		}
		if tt.getSaleByOrderFunc != nil {
			mockRepo.GetSaleByOrderFunc = tt.getSaleByOrderFunc
		}

		orderUpdates := 0
		mockRepo.UpdateOrderFunc = func(ctx context.Context, o *order.Order, options ...core.UpdateOptions) error {
			orderUpdates++
			if o.Status != order.Completed {
				t.Errorf("got order status=%s want=%s", o.Status, order.Completed)
			}
			return nil
		}

		mockStock := order.NewMockStockService()
		mockQueue := queue.NewMockQueue()
		service := order.NewService(mockRepo, &mockStock, mockQueue)

		t.Run(tt.name, func(t *testing.T) {
			sale, err := service.ConfirmPayment(context.Background(), tt.request)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("got error=%v want=%v", err, tt.wantErr)
				}
				mockQueue.VerifyCount("PublishSale", 0, t)
				return
			}
			if err != nil {
				t.Fatalf("did not want error, got=%v", err)
			}

			if sale.Status != tt.wantSaleStatus {
				t.Errorf("got sale status=%s want=%s", sale.Status, tt.wantSaleStatus)
			}
			if !sale.RemainingAmount.Equal(dec(tt.wantRemaining)) {
				t.Errorf("got remaining=%s want=%s", sale.RemainingAmount, tt.wantRemaining)
			}
			if !sale.OverPaid.Equal(dec(tt.wantOverPaid)) {
				t.Errorf("got overPaid=%s want=%s", sale.OverPaid, tt.wantOverPaid)
			}
			if sale.Notes != tt.wantNotes {
				t.Errorf("got notes=%q want=%q", sale.Notes, tt.wantNotes)
			}
			if orderUpdates != tt.wantOrderUpdates {
				t.Errorf("got %d order updates, want %d", orderUpdates, tt.wantOrderUpdates)
			}
			mockQueue.VerifyCount("PublishSale", 1, t)
		})
	}
}

// Two installments against the same order must accumulate, never overwrite.
func TestConfirmPaymentInstallments(t *testing.T) {
	sale := order.Sale{ID: 1, OrderID: 42, TotalAmount: dec("100"), RemainingAmount: dec("100"), Status: order.SalePending}
	ord := order.Order{ID: 42, Status: order.Pending}

	mockRepo := orderrepo.NewMockRepo()
	mockRepo.GetOrderFunc = func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error) {
		return ord, nil
	}
	mockRepo.GetSaleByOrderFunc = func(ctx context.Context, orderID uint64, options ...core.QueryOptions) (order.Sale, error) {
		return sale, nil
	}
	mockRepo.UpdateSaleFunc = func(ctx context.Context, s *order.Sale, options ...core.UpdateOptions) error {
		sale = *s
		return nil
	}
	mockRepo.UpdateOrderFunc = func(ctx context.Context, o *order.Order, options ...core.UpdateOptions) error {
		ord = *o
		return nil
	}

	mockStock := order.NewMockStockService()
	service := order.NewService(mockRepo, &mockStock, queue.NewMockQueue())

	ctx := context.Background()
	first, err := service.ConfirmPayment(ctx, order.PaymentRequest{OrderID: 42, Method: order.MethodCash, Amount: dec("60")})
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if first.Status != order.SaleHalfPaid {
		t.Errorf("got status=%s want=%s", first.Status, order.SaleHalfPaid)
	}

	second, err := service.ConfirmPayment(ctx, order.PaymentRequest{OrderID: 42, Method: order.MethodCard, Amount: dec("50")})
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}

	if !second.AmountPaid.Equal(dec("110")) {
		t.Errorf("got amountPaid=%s want=110", second.AmountPaid)
	}
	if !second.OverPaid.Equal(dec("10")) {
		t.Errorf("got overPaid=%s want=10", second.OverPaid)
	}
	if second.Status != order.SalePaid {
		t.Errorf("got status=%s want=%s", second.Status, order.SalePaid)
	}
	if ord.Status != order.Completed {
		t.Errorf("got order status=%s want=%s", ord.Status, order.Completed)
	}

	// A paid order takes further payment without flipping status again.
	third, err := service.ConfirmPayment(ctx, order.PaymentRequest{OrderID: 42, Method: order.MethodCash, Amount: dec("5")})
	if err != nil {
		t.Fatalf("third payment: %v", err)
	}
	if !third.OverPaid.Equal(dec("15")) {
		t.Errorf("got overPaid=%s want=15", third.OverPaid)
	}
}

// Two payments landing at the same time must both be reflected, exactly as if
// they had arrived one after the other. The fake repo serializes each payment
// transaction the way the row lock does in Postgres.
func TestConfirmPaymentConcurrent(t *testing.T) {
	sale := order.Sale{ID: 1, OrderID: 42, TotalAmount: dec("100"), RemainingAmount: dec("100"), Status: order.SalePending}
	ord := order.Order{ID: 42, Status: order.Pending}

	var mu sync.Mutex
	mockRepo := orderrepo.NewMockRepo()
	mockRepo.BeginTransactionFunc = func(ctx context.Context) (core.Transaction, error) {
		mu.Lock()
		tx := db.NewMockTransaction()
		tx.CommitFunc = func(ctx context.Context) error {
			mu.Unlock()
			return nil
		}
		tx.RollbackFunc = func(ctx context.Context) error {
			mu.Unlock()
			return nil
		}
		return tx, nil
	}
	mockRepo.GetOrderFunc = func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error) {
		return ord, nil
	}
	mockRepo.GetSaleByOrderFunc = func(ctx context.Context, orderID uint64, options ...core.QueryOptions) (order.Sale, error) {
		return sale, nil
	}
	mockRepo.UpdateSaleFunc = func(ctx context.Context, s *order.Sale, options ...core.UpdateOptions) error {
		sale = *s
		return nil
	}
	mockRepo.UpdateOrderFunc = func(ctx context.Context, o *order.Order, options ...core.UpdateOptions) error {
		ord = *o
		return nil
	}

	mockStock := order.NewMockStockService()
	service := order.NewService(mockRepo, &mockStock, queue.NewMockQueue())

	var wg sync.WaitGroup
	for _, amount := range []string{"60", "50"} {
		wg.Add(1)
		go func(amount string) {
			defer wg.Done()
			if _, err := service.ConfirmPayment(context.Background(),
				order.PaymentRequest{OrderID: 42, Method: order.MethodCash, Amount: dec(amount)}); err != nil {
				t.Errorf("payment of %s: %v", amount, err)
			}
		}(amount)
	}
	wg.Wait()

	if !sale.AmountPaid.Equal(dec("110")) {
		t.Errorf("got amountPaid=%s want=110", sale.AmountPaid)
	}
	if !sale.OverPaid.Equal(dec("10")) {
		t.Errorf("got overPaid=%s want=10", sale.OverPaid)
	}
	if !sale.RemainingAmount.Equal(dec("0")) {
		t.Errorf("got remaining=%s want=0", sale.RemainingAmount)
	}
	if sale.Status != order.SalePaid {
		t.Errorf("got status=%s want=%s", sale.Status, order.SalePaid)
	}
	if ord.Status != order.Completed {
		t.Errorf("got order status=%s want=%s", ord.Status, order.Completed)
	}
}

func TestConfirmPaymentConflictRetries(t *testing.T) {
	mockRepo := orderrepo.NewMockRepo()
	mockRepo.GetOrderFunc = func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error) {
		return order.Order{ID: id, Status: order.Pending}, nil
	}
	mockRepo.UpdateSaleFunc = func(ctx context.Context, s *order.Sale, options ...core.UpdateOptions) error {
		return serializationFailure()
	}

	mockStock := order.NewMockStockService()
	service := order.NewService(mockRepo, &mockStock, queue.NewMockQueue())

	_, err := service.ConfirmPayment(context.Background(),
		order.PaymentRequest{OrderID: 42, Method: order.MethodCash, Amount: dec("10")})
	if !errors.Is(err, core.ErrConflict) {
		t.Errorf("got error=%v want=%v", err, core.ErrConflict)
	}
	mockRepo.VerifyCount("UpdateSale", 3, t)
}

func serializationFailure() error {
	return &pgconn.PgError{Code: "40001"}
}
