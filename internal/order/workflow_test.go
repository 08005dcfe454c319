package order

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pagalvan/TryOn/internal/catalog"
	"github.com/pagalvan/TryOn/internal/customer"
	"github.com/pagalvan/TryOn/internal/inventory"
)

func newTestWorkflow(stocks map[string]int) (*Workflow, *fakeOrders, *fakeLedger) {
	orders := newFakeOrders()
	ledger := newFakeLedger(stocks)
	cat := fakeCatalog{
		"shirt": {ID: "shirt", Name: "Linen Shirt", UnitPrice: 25},
		"jeans": {ID: "jeans", Name: "Slim Jeans", UnitPrice: 40},
	}
	customers := fakeCustomers{"c1": {ID: "c1", FullName: "Ana Torres"}}
	logger := log.New(io.Discard, "", 0)

	return NewWorkflow(orders, ledger, cat, customers, logger), orders, ledger
}

func TestPlaceOrder(t *testing.T) {
	w, orders, ledger := newTestWorkflow(map[string]int{"shirt": 10, "jeans": 5})

	o, err := w.PlaceOrder(context.Background(), "c1", []LineRequest{
		{GarmentID: "shirt", Quantity: 2},
		{GarmentID: "jeans", Quantity: 1},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, o.Status)
	require.Equal(t, "c1", o.CustomerID)
	require.Len(t, o.Lines, 2)

	// prices come from the catalog, not the request
	require.Equal(t, 25.0, o.Lines[0].UnitPrice)
	require.Equal(t, 90.0, o.Total())

	require.Equal(t, 8, ledger.stocks["shirt"])
	require.Equal(t, 4, ledger.stocks["jeans"])

	stored, err := orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, stored.Status)
}

func TestPlaceOrder_Validation(t *testing.T) {
	w, orders, _ := newTestWorkflow(map[string]int{"shirt": 10})

	cases := map[string]struct {
		customerID string
		reqs       []LineRequest
		wantField  string
	}{
		"missing customer": {
			customerID: "",
			reqs:       []LineRequest{{GarmentID: "shirt", Quantity: 1}},
			wantField:  "customerId",
		},
		"unknown customer": {
			customerID: "ghost",
			reqs:       []LineRequest{{GarmentID: "shirt", Quantity: 1}},
			wantField:  "customerId",
		},
		"no lines": {
			customerID: "c1",
			reqs:       nil,
			wantField:  "lines",
		},
		"missing garment id": {
			customerID: "c1",
			reqs:       []LineRequest{{GarmentID: "", Quantity: 1}},
			wantField:  "garmentId",
		},
		"unknown garment": {
			customerID: "c1",
			reqs:       []LineRequest{{GarmentID: "hat", Quantity: 1}},
			wantField:  "garmentId",
		},
		"zero quantity": {
			customerID: "c1",
			reqs:       []LineRequest{{GarmentID: "shirt", Quantity: 0}},
			wantField:  "quantity",
		},
		"negative quantity": {
			customerID: "c1",
			reqs:       []LineRequest{{GarmentID: "shirt", Quantity: -3}},
			wantField:  "quantity",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := w.PlaceOrder(context.Background(), tc.customerID, tc.reqs)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Equal(t, tc.wantField, vErr.Field)
			require.Empty(t, orders.all(), "no order may be persisted on validation failure")
		})
	}
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	w, orders, ledger := newTestWorkflow(map[string]int{"shirt": 1})

	_, err := w.PlaceOrder(context.Background(), "c1", []LineRequest{
		{GarmentID: "shirt", Quantity: 3},
	})

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, "shirt", stockErr.GarmentID)
	require.Equal(t, 3, stockErr.Requested)
	require.Equal(t, 1, stockErr.Available)

	require.Empty(t, orders.all())
	require.Equal(t, 1, ledger.stocks["shirt"])
}

func TestPlaceOrder_EmptyLedger(t *testing.T) {
	w, orders, ledger := newTestWorkflow(nil)
	ledger.noSnapshot = true

	_, err := w.PlaceOrder(context.Background(), "c1", []LineRequest{
		{GarmentID: "shirt", Quantity: 1},
	})
	require.ErrorIs(t, err, inventory.ErrNoSnapshot)
	require.Empty(t, orders.all())
}

func TestPlaceOrder_DeductionFailureCompensates(t *testing.T) {
	// The precheck passes, then the jeans deduction fails as if a
	// concurrent order drained the stock in between.
	w, orders, ledger := newTestWorkflow(map[string]int{"shirt": 10, "jeans": 5})
	ledger.adjustErr = map[string]error{
		"jeans": &inventory.InsufficientStockError{GarmentID: "jeans", Requested: 1, Available: 0},
	}

	_, err := w.PlaceOrder(context.Background(), "c1", []LineRequest{
		{GarmentID: "shirt", Quantity: 2},
		{GarmentID: "jeans", Quantity: 1},
	})

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, "jeans", stockErr.GarmentID)

	// the shirt deduction was reversed
	require.Equal(t, 10, ledger.stocks["shirt"])

	all := orders.all()
	require.Len(t, all, 1)
	require.Equal(t, StatusCancelled, all[0].Status)
}

func TestCancelOrder(t *testing.T) {
	w, orders, ledger := newTestWorkflow(map[string]int{"shirt": 10})

	o, err := w.PlaceOrder(context.Background(), "c1", []LineRequest{
		{GarmentID: "shirt", Quantity: 4},
	})
	require.NoError(t, err)
	require.Equal(t, 6, ledger.stocks["shirt"])

	require.NoError(t, w.CancelOrder(context.Background(), o.ID))

	stored, err := orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, stored.Status)
	require.Equal(t, 10, ledger.stocks["shirt"])
}

func TestCancelOrder_NotFound(t *testing.T) {
	w, _, _ := newTestWorkflow(nil)

	err := w.CancelOrder(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCancelOrder_TerminalState(t *testing.T) {
	for _, status := range []Status{StatusCompleted, StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			w, orders, ledger := newTestWorkflow(map[string]int{"shirt": 10})
			orders.put(&Order{
				ID:         "o1",
				CustomerID: "c1",
				Status:     status,
				Lines:      []Line{{GarmentID: "shirt", Quantity: 2, UnitPrice: 25}},
			})

			err := w.CancelOrder(context.Background(), "o1")

			var stateErr *StateError
			require.ErrorAs(t, err, &stateErr)
			require.Equal(t, status, stateErr.Current)
			require.Equal(t, StatusCancelled, stateErr.Attempted)
			require.Equal(t, 10, ledger.stocks["shirt"], "terminal orders must not restock")
		})
	}
}

func TestCancelOrder_NoSnapshotSkipsRestock(t *testing.T) {
	w, orders, ledger := newTestWorkflow(map[string]int{"shirt": 10})
	orders.put(&Order{
		ID:         "o1",
		CustomerID: "c1",
		Status:     StatusPending,
		Lines:      []Line{{GarmentID: "shirt", Quantity: 2, UnitPrice: 25}},
	})
	ledger.noSnapshot = true

	require.NoError(t, w.CancelOrder(context.Background(), "o1"))

	stored, err := orders.GetByID(context.Background(), "o1")
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, stored.Status)
	require.Equal(t, 10, ledger.stocks["shirt"])
}

// --- fakes ---

type fakeOrders struct {
	orders    map[string]*Order
	createErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[string]*Order)}
}

func (f *fakeOrders) put(o *Order) { f.orders[o.ID] = o }

func (f *fakeOrders) all() []*Order {
	var out []*Order
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out
}

func (f *fakeOrders) Create(_ context.Context, o *Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, orderID string) (*Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) ListByCustomer(_ context.Context, customerID string) ([]Order, error) {
	var out []Order
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListByStatus(_ context.Context, status Status) ([]Order, error) {
	var out []Order
	for _, o := range f.orders {
		if o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, orderID string, from, to Status) error {
	o, ok := f.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	if o.Status != from {
		return &StateError{OrderID: orderID, Current: o.Status, Attempted: to}
	}
	o.Status = to
	return nil
}

func (f *fakeOrders) ReplaceLines(_ context.Context, orderID string, lines []Line) error {
	o, ok := f.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.Lines = lines
	return nil
}

type fakeLedger struct {
	stocks     map[string]int
	noSnapshot bool
	adjustErr  map[string]error
}

func newFakeLedger(stocks map[string]int) *fakeLedger {
	cp := make(map[string]int, len(stocks))
	for k, v := range stocks {
		cp[k] = v
	}
	return &fakeLedger{stocks: cp}
}

func (f *fakeLedger) CurrentSnapshot(context.Context) (inventory.Snapshot, error) {
	if f.noSnapshot {
		return inventory.Snapshot{}, inventory.ErrNoSnapshot
	}
	return inventory.Snapshot{ID: "snap-1"}, nil
}

func (f *fakeLedger) GetQuantity(_ context.Context, snapshotID, garmentID string) (int, error) {
	if snapshotID != "snap-1" {
		return 0, inventory.ErrNotFound
	}
	return f.stocks[garmentID], nil
}

func (f *fakeLedger) AdjustQuantity(_ context.Context, snapshotID, garmentID string, delta int) error {
	if snapshotID != "snap-1" {
		return inventory.ErrNotFound
	}
	if err, ok := f.adjustErr[garmentID]; ok && delta < 0 {
		return err
	}
	next := f.stocks[garmentID] + delta
	if next < 0 {
		return &inventory.InsufficientStockError{
			GarmentID: garmentID,
			Requested: -delta,
			Available: f.stocks[garmentID],
		}
	}
	f.stocks[garmentID] = next
	return nil
}

func (f *fakeLedger) RemoveGarment(_ context.Context, snapshotID, garmentID string) error {
	delete(f.stocks, garmentID)
	return nil
}

type fakeCatalog map[string]catalog.Garment

func (f fakeCatalog) ResolveGarment(_ context.Context, garmentID string) (catalog.Garment, error) {
	g, ok := f[garmentID]
	if !ok {
		return catalog.Garment{}, catalog.ErrNotFound
	}
	return g, nil
}

type fakeCustomers map[string]customer.Customer

func (f fakeCustomers) ResolveCustomer(_ context.Context, customerID string) (customer.Customer, error) {
	c, ok := f[customerID]
	if !ok {
		return customer.Customer{}, customer.ErrNotFound
	}
	return c, nil
}
