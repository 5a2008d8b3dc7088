package services

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeOrderStore struct {
	items map[primitive.ObjectID]*models.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{items: map[primitive.ObjectID]*models.Order{}}
}

func (s *fakeOrderStore) Insert(ctx context.Context, order *models.Order) error {
	order.ID = primitive.NewObjectID()
	cp := *order
	s.items[order.ID] = &cp
	return nil
}

func (s *fakeOrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, ok := s.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) FindByNumber(ctx context.Context, number string) (*models.Order, error) {
	for _, o := range s.items {
		if o.OrderNumber == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeOrderStore) List(ctx context.Context, f models.OrderFilter) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range s.items {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			hay := strings.ToLower(strings.Join([]string{o.OrderNumber, o.Customer.FullName, o.Customer.Email, o.Customer.Phone}, " "))
			if !strings.Contains(hay, q) {
				continue
			}
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	start := (f.Page - 1) * f.Limit
	if start > len(out) {
		start = len(out)
	}
	end := start + f.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (s *fakeOrderStore) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	counts := map[models.OrderStatus]int64{}
	for _, o := range s.items {
		counts[o.Status]++
	}
	return counts, nil
}

func (s *fakeOrderStore) Save(ctx context.Context, order *models.Order) error {
	cp := *order
	s.items[order.ID] = &cp
	return nil
}

func (s *fakeOrderStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := s.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

type recordingNotifier struct {
	orders  []*models.Order
	changes []models.OrderStatus
}

func (n *recordingNotifier) NotifyNewOrder(order *models.Order) {
	n.orders = append(n.orders, order)
}

func (n *recordingNotifier) NotifyStatusChange(order *models.Order) {
	n.changes = append(n.changes, order.Status)
}

type recordingMailer struct {
	sent chan string
}

func (m *recordingMailer) SendOrderConfirmation(order *models.Order) error {
	m.sent <- order.OrderNumber
	return nil
}

type recordingSubscriber struct {
	emails []string
}

func (r *recordingSubscriber) Subscribe(ctx context.Context, email, source string) (*models.Newsletter, error) {
	r.emails = append(r.emails, email+"/"+source)
	return &models.Newsletter{Email: email, Source: source}, nil
}

func testCustomer() models.Customer {
	return models.Customer{
		FullName: "Sam Lee",
		Email:    " Sam@Example.com ",
		Phone:    "+96170000000",
		Address:  "1 Main St",
		City:     "Beirut",
	}
}

func TestPlaceOrder(t *testing.T) {
	f := newProductFixture()
	orders := newFakeOrderStore()
	notifier := &recordingNotifier{}
	mailer := &recordingMailer{sent: make(chan string, 1)}
	subscriber := &recordingSubscriber{}
	svc := NewOrderService(orders, f.products, NewPricingPolicy(250, 5000), zap.NewNop(),
		WithNotifier(notifier), WithMailer(mailer), WithSubscriber(subscriber))
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	order, err := svc.PlaceOrder(context.Background(), models.PlaceOrderRequest{
		Customer: testCustomer(),
		Items: []models.CartLine{
			{ProductID: f.shirt.ID.Hex(), Quantity: 1},
			{ProductID: f.phone.ID.Hex(), Quantity: 1},
			{ProductID: f.shirt.ID.Hex(), Quantity: 2},
		},
		Notes:     " ring the bell ",
		Subscribe: true,
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^ORD-[0-9A-Z]+-[0-9A-Z]{5}$`), order.OrderNumber)
	assert.Equal(t, models.StatusPending, order.Status)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, "sam@example.com", order.Customer.Email)
	assert.Equal(t, "ring the bell", order.Notes)
	assert.Equal(t, models.DefaultPaymentMethod, order.PaymentMethod)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "Oxford Shirt", order.Items[0].Name)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, 148.5, order.Items[0].Total)
	assert.Equal(t, 947.5, order.Subtotal)
	assert.Equal(t, float64(250), order.DeliveryFee)
	assert.Equal(t, 1197.5, order.Total)

	assert.Equal(t, 7, f.products.items[f.shirt.ID].Stock)
	assert.Equal(t, 4, f.products.items[f.phone.ID].Stock)
	assert.Len(t, orders.items, 1)
	require.Len(t, notifier.orders, 1)
	assert.Equal(t, []string{"sam@example.com/checkout"}, subscriber.emails)

	select {
	case number := <-mailer.sent:
		assert.Equal(t, order.OrderNumber, number)
	case <-time.After(time.Second):
		t.Fatal("confirmation mail was not sent")
	}
}

func TestPlaceOrderFreeDelivery(t *testing.T) {
	f := newProductFixture()
	svc := NewOrderService(newFakeOrderStore(), f.products, NewPricingPolicy(250, 5000), zap.NewNop())

	order, err := svc.PlaceOrder(context.Background(), models.PlaceOrderRequest{
		Customer: testCustomer(),
		Items:    []models.CartLine{{ProductID: f.phone.ID.Hex(), Quantity: 5}, {ProductID: f.laptop.ID.Hex(), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(5294), order.Subtotal)
	assert.Zero(t, order.DeliveryFee)
}

func TestPlaceOrderRejections(t *testing.T) {
	f := newProductFixture()
	orders := newFakeOrderStore()
	svc := NewOrderService(orders, f.products, NewPricingPolicy(250, 5000), zap.NewNop())
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, models.PlaceOrderRequest{Customer: testCustomer()})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.PlaceOrder(ctx, models.PlaceOrderRequest{Customer: testCustomer(),
		Items: []models.CartLine{{ProductID: f.hiddenCase.ID.Hex(), Quantity: 1}}})
	assert.ErrorIs(t, err, ErrProductUnavailable)

	_, err = svc.PlaceOrder(ctx, models.PlaceOrderRequest{Customer: testCustomer(),
		Items: []models.CartLine{{ProductID: f.laptop.ID.Hex(), Quantity: 3}}})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.PlaceOrder(ctx, models.PlaceOrderRequest{Customer: testCustomer(),
		Items: []models.CartLine{{ProductID: "xyz", Quantity: 1}}})
	assert.ErrorIs(t, err, ErrInvalidOrderRequest)

	badPhone := testCustomer()
	badPhone.Phone = "12"
	_, err = svc.PlaceOrder(ctx, models.PlaceOrderRequest{Customer: badPhone,
		Items: []models.CartLine{{ProductID: f.laptop.ID.Hex(), Quantity: 1}}})
	assert.ErrorIs(t, err, ErrInvalidOrderRequest)

	assert.Empty(t, orders.items)
	assert.Equal(t, 2, f.products.items[f.laptop.ID].Stock)
}

func seedOrders(t *testing.T, store *fakeOrderStore, n int) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		status := models.StatusPending
		if i%3 == 0 {
			status = models.StatusShipped
		}
		require.NoError(t, store.Insert(context.Background(), &models.Order{
			OrderNumber: "ORD-TEST-" + string(rune('A'+i%26)) + string(rune('A'+i/26)),
			Customer:    models.Customer{FullName: "Customer", Email: "c@example.com", Phone: "123"},
			Status:      status,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func TestListOrders(t *testing.T) {
	store := newFakeOrderStore()
	seedOrders(t, store, 45)
	svc := NewOrderService(store, newFakeProductStore(), NewPricingPolicy(0, 0), zap.NewNop())
	ctx := context.Background()

	list, err := svc.List(ctx, "all", "", 2)
	require.NoError(t, err)
	assert.Len(t, list.Orders, models.OrdersPageSize)
	assert.Equal(t, int64(45), list.Counts["all"])
	assert.Equal(t, int64(15), list.Counts["shipped"])
	assert.Equal(t, int64(30), list.Counts["pending"])
	assert.Equal(t, int64(0), list.Counts["cancelled"])
	assert.Equal(t, 3, list.Pagination.TotalPages)
	assert.True(t, list.Pagination.HasNext)
	assert.True(t, list.Pagination.HasPrev)

	list, err = svc.List(ctx, "shipped", "", 1)
	require.NoError(t, err)
	assert.Len(t, list.Orders, 15)
	assert.Equal(t, "shipped", list.Filters["status"])

	_, err = svc.List(ctx, "lost", "", 1)
	assert.ErrorIs(t, err, models.ErrUnknownOrderStatus)
}

func TestUpdateStatusAppendsHistory(t *testing.T) {
	store := newFakeOrderStore()
	order := &models.Order{OrderNumber: "ORD-1-ABCDE", Status: models.StatusPending,
		StatusHistory: []models.StatusChange{{Status: models.StatusPending}}}
	require.NoError(t, store.Insert(context.Background(), order))
	notifier := &recordingNotifier{}
	svc := NewOrderService(store, newFakeProductStore(), NewPricingPolicy(0, 0), zap.NewNop(), WithNotifier(notifier))
	ctx := context.Background()

	updated, err := svc.UpdateStatus(ctx, order.ID, models.UpdateOrderStatusRequest{
		Status:            "shipped",
		TrackingNumber:    "TRK123",
		EstimatedDelivery: "2024-03-10",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, updated.Status)
	require.Len(t, updated.StatusHistory, 2)
	assert.Equal(t, "Status changed to shipped", updated.StatusHistory[1].Note)
	assert.Equal(t, "TRK123", updated.TrackingNumber)
	require.NotNil(t, updated.EstimatedDelivery)
	assert.Equal(t, 10, updated.EstimatedDelivery.Day())
	assert.Equal(t, []models.OrderStatus{models.StatusShipped}, notifier.changes)

	tracked, err := svc.Track(ctx, "ord-1-abcde")
	require.NoError(t, err)
	tracking := tracked.Tracking()
	assert.Equal(t, 3, tracking.Step)
	assert.Equal(t, "Shipped", tracking.StatusDisplay)

	_, err = svc.UpdateStatus(ctx, order.ID, models.UpdateOrderStatusRequest{Status: "teleported"})
	assert.ErrorIs(t, err, models.ErrUnknownOrderStatus)

	_, err = svc.UpdateStatus(ctx, primitive.NewObjectID(), models.UpdateOrderStatusRequest{Status: "shipped"})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	require.NoError(t, svc.Delete(ctx, order.ID))
	_, err = svc.Track(ctx, "ORD-1-ABCDE")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
