package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/repositories"
	"github.com/HSouheill/storefront_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrProductUnavailable  = errors.New("product is no longer available")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidOrderRequest = errors.New("invalid order request")
)

// OrderStore is the persistence the order service needs.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error)
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
	Save(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// OrderNotifier is told about every new order and status change.
type OrderNotifier interface {
	NotifyNewOrder(order *models.Order)
	NotifyStatusChange(order *models.Order)
}

// Subscriber captures a newsletter address.
type Subscriber interface {
	Subscribe(ctx context.Context, email, source string) (*models.Newsletter, error)
}

type OrderService struct {
	orders     OrderStore
	products   ProductStore
	pricing    PricingPolicy
	notifier   OrderNotifier
	mailer     Mailer
	subscriber Subscriber
	logger     *zap.Logger
	now        func() time.Time
}

type OrderServiceOption func(*OrderService)

func WithNotifier(n OrderNotifier) OrderServiceOption {
	return func(s *OrderService) { s.notifier = n }
}

func WithMailer(m Mailer) OrderServiceOption {
	return func(s *OrderService) { s.mailer = m }
}

func WithSubscriber(sub Subscriber) OrderServiceOption {
	return func(s *OrderService) { s.subscriber = sub }
}

func NewOrderService(orders OrderStore, products ProductStore, pricing PricingPolicy, logger *zap.Logger, opts ...OrderServiceOption) *OrderService {
	s := &OrderService{
		orders:   orders,
		products: products,
		pricing:  pricing,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder prices the cart from the stored products, saves the order and
// then decrements stock. Stock updates are best-effort: a failure is logged
// and the order stands.
func (s *OrderService) PlaceOrder(ctx context.Context, req models.PlaceOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// merge repeated lines of the same product
	quantities := map[primitive.ObjectID]int{}
	var ids []primitive.ObjectID
	for _, line := range req.Items {
		id, err := primitive.ObjectIDFromHex(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid product id %q", ErrInvalidOrderRequest, line.ProductID)
		}
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidOrderRequest)
		}
		if _, seen := quantities[id]; !seen {
			ids = append(ids, id)
		}
		quantities[id] += line.Quantity
	}

	products, err := s.products.FindByIDs(ctx, ids, true)
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, id.Hex())
		}
		qty := quantities[id]
		if p.Stock < qty {
			return nil, fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, p.Name, p.Stock)
		}
		item := models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  qty,
		}
		if len(p.Images) > 0 {
			item.Image = p.Images[0]
		}
		items = append(items, item)
	}

	now := s.now()
	number, err := models.GenerateOrderNumber(now)
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}

	customer := req.Customer
	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))
	customer.FullName = utils.SanitizeInput(customer.FullName)
	customer.Address = utils.SanitizeInput(customer.Address)
	customer.City = utils.SanitizeInput(customer.City)
	customer.PostalCode = utils.SanitizeInput(customer.PostalCode)
	phone, err := utils.SanitizePhone(customer.Phone)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOrderRequest, err)
	}
	customer.Phone = phone
	order := &models.Order{
		OrderNumber:   number,
		Customer:      customer,
		Items:         items,
		PaymentMethod: models.DefaultPaymentMethod,
		Status:        models.StatusPending,
		StatusHistory: []models.StatusChange{{
			Status:    models.StatusPending,
			Note:      "Order placed",
			UpdatedAt: now,
		}},
		Notes:     utils.SanitizeInput(req.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.pricing.Compute(order.Items).Apply(order)

	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		if err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Warn("stock decrement failed",
				zap.String("orderNumber", order.OrderNumber),
				zap.String("productId", item.ProductID.Hex()),
				zap.Error(err))
		}
	}

	if req.Subscribe && s.subscriber != nil {
		if _, err := s.subscriber.Subscribe(ctx, order.Customer.Email, models.SourceCheckout); err != nil {
			s.logger.Warn("checkout newsletter subscription failed", zap.Error(err))
		}
	}

	if s.notifier != nil {
		s.notifier.NotifyNewOrder(order)
	}
	SendAsync(s.mailer, s.logger, order)

	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", id.Hex(), err)
	}
	return order, nil
}

// Track looks an order up by its public number. Numbers are matched
// case-insensitively since customers retype them.
func (s *OrderService) Track(ctx context.Context, orderNumber string) (*models.Order, error) {
	orderNumber = strings.ToUpper(strings.TrimSpace(orderNumber))
	if orderNumber == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", orderNumber, err)
	}
	return order, nil
}

// List returns a page of orders for the admin list. status "all" or "" means
// no status filter.
func (s *OrderService) List(ctx context.Context, status, search string, page int) (*models.OrderList, error) {
	if page < 1 {
		page = 1
	}
	filter := models.OrderFilter{
		Search: strings.TrimSpace(search),
		Page:   page,
		Limit:  models.OrdersPageSize,
	}
	if status != "" && status != "all" {
		parsed, err := models.ParseOrderStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = parsed
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	byStatus, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	counts := map[string]int64{"all": total}
	for _, st := range models.AllOrderStatuses() {
		counts[string(st)] = byStatus[st]
	}

	statusFilter := status
	if statusFilter == "" {
		statusFilter = "all"
	}
	return &models.OrderList{
		Orders:     orders,
		Counts:     counts,
		Pagination: models.NewPagination(page, models.OrdersPageSize, total),
		Filters:    map[string]string{"status": statusFilter, "search": filter.Search},
	}, nil
}

// UpdateStatus moves an order to a new status and records the change.
func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, req models.UpdateOrderStatusRequest) (*models.Order, error) {
	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var estimated *time.Time
	if raw := strings.TrimSpace(req.EstimatedDelivery); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid estimated delivery date", ErrInvalidOrderRequest)
		}
		estimated = &t
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	note := strings.TrimSpace(req.Note)
	if note == "" {
		note = fmt.Sprintf("Status changed to %s", status)
	}
	now := s.now()
	order.StatusHistory = append(order.StatusHistory, models.StatusChange{Status: status, Note: note, UpdatedAt: now})
	order.Status = status
	if tn := strings.TrimSpace(req.TrackingNumber); tn != "" {
		order.TrackingNumber = tn
	}
	if estimated != nil {
		order.EstimatedDelivery = estimated
	}
	order.UpdatedAt = now

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order %s: %w", id.Hex(), err)
	}
	if s.notifier != nil {
		s.notifier.NotifyStatusChange(order)
	}
	return order, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (s *OrderService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("delete order %s: %w", id.Hex(), err)
	}
	return nil
}
