package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topic constants for storefront domain events.
const (
	TopicCategoryCreated = "storefront.category.created"
	TopicCategoryUpdated = "storefront.category.updated"
	TopicCategoryDeleted = "storefront.category.deleted"

	TopicProductCreated = "storefront.product.created"
	TopicProductUpdated = "storefront.product.updated"
	TopicProductDeleted = "storefront.product.deleted"

	TopicCartLineAdded   = "storefront.cart.line_added"
	TopicCartLineUpdated = "storefront.cart.line_updated"
	TopicCartLineRemoved = "storefront.cart.line_removed"
	TopicCartCleared     = "storefront.cart.cleared"

	TopicOrderPlaced        = "storefront.order.placed"
	TopicOrderStatusChanged = "storefront.order.status_changed"
	TopicOrderDeleted       = "storefront.order.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeCategory = "category"
	AggregateTypeProduct  = "product"
	AggregateTypeCart     = "cart"
	AggregateTypeOrder    = "order"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

// CategoryData is the payload for category.created and category.updated.
type CategoryData struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// ProductData is the payload for product.created and product.updated.
type ProductData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CategoryID  string `json:"category_id"`
	PriceBefore string `json:"price_before"`
	PriceAfter  string `json:"price_after"`
	IsOffer     bool   `json:"is_offer"`
	ImageCount  int    `json:"image_count"`
}

// CartLineData is the payload for cart line events. Cart events are keyed
// by cart id so a cart's events stay ordered.
type CartLineData struct {
	LineID    string `json:"line_id"`
	CartID    string `json:"cart_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Created   bool   `json:"created,omitempty"`
}

// CartClearedData is the payload for cart.cleared.
type CartClearedData struct {
	CartID  string `json:"cart_id"`
	Removed int64  `json:"removed"`
}

// OrderItemData is one item of an order.placed payload.
type OrderItemData struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// OrderPlacedData is the payload for order.placed.
type OrderPlacedData struct {
	OrderID  string          `json:"order_id"`
	CartID   string          `json:"cart_id"`
	Items    []OrderItemData `json:"items"`
	Subtotal string          `json:"subtotal"`
	Shipping string          `json:"shipping"`
	Total    string          `json:"total"`
	Status   string          `json:"status"`
}

// OrderStatusData is the payload for order.status_changed.
type OrderStatusData struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// DeletedData is the payload for every *.deleted event.
type DeletedData struct {
	ID string `json:"id"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  pkgkafka.Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

func categoryData(c *domain.Category) CategoryData {
	return CategoryData{ID: c.ID, Name: c.Name, ImageURL: c.Image.URL}
}

func (p *Producer) PublishCategoryCreated(ctx context.Context, c *domain.Category) error {
	return p.publish(ctx, TopicCategoryCreated, c.ID, AggregateTypeCategory, categoryData(c))
}

func (p *Producer) PublishCategoryUpdated(ctx context.Context, c *domain.Category) error {
	return p.publish(ctx, TopicCategoryUpdated, c.ID, AggregateTypeCategory, categoryData(c))
}

func (p *Producer) PublishCategoryDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicCategoryDeleted, id, AggregateTypeCategory, DeletedData{ID: id})
}

func productData(pr *domain.Product) ProductData {
	return ProductData{
		ID:          pr.ID,
		Name:        pr.Name,
		CategoryID:  pr.CategoryID,
		PriceBefore: domain.FormatMoney(pr.PriceBefore),
		PriceAfter:  domain.FormatMoney(pr.PriceAfter),
		IsOffer:     pr.IsOffer,
		ImageCount:  len(pr.Images),
	}
}

func (p *Producer) PublishProductCreated(ctx context.Context, pr *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, pr.ID, AggregateTypeProduct, productData(pr))
}

func (p *Producer) PublishProductUpdated(ctx context.Context, pr *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, pr.ID, AggregateTypeProduct, productData(pr))
}

func (p *Producer) PublishProductDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicProductDeleted, id, AggregateTypeProduct, DeletedData{ID: id})
}

func lineData(l *domain.CartLine) CartLineData {
	return CartLineData{LineID: l.ID, CartID: l.CartID, ProductID: l.ProductID, Quantity: l.Quantity}
}

// PublishCartLineAdded publishes cart.line_added. created is false when the
// quantity of an existing line was incremented.
func (p *Producer) PublishCartLineAdded(ctx context.Context, l *domain.CartLine, created bool) error {
	data := lineData(l)
	data.Created = created
	return p.publish(ctx, TopicCartLineAdded, l.CartID, AggregateTypeCart, data)
}

func (p *Producer) PublishCartLineUpdated(ctx context.Context, l *domain.CartLine) error {
	return p.publish(ctx, TopicCartLineUpdated, l.CartID, AggregateTypeCart, lineData(l))
}

func (p *Producer) PublishCartLineRemoved(ctx context.Context, lineID string) error {
	return p.publish(ctx, TopicCartLineRemoved, lineID, AggregateTypeCart, DeletedData{ID: lineID})
}

func (p *Producer) PublishCartCleared(ctx context.Context, cartID string, removed int64) error {
	return p.publish(ctx, TopicCartCleared, cartID, AggregateTypeCart, CartClearedData{CartID: cartID, Removed: removed})
}

func (p *Producer) PublishOrderPlaced(ctx context.Context, o *domain.Order) error {
	items := make([]OrderItemData, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemData{ProductID: it.ProductID, Quantity: it.Quantity, Price: domain.FormatMoney(it.Price)}
	}
	return p.publish(ctx, TopicOrderPlaced, o.ID, AggregateTypeOrder, OrderPlacedData{
		OrderID:  o.ID,
		CartID:   o.CartID,
		Items:    items,
		Subtotal: domain.FormatMoney(o.Subtotal),
		Shipping: domain.FormatMoney(o.Shipping),
		Total:    domain.FormatMoney(o.Total),
		Status:   o.Status,
	})
}

func (p *Producer) PublishOrderStatusChanged(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, TopicOrderStatusChanged, o.ID, AggregateTypeOrder, OrderStatusData{OrderID: o.ID, Status: o.Status})
}

func (p *Producer) PublishOrderDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicOrderDeleted, id, AggregateTypeOrder, DeletedData{ID: id})
}
