package handler

import (
	"net/http"
	"time"

	"github.com/agrofount/backoffice/internal/analytics"
	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/internal/query"
	"github.com/agrofount/backoffice/pkg/cache"
	"github.com/agrofount/backoffice/pkg/config"
	"github.com/agrofount/backoffice/pkg/database"
	"github.com/agrofount/backoffice/pkg/logger"
	"github.com/agrofount/backoffice/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// platform carries the pricing constants orders are totalled with
var platform config.PlatformConfig

// InitPlatform sets the platform constants used by order and messaging
// handlers
func InitPlatform(cfg config.PlatformConfig) {
	platform = cfg
}

var orderListOptions = query.Options{
	DefaultSort: "created_at DESC",
	SortFields: map[string]string{
		"id":         "id",
		"code":       "code",
		"status":     "status",
		"totalPrice": "total_price",
		"createdAt":  "created_at",
	},
	SearchColumns: []string{"code", "status", "payment_status"},
	FilterFields: map[string]string{
		"filter.status":        "status",
		"filter.paymentStatus": "payment_status",
		"filter.user.id":       "user_id",
	},
}

// OrderItemRequest is the add/update payload for one order line
type OrderItemRequest struct {
	ProductName string        `json:"product" validate:"required"`
	Unit        string        `json:"unit"`
	Quantity    int           `json:"quantity" validate:"required,gt=0"`
	Price       float64       `json:"price" validate:"required,gt=0"`
	UOM         model.UOMList `json:"uom"`
}

// recalculateTotals reprices an order from its items
func recalculateTotals(order *model.Order) {
	var subTotal float64
	for _, item := range order.Items {
		subTotal += item.Price * float64(item.Quantity)
	}
	order.SubTotal = subTotal
	order.VAT = subTotal * platform.VATRate / 100
	if order.Address.PickupLocation != "" {
		order.DeliveryFee = 0
	} else if order.DeliveryFee == 0 {
		order.DeliveryFee = platform.DeliveryFee
	}
	order.TotalPrice = order.SubTotal + order.VAT + order.DeliveryFee
}

// ListOrders returns a page of orders
func ListOrders(c echo.Context) error {
	log := logger.FromEcho(c)

	var orders []model.Order
	db := database.GetDB().Model(&model.Order{}).Preload("User").Preload("Items")
	page, err := query.Paginate(c, db, orderListOptions, &orders)
	if err != nil {
		log.Error("Failed to list orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve orders"})
	}
	return c.JSON(http.StatusOK, page)
}

// GetOrder returns a single order with items and user
func GetOrder(c echo.Context) error {
	var order model.Order
	result := database.GetDB().Preload("User").Preload("Items").First(&order, c.Param("id"))
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
	}
	return c.JSON(http.StatusOK, order)
}

// CancelOrder cancels an order that has not shipped yet
func CancelOrder(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var order model.Order
	if result := database.GetDB().First(&order, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
	}

	if !order.Cancellable() {
		log.Warn("Order cannot be cancelled",
			zap.String("order_id", id),
			zap.String("status", order.Status))
		return c.JSON(http.StatusConflict, echo.Map{"message": "order can no longer be cancelled"})
	}

	order.Status = model.OrderStatusCancelled
	if result := database.GetDB().Save(&order); result.Error != nil {
		log.Error("Failed to cancel order", zap.String("order_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to cancel order"})
	}

	invalidateRollup()
	prometheus.RecordTransition("order", "cancel")
	log.Info("Order cancelled", zap.String("order_id", id), zap.String("code", order.Code))
	return c.JSON(http.StatusOK, order)
}

// AddOrderItem appends a line to an order and reprices it
func AddOrderItem(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req OrderItemRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var order model.Order
	if result := database.GetDB().Preload("Items").First(&order, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
	}
	if order.Status == model.OrderStatusCancelled || order.Status == model.OrderStatusDelivered {
		return c.JSON(http.StatusConflict, echo.Map{"message": "order can no longer be modified"})
	}

	item := model.OrderItem{
		OrderID:     order.ID,
		ProductName: req.ProductName,
		Unit:        req.Unit,
		Quantity:    req.Quantity,
		Price:       req.Price,
		UOM:         req.UOM,
	}
	if result := database.GetDB().Create(&item); result.Error != nil {
		log.Error("Failed to add order item", zap.String("order_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to add order item"})
	}

	order.Items = append(order.Items, item)
	recalculateTotals(&order)
	if result := database.GetDB().Save(&order); result.Error != nil {
		log.Error("Failed to reprice order", zap.String("order_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update order totals"})
	}

	invalidateRollup()
	log.Info("Order item added",
		zap.String("order_id", id),
		zap.String("product", item.ProductName),
		zap.Int("quantity", item.Quantity))
	return c.JSON(http.StatusCreated, order)
}

// UpdateOrderItem changes quantity or pricing of one line and reprices
// the order
func UpdateOrderItem(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")
	itemID := c.Param("itemId")

	var req OrderItemRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var order model.Order
	if result := database.GetDB().Preload("Items").First(&order, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
	}

	var item model.OrderItem
	if result := database.GetDB().Where("order_id = ?", order.ID).First(&item, itemID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "order item not found"})
	}

	item.ProductName = req.ProductName
	item.Unit = req.Unit
	item.Quantity = req.Quantity
	item.Price = req.Price
	if req.UOM != nil {
		item.UOM = req.UOM
	}
	if result := database.GetDB().Save(&item); result.Error != nil {
		log.Error("Failed to update order item", zap.String("item_id", itemID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update order item"})
	}

	// Reload lines so repricing sees the saved state
	database.GetDB().Where("order_id = ?", order.ID).Find(&order.Items)
	recalculateTotals(&order)
	if result := database.GetDB().Save(&order); result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update order totals"})
	}

	invalidateRollup()
	log.Info("Order item updated", zap.String("order_id", id), zap.String("item_id", itemID))
	return c.JSON(http.StatusOK, order)
}

// DeleteOrderItem removes a line and reprices the order
func DeleteOrderItem(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")
	itemID := c.Param("itemId")

	var order model.Order
	if result := database.GetDB().First(&order, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
	}

	result := database.GetDB().Where("order_id = ?", order.ID).Delete(&model.OrderItem{}, itemID)
	if result.Error != nil {
		log.Error("Failed to delete order item", zap.String("item_id", itemID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to delete order item"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "order item not found"})
	}

	database.GetDB().Where("order_id = ?", order.ID).Find(&order.Items)
	recalculateTotals(&order)
	if result := database.GetDB().Save(&order); result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update order totals"})
	}

	invalidateRollup()
	log.Info("Order item deleted", zap.String("order_id", id), zap.String("item_id", itemID))
	return c.JSON(http.StatusOK, order)
}

// MonthlyTarget reports completed sales for the current calendar month
// against the configured target
func MonthlyTarget(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	const cacheKey = "rollup:monthly-target"
	var target analytics.Target
	if hit, err := cache.GetJSON(ctx, cacheKey, &target); err == nil && hit {
		return c.JSON(http.StatusOK, target)
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var orders []model.Order
	result := database.GetDB().
		Where("created_at >= ? AND payment_status = ?", monthStart, model.PaymentStatusCompleted).
		Find(&orders)
	if result.Error != nil {
		log.Error("Failed to load monthly orders", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to compute monthly target"})
	}

	target = analytics.MonthlyTarget(orders, platform.MonthlyTarget, now)
	if err := cache.SetJSON(ctx, cacheKey, target, time.Minute); err != nil {
		log.Warn("Monthly target cache write failed", zap.Error(err))
	}
	return c.JSON(http.StatusOK, target)
}
