package handler

import (
	"net/http"

	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/internal/query"
	"github.com/agrofount/backoffice/pkg/database"
	"github.com/agrofount/backoffice/pkg/logger"
	"github.com/agrofount/backoffice/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var paymentListOptions = query.Options{
	DefaultSort: "created_at DESC",
	SortFields: map[string]string{
		"id":        "id",
		"reference": "reference",
		"amount":    "amount",
		"createdAt": "created_at",
	},
	SearchColumns: []string{"reference", "email"},
	FilterFields: map[string]string{
		"filter.paymentStatus": "payment_status",
		"filter.order.id":      "order_id",
	},
}

// ListPayments returns a page of payments
func ListPayments(c echo.Context) error {
	log := logger.FromEcho(c)

	var payments []model.Payment
	db := database.GetDB().Model(&model.Payment{}).Preload("Order")
	page, err := query.Paginate(c, db, paymentListOptions, &payments)
	if err != nil {
		log.Error("Failed to list payments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve payments"})
	}
	return c.JSON(http.StatusOK, page)
}

// GetPayment returns a single payment
func GetPayment(c echo.Context) error {
	var payment model.Payment
	if result := database.GetDB().Preload("Order").First(&payment, c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
	}
	return c.JSON(http.StatusOK, payment)
}

// ConfirmTransferReceived marks a pending payment completed and mirrors
// the status onto the order so financial rollups pick it up
func ConfirmTransferReceived(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var payment model.Payment
	if result := database.GetDB().First(&payment, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
	}

	if payment.PaymentStatus != model.PaymentStatusPending {
		log.Warn("Payment not pending",
			zap.String("payment_id", id),
			zap.String("status", payment.PaymentStatus))
		return c.JSON(http.StatusConflict, echo.Map{"message": "only pending payments can be confirmed"})
	}

	payment.PaymentStatus = model.PaymentStatusCompleted
	payment.AmountPaid = payment.Amount
	if result := database.GetDB().Save(&payment); result.Error != nil {
		log.Error("Failed to confirm payment", zap.String("payment_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to confirm payment"})
	}

	if result := database.GetDB().Model(&model.Order{}).
		Where("id = ?", payment.OrderID).
		Update("payment_status", model.PaymentStatusCompleted); result.Error != nil {
		log.Error("Failed to mirror payment status onto order",
			zap.Uint("order_id", payment.OrderID),
			zap.Error(result.Error))
	}

	invalidateRollup()
	prometheus.RecordTransition("payment", "confirm")
	log.Info("Payment confirmed",
		zap.String("payment_id", id),
		zap.String("reference", payment.Reference),
		zap.Float64("amount", payment.Amount))
	return c.JSON(http.StatusOK, payment)
}

// CancelPayment marks a pending payment cancelled
func CancelPayment(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var payment model.Payment
	if result := database.GetDB().First(&payment, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
	}

	if payment.PaymentStatus != model.PaymentStatusPending {
		return c.JSON(http.StatusConflict, echo.Map{"message": "only pending payments can be cancelled"})
	}

	payment.PaymentStatus = model.PaymentStatusCancelled
	if result := database.GetDB().Save(&payment); result.Error != nil {
		log.Error("Failed to cancel payment", zap.String("payment_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to cancel payment"})
	}

	if result := database.GetDB().Model(&model.Order{}).
		Where("id = ?", payment.OrderID).
		Update("payment_status", model.PaymentStatusCancelled); result.Error != nil {
		log.Error("Failed to mirror payment status onto order",
			zap.Uint("order_id", payment.OrderID),
			zap.Error(result.Error))
	}

	invalidateRollup()
	prometheus.RecordTransition("payment", "cancel")
	log.Info("Payment cancelled", zap.String("payment_id", id), zap.String("reference", payment.Reference))
	return c.JSON(http.StatusOK, payment)
}
