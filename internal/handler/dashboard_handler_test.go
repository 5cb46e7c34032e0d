package handler

import (
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agrofount/backoffice/internal/analytics"
	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardSummary(t *testing.T) {
	db := setupTestDB(t)

	user := model.User{Username: "alice", Email: "alice@example.com", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	order := model.Order{
		Code:          "ORD-DASH0001",
		UserID:        &user.ID,
		Status:        model.OrderStatusDelivered,
		PaymentStatus: model.PaymentStatusCompleted,
		TotalPrice:    1500,
		Address:       model.Address{State: "Lagos"},
		Items: []model.OrderItem{
			{ProductName: "Broiler Finisher", Unit: "bag", Quantity: 10, Price: 150},
		},
	}
	require.NoError(t, db.Create(&order).Error)

	c, rec := request(t, http.MethodGet, "/dashboard/summary", "")
	require.NoError(t, DashboardSummary(c))
	requireStatus(t, rec, http.StatusOK)

	var summary analytics.Summary
	decode(t, rec, &summary)

	require.Len(t, summary.TopCustomers, 1)
	assert.Equal(t, "alice", summary.TopCustomers[0].Name)
	assert.Equal(t, 1500.0, summary.StatesTotal)
	assert.Equal(t, "1.5K", summary.StatesTotalDisplay)
	assert.Equal(t, "1.5K", summary.TotalIncomeDisplay)
}

func TestPaymentBurstCoalescesRollupInvalidation(t *testing.T) {
	db := setupTestDB(t)

	prevDebounce, prevDrop := rollupDebounce, dropRollupCache
	t.Cleanup(func() {
		rollupDebounce.Stop()
		rollupDebounce, dropRollupCache = prevDebounce, prevDrop
	})

	rollupDebounce = httpclient.NewDebouncer(20 * time.Millisecond)
	var drops int32
	dropRollupCache = func() { atomic.AddInt32(&drops, 1) }

	for i := 0; i < 3; i++ {
		payment := seedPayment(t, db, model.PaymentStatusPending)
		c, rec := request(t, http.MethodPost, "/payment/1/confirm-transfer-received", "", "id", itoa(payment.ID))
		require.NoError(t, ConfirmTransferReceived(c))
		requireStatus(t, rec, http.StatusOK)
	}

	// The burst must coalesce into a single cache drop
	assert.Zero(t, atomic.LoadInt32(&drops))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&drops) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&drops))
}

func TestOrderCancelSchedulesRollupInvalidation(t *testing.T) {
	initTestPlatform()
	db := setupTestDB(t)

	prevDebounce, prevDrop := rollupDebounce, dropRollupCache
	t.Cleanup(func() {
		rollupDebounce.Stop()
		rollupDebounce, dropRollupCache = prevDebounce, prevDrop
	})

	rollupDebounce = httpclient.NewDebouncer(10 * time.Millisecond)
	var drops int32
	dropRollupCache = func() { atomic.AddInt32(&drops, 1) }

	order := seedOrder(t, db, model.OrderStatusPending)
	c, rec := request(t, http.MethodPost, "/order/1/cancel", "", "id", itoa(order.ID))
	require.NoError(t, CancelOrder(c))
	requireStatus(t, rec, http.StatusOK)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&drops) == 1
	}, time.Second, 5*time.Millisecond)
}
