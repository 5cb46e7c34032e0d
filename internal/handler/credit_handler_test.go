package handler

import (
	"net/http"
	"testing"

	"github.com/agrofount/backoffice/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCreditRequest(t *testing.T, db *gorm.DB, status string, requested float64) model.CreditFacilityRequest {
	t.Helper()

	user := model.User{Username: "farmer", Email: "farmer-" + uuid.New().String()[:8] + "@example.com", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	req := model.CreditFacilityRequest{
		UserID:          user.ID,
		RequestedAmount: requested,
		Status:          status,
	}
	require.NoError(t, db.Create(&req).Error)
	return req
}

func TestHandleApprovalFull(t *testing.T) {
	db := setupTestDB(t)
	credit := seedCreditRequest(t, db, model.CreditStatusPending, 500_000)

	body := `{"approve": true, "approvedAmount": 500000, "reason": "good standing"}`
	c, rec := request(t, http.MethodPost, "/credit-facility/1/handle-approval", body, "id", itoa(credit.ID))
	require.NoError(t, HandleApproval(c))
	requireStatus(t, rec, http.StatusOK)

	var saved model.CreditFacilityRequest
	require.NoError(t, db.First(&saved, credit.ID).Error)
	assert.Equal(t, model.CreditStatusApproved, saved.Status)
	assert.Equal(t, 500_000.0, saved.ApprovedAmount)
	assert.Equal(t, "good standing", saved.Reason)
}

func TestHandleApprovalPartial(t *testing.T) {
	db := setupTestDB(t)
	credit := seedCreditRequest(t, db, model.CreditStatusPending, 500_000)

	body := `{"approve": true, "approvedAmount": 200000}`
	c, rec := request(t, http.MethodPost, "/credit-facility/1/handle-approval", body, "id", itoa(credit.ID))
	require.NoError(t, HandleApproval(c))
	requireStatus(t, rec, http.StatusOK)

	var saved model.CreditFacilityRequest
	require.NoError(t, db.First(&saved, credit.ID).Error)
	assert.Equal(t, model.CreditStatusApproved, saved.Status)
	assert.Equal(t, 200_000.0, saved.ApprovedAmount)
}

func TestHandleApprovalRejectsOutOfBoundsAmount(t *testing.T) {
	db := setupTestDB(t)
	credit := seedCreditRequest(t, db, model.CreditStatusPending, 500_000)

	for _, body := range []string{
		`{"approve": true, "approvedAmount": 0}`,
		`{"approve": true, "approvedAmount": -10}`,
		`{"approve": true, "approvedAmount": 500001}`,
	} {
		c, rec := request(t, http.MethodPost, "/credit-facility/1/handle-approval", body, "id", itoa(credit.ID))
		require.NoError(t, HandleApproval(c))
		requireStatus(t, rec, http.StatusBadRequest)
	}

	var saved model.CreditFacilityRequest
	require.NoError(t, db.First(&saved, credit.ID).Error)
	assert.Equal(t, model.CreditStatusPending, saved.Status)
	assert.Zero(t, saved.ApprovedAmount)
}

func TestHandleApprovalReject(t *testing.T) {
	db := setupTestDB(t)
	credit := seedCreditRequest(t, db, model.CreditStatusPending, 500_000)

	body := `{"approve": false, "reason": "insufficient history"}`
	c, rec := request(t, http.MethodPost, "/credit-facility/1/handle-approval", body, "id", itoa(credit.ID))
	require.NoError(t, HandleApproval(c))
	requireStatus(t, rec, http.StatusOK)

	var saved model.CreditFacilityRequest
	require.NoError(t, db.First(&saved, credit.ID).Error)
	assert.Equal(t, model.CreditStatusRejected, saved.Status)
	assert.Zero(t, saved.ApprovedAmount)
	assert.Equal(t, "insufficient history", saved.Reason)
}

func TestHandleApprovalAlreadyHandled(t *testing.T) {
	db := setupTestDB(t)

	for _, status := range []string{model.CreditStatusApproved, model.CreditStatusRejected} {
		credit := seedCreditRequest(t, db, status, 500_000)

		body := `{"approve": true, "approvedAmount": 100000}`
		c, rec := request(t, http.MethodPost, "/credit-facility/1/handle-approval", body, "id", itoa(credit.ID))
		require.NoError(t, HandleApproval(c))
		requireStatus(t, rec, http.StatusConflict)
	}
}

func TestHandleApprovalNotFound(t *testing.T) {
	setupTestDB(t)

	c, rec := request(t, http.MethodPost, "/credit-facility/999/handle-approval", `{"approve": true, "approvedAmount": 1}`, "id", "999")
	require.NoError(t, HandleApproval(c))
	requireStatus(t, rec, http.StatusNotFound)
}
