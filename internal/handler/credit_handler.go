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

var creditListOptions = query.Options{
	DefaultSort: "created_at DESC",
	SortFields: map[string]string{
		"id":              "id",
		"requestedAmount": "requested_amount",
		"createdAt":       "created_at",
	},
	FilterFields: map[string]string{
		"filter.status":  "status",
		"filter.user.id": "user_id",
	},
}

// ApprovalRequest is the handle-approval payload. Approvals may be
// partial: any amount in (0, requestedAmount] is allowed.
type ApprovalRequest struct {
	Approve        bool    `json:"approve"`
	ApprovedAmount float64 `json:"approvedAmount"`
	Reason         string  `json:"reason"`
}

// ListCreditRequests returns a page of credit-facility requests
func ListCreditRequests(c echo.Context) error {
	log := logger.FromEcho(c)

	var requests []model.CreditFacilityRequest
	db := database.GetDB().Model(&model.CreditFacilityRequest{}).Preload("User")
	page, err := query.Paginate(c, db, creditListOptions, &requests)
	if err != nil {
		log.Error("Failed to list credit requests", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve credit requests"})
	}
	return c.JSON(http.StatusOK, page)
}

// GetCreditRequest returns a single credit-facility request
func GetCreditRequest(c echo.Context) error {
	var request model.CreditFacilityRequest
	if result := database.GetDB().Preload("User").First(&request, c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "credit request not found"})
	}
	return c.JSON(http.StatusOK, request)
}

// HandleApproval approves (fully or partially) or rejects a pending
// credit-facility request
func HandleApproval(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req ApprovalRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}

	var request model.CreditFacilityRequest
	if result := database.GetDB().First(&request, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "credit request not found"})
	}

	if request.Status != model.CreditStatusPending {
		log.Warn("Credit request already handled",
			zap.String("request_id", id),
			zap.String("status", request.Status))
		return c.JSON(http.StatusConflict, echo.Map{"message": "credit request has already been handled"})
	}

	if req.Approve {
		if req.ApprovedAmount <= 0 || req.ApprovedAmount > request.RequestedAmount {
			return validationFailed(c, []string{"approved amount must be greater than zero and not exceed the requested amount"})
		}
		request.Status = model.CreditStatusApproved
		request.ApprovedAmount = req.ApprovedAmount
	} else {
		request.Status = model.CreditStatusRejected
		request.ApprovedAmount = 0
	}
	request.Reason = req.Reason

	if result := database.GetDB().Save(&request); result.Error != nil {
		log.Error("Failed to handle credit approval", zap.String("request_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to handle credit approval"})
	}

	transition := "approve"
	if !req.Approve {
		transition = "reject"
	}
	prometheus.RecordTransition("credit_facility", transition)
	log.Info("Credit request handled",
		zap.String("request_id", id),
		zap.String("status", request.Status),
		zap.Float64("approved_amount", request.ApprovedAmount))
	return c.JSON(http.StatusOK, request)
}
