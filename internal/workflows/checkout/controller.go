// internal/workflows/checkout/controller.go
package checkout

import (
	"context"
	"sync/atomic"

	"pizza-storefront/internal/common/errors"
	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/common/metrics"
	"pizza-storefront/internal/models"
)

const Workflow = "checkout"

// Controller runs the two checkout phases: submit, which turns a draft into an order
// and its receipt, and verify, which the user triggers explicitly afterwards.
type Controller struct {
	config   *Config
	orders   OrderService
	identity Identity
	journal  Journal
	logger   logger.Logger

	submitting atomic.Bool
}

func NewController(deps ServiceDependencies, config *Config) *Controller {
	if config == nil {
		config = DefaultConfig()
	}
	return &Controller{
		config:   config,
		orders:   deps.Orders,
		identity: deps.Identity,
		journal:  deps.Journal,
		logger:   deps.Logger.WithFields(map[string]interface{}{"workflow": Workflow}),
	}
}

// Submit places the order for draft. Only one submission runs at a time; a second one
// returns REQUEST_IN_FLIGHT without contacting the service.
//
// When the confirmed line items do not add up to the draft total the order still exists,
// so the confirmation is returned together with ORDER_TOTAL_MISMATCH.
func (c *Controller) Submit(ctx context.Context, draft models.Draft) (*models.Confirmation, error) {
	if !c.submitting.CompareAndSwap(false, true) {
		metrics.DuplicateRequestsDropped.WithLabelValues(Workflow).Inc()
		return nil, errors.NewRequestInFlightError(Workflow)
	}
	defer c.submitting.Store(false)

	if !c.identity.IsAuthenticated() {
		return nil, errors.NewAuthenticationFailedError("checkout requires a signed-in user")
	}
	if draft.StoreID.IsZero() {
		return nil, errors.NewInvalidSelectionError()
	}
	if len(draft.Items) == 0 {
		return nil, errors.NewEmptyCartError()
	}

	expected := draft.Total()
	diner := c.identity.User()

	c.logger.Info("Submitting order", map[string]interface{}{
		"franchiseId": draft.FranchiseID.String(),
		"storeId":     draft.StoreID.String(),
		"items":       len(draft.Items),
		"total":       expected.String(),
	})

	submitCtx, cancel := context.WithTimeout(ctx, c.config.SubmitTimeout)
	defer cancel()

	res, err := c.orders.SubmitOrder(submitCtx, draft.OrderRequest())
	if errors.Is(err, errors.ErrCodeOrderStatusUnknown) {
		metrics.CheckoutSubmissions.WithLabelValues("status_unknown").Inc()
		c.logger.Error("Order accepted but the reply was unreadable", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	if err != nil {
		metrics.CheckoutSubmissions.WithLabelValues("failed").Inc()
		c.logger.Warn("Order submission failed, draft kept for retry", map[string]interface{}{
			"error":     err.Error(),
			"errorCode": string(errors.CodeOf(err)),
		})
		return nil, err
	}

	conf := &models.Confirmation{
		Order:   res.Order,
		Receipt: models.Receipt{OrderID: res.Order.ID, Token: res.JWT},
		Total:   expected,
	}
	c.record(ctx, diner, *conf)

	if confirmed := res.Order.Total(); !confirmed.Same(expected) {
		metrics.CheckoutSubmissions.WithLabelValues("total_mismatch").Inc()
		c.logger.Error("Confirmed order total differs from the displayed total", map[string]interface{}{
			"orderId":   res.Order.ID.String(),
			"expected":  expected.String(),
			"confirmed": confirmed.String(),
		})
		return conf, errors.NewOrderTotalMismatchError(expected.String(), confirmed.String())
	}

	metrics.CheckoutSubmissions.WithLabelValues("placed").Inc()
	metrics.ActionsCompleted.WithLabelValues("submit_order").Inc()
	c.logger.Info("Order placed", map[string]interface{}{
		"orderId": res.Order.ID.String(),
		"total":   expected.String(),
	})
	return conf, nil
}

func (c *Controller) record(ctx context.Context, diner *models.User, conf models.Confirmation) {
	if c.journal == nil {
		return
	}
	var dinerID models.ID
	if diner != nil {
		dinerID = diner.ID
	}
	if err := c.journal.RecordOrder(ctx, dinerID, conf); err != nil {
		c.logger.Warn("Failed to journal order", map[string]interface{}{
			"orderId": conf.Order.ID.String(),
			"error":   err.Error(),
		})
	}
}

// InFlight reports whether a submission is outstanding.
func (c *Controller) InFlight() bool {
	return c.submitting.Load()
}

// Verify asks the factory whether the receipt of conf is authentic. A rejected or
// failed verification is VERIFICATION_FAILED; it never affects the placed order.
func (c *Controller) Verify(ctx context.Context, conf models.Confirmation) (*VerifyResult, error) {
	result := &VerifyResult{}
	if claims, ok := conf.Receipt.Claims(); ok {
		result.Claims = claims
	}

	verifyCtx, cancel := context.WithTimeout(ctx, c.config.VerifyTimeout)
	defer cancel()

	v, err := c.orders.VerifyReceipt(verifyCtx, conf.Receipt)
	if err != nil {
		metrics.ReceiptVerifications.WithLabelValues("error").Inc()
		c.logger.Warn("Receipt verification failed", map[string]interface{}{
			"orderId": conf.Order.ID.String(),
			"error":   err.Error(),
		})
		c.recordVerification(ctx, conf.Order.ID, false, err.Error())
		if !errors.Is(err, errors.ErrCodeVerificationFailed) {
			err = errors.NewVerificationFailedError(err.Error())
		}
		return result, err
	}

	result.Verification = v
	result.Valid = v.Valid()
	c.recordVerification(ctx, conf.Order.ID, result.Valid, v.Message)

	if !result.Valid {
		metrics.ReceiptVerifications.WithLabelValues("invalid").Inc()
		c.logger.Warn("Receipt rejected by factory", map[string]interface{}{
			"orderId": conf.Order.ID.String(),
			"message": v.Message,
		})
		return result, errors.NewVerificationFailedError("factory answered: " + v.Message)
	}

	metrics.ReceiptVerifications.WithLabelValues("valid").Inc()
	metrics.ActionsCompleted.WithLabelValues("verify_receipt").Inc()
	return result, nil
}

func (c *Controller) recordVerification(ctx context.Context, orderID models.ID, valid bool, message string) {
	if c.journal == nil {
		return
	}
	if err := c.journal.RecordVerification(ctx, orderID, valid, message); err != nil {
		c.logger.Warn("Failed to journal verification", map[string]interface{}{
			"orderId": orderID.String(),
			"error":   err.Error(),
		})
	}
}
