package checkout

import (
	"context"

	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// OrderService is the order side of the pizza service.
type OrderService interface {
	SubmitOrder(ctx context.Context, req models.OrderRequest) (*models.OrderResult, error)
	VerifyReceipt(ctx context.Context, receipt models.Receipt) (*models.Verification, error)
}

// Identity exposes who is signed in.
type Identity interface {
	IsAuthenticated() bool
	User() *models.User
}

// Journal records placed orders and verification verdicts. Failures are logged only.
type Journal interface {
	RecordOrder(ctx context.Context, dinerID models.ID, conf models.Confirmation) error
	RecordVerification(ctx context.Context, orderID models.ID, valid bool, message string) error
}

type ServiceDependencies struct {
	Orders   OrderService
	Identity Identity
	Journal  Journal
	Logger   logger.Logger
}

// VerifyResult is what the delivery screen shows after an explicit verification.
type VerifyResult struct {
	Valid        bool
	Verification *models.Verification
	// Claims is the decoded receipt payload, when the receipt is a readable JWT.
	Claims jwt.MapClaims
}
