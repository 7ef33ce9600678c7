package payment

import (
	"context"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"go.uber.org/zap"

	"github.com/tripora-travel/service-booking/pkg/domain"
)

// MidtransGateway issues refunds through the Midtrans Core API.
type MidtransGateway struct {
	client coreapi.Client
	logger *zap.Logger
}

// NewMidtransGateway creates a MidtransGateway with the given server key.
func NewMidtransGateway(serverKey string, production bool, logger *zap.Logger) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	var client coreapi.Client
	client.New(serverKey, env)

	return &MidtransGateway{client: client, logger: logger}
}

// IssueRefund refunds part or all of a previously captured payment. Gateway
// errors are surfaced as opaque GatewayFailure domain errors.
func (g *MidtransGateway) IssueRefund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	refundReq := &coreapi.RefundReq{
		RefundKey: req.RefundKey,
		Amount:    req.AmountCents,
		Reason:    req.Reason,
	}

	resp, midErr := g.client.RefundTransaction(req.PaymentID, refundReq)
	if midErr != nil {
		g.logger.Error("midtrans refund failed",
			zap.String("payment_id", req.PaymentID),
			zap.Int64("amount_cents", req.AmountCents),
			zap.Error(midErr),
		)
		return nil, domain.NewGatewayError(midErr.GetMessage())
	}

	refundID := resp.RefundKey
	if refundID == "" {
		refundID = resp.TransactionID
	}

	g.logger.Info("midtrans refund issued",
		zap.String("payment_id", req.PaymentID),
		zap.String("refund_id", refundID),
		zap.Int64("amount_cents", req.AmountCents),
	)
	return &RefundResult{RefundID: refundID, Status: resp.TransactionStatus}, nil
}
