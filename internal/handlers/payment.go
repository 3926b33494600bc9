package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/tabor-plzen/camp-api/internal/models"
	"github.com/tabor-plzen/camp-api/internal/payments"
)

type PaymentHandler struct {
	payments *payments.Service
	logger   *zap.Logger
}

func NewPaymentHandler(service *payments.Service, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: service, logger: logger}
}

type PaymentResponse struct {
	TransactionID string               `json:"transaction_id"`
	Amount        int                  `json:"amount"`
	Currency      string               `json:"currency"`
	Method        models.PaymentMethod `json:"method"`
	Status        models.PaymentStatus `json:"status"`
	ProcessedAt   time.Time            `json:"processed_at"`
}

func toPaymentResponse(p models.Payment) PaymentResponse {
	return PaymentResponse{
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Method:        p.Method,
		Status:        p.Status,
		ProcessedAt:   p.ProcessedAt,
	}
}

type CardPaymentInput struct {
	Body struct {
		RegistrationID uint   `json:"registration_id"`
		Method         string `json:"method" enum:"googlepay,applepay" doc:"Wallet used on the client"`
		// Token handed over by the wallet SDK; forwarded to the gateway
		// unmodified.
		PaymentToken string `json:"payment_token" minLength:"1"`
	}
}

type CardPaymentOutput struct {
	Body PaymentResponse
}

func (h *PaymentHandler) HandleCardPayment(ctx context.Context, input *CardPaymentInput) (*CardPaymentOutput, error) {
	payment, err := h.payments.ProcessCardPayment(ctx,
		input.Body.RegistrationID,
		models.PaymentMethod(input.Body.Method),
		input.Body.PaymentToken)
	if err != nil {
		if mapped := mapPaymentError(err); mapped != nil {
			return nil, mapped
		}
		h.logger.Error("card payment failed",
			zap.Uint("registration_id", input.Body.RegistrationID), zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong while processing the payment")
	}
	return &CardPaymentOutput{Body: toPaymentResponse(*payment)}, nil
}

type BankTransferInput struct {
	Body struct {
		RegistrationID uint `json:"registration_id"`
	}
}

type BankTransferOutput struct {
	Body PaymentResponse
}

func (h *PaymentHandler) HandleBankTransfer(ctx context.Context, input *BankTransferInput) (*BankTransferOutput, error) {
	payment, err := h.payments.ProcessBankTransfer(ctx, input.Body.RegistrationID)
	if err != nil {
		if mapped := mapPaymentError(err); mapped != nil {
			return nil, mapped
		}
		h.logger.Error("bank transfer failed",
			zap.Uint("registration_id", input.Body.RegistrationID), zap.Error(err))
		return nil, huma.Error500InternalServerError("Something went wrong while recording the transfer")
	}
	return &BankTransferOutput{Body: toPaymentResponse(*payment)}, nil
}

func mapPaymentError(err error) error {
	switch {
	case errors.Is(err, payments.ErrRegistrationNotFound):
		return huma.Error404NotFound("Registration not found")
	case errors.Is(err, payments.ErrAlreadyPaid):
		return huma.Error409Conflict("Registration is already paid")
	case errors.Is(err, payments.ErrRegistrationCancelled):
		return huma.Error409Conflict("Registration is cancelled")
	case errors.Is(err, payments.ErrProviderDeclined):
		return huma.NewError(http.StatusPaymentRequired, "Payment was declined, please try again")
	}
	return nil
}
