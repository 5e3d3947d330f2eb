package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pasalhq/pasal-erp/internal/application/ports"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
	"github.com/pasalhq/pasal-erp/pkg/config"
	"github.com/pasalhq/pasal-erp/pkg/logger"
)

var _ ports.Notifier = (*SMSNotifier)(nil)

// SMSNotifier posts customer notifications to an SMS gateway on terminal
// order transitions. Dispatch runs in a goroutine and never propagates
// errors back to the transition: a gateway outage must not fail an order.
// With no endpoint configured, events are only logged.
type SMSNotifier struct {
	cfg    config.SMSConfig
	client *http.Client
	log    *logger.Logger
}

// NewSMSNotifier builds the notifier.
func NewSMSNotifier(cfg config.SMSConfig, log *logger.Logger) *SMSNotifier {
	return &SMSNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

type smsPayload struct {
	To       string `json:"to"`
	SenderID string `json:"sender_id"`
	Message  string `json:"message"`
}

// OrderStatusChanged dispatches an SMS for the new status. Fire and forget.
func (n *SMSNotifier) OrderStatusChanged(orderID, orderNumber, customerPhone, status string) {
	if n.cfg.Endpoint == "" {
		n.log.Info().
			Str("order_id", orderID).
			Str("status", status).
			Msg("sms dispatch disabled, event logged only")
		return
	}
	go n.send(orderID, orderNumber, customerPhone, status)
}

func (n *SMSNotifier) send(orderID, orderNumber, customerPhone, status string) {
	payload := smsPayload{
		To:       customerPhone,
		SenderID: n.cfg.SenderID,
		Message:  message(orderNumber, status),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		n.log.Error().Err(err).Str("order_id", orderID).Msg("sms payload marshal failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		n.log.Error().Err(err).Str("order_id", orderID).Msg("sms request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Error().Err(err).Str("order_id", orderID).Msg("sms dispatch failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.log.Error().
			Int("status_code", resp.StatusCode).
			Str("order_id", orderID).
			Msg("sms gateway rejected message")
		return
	}
	n.log.Info().Str("order_id", orderID).Str("status", status).Msg("sms dispatched")
}

func message(orderNumber, status string) string {
	switch status {
	case entity.StatusDelivered:
		return "Your order " + orderNumber + " has been delivered. Thank you for shopping with us."
	case entity.StatusCancelled:
		return "Your order " + orderNumber + " has been cancelled. Contact us for any questions."
	default:
		return "Your order " + orderNumber + " is now " + status + "."
	}
}
