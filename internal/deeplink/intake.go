// Package deeplink takes payment-result links delivered to a client and parks
// their parameters in the pending slot until the result screen consumes them.
package deeplink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-result/internal/interfaces"
	"github.com/akylbek/payment-system/payment-result/internal/signal"
	"github.com/akylbek/payment-system/payment-result/internal/telemetry"
)

var ErrMissingClient = errors.New("client_id is required")

// Message is the payload published on the deep link subject.
type Message struct {
	ClientID string `json:"client_id"`
	URL      string `json:"url"`
}

type Intake struct {
	pending interfaces.PendingSignalStore
}

func NewIntake(pending interfaces.PendingSignalStore) *Intake {
	return &Intake{pending: pending}
}

// Deliver parses rawURL and overwrites the client's pending signal.
func (in *Intake) Deliver(ctx context.Context, clientID, rawURL string) error {
	if clientID == "" {
		return ErrMissingClient
	}
	params, err := signal.ParseDeepLink(rawURL)
	if err != nil {
		return err
	}
	if err := in.pending.Put(ctx, clientID, params); err != nil {
		return fmt.Errorf("store pending signal: %w", err)
	}

	telemetry.Logger.Info("Deep link received",
		zap.String("client_id", clientID),
		zap.String("signal", signal.Decode(params).Kind()),
	)
	return nil
}

// HandleMessage is the NATS callback for deep link deliveries.
func (in *Intake) HandleMessage(msg *nats.Msg) {
	var m Message
	if err := json.Unmarshal(msg.Data, &m); err != nil {
		telemetry.Logger.Error("Error unmarshaling deep link", zap.Error(err))
		return
	}
	if err := in.Deliver(context.Background(), m.ClientID, m.URL); err != nil {
		telemetry.Logger.Warn("Deep link rejected",
			zap.String("client_id", m.ClientID),
			zap.Error(err),
		)
	}
}

// Subscribe starts consuming deep links from subject.
func (in *Intake) Subscribe(nc *nats.Conn, subject string) (*nats.Subscription, error) {
	sub, err := nc.Subscribe(subject, in.HandleMessage)
	if err != nil {
		return nil, err
	}
	telemetry.Logger.Info("Started consuming deep links", zap.String("subject", subject))
	return sub, nil
}
