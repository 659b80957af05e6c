// Package worker turns audit events from the queue into search documents and
// HR notices.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cohesia-portal/pkg/events"
	"github.com/oksasatya/cohesia-portal/pkg/helpers"
	"github.com/oksasatya/cohesia-portal/pkg/mailer/templates"
)

// ErrMalformed marks a message that will never succeed and must not be requeued.
var ErrMalformed = errors.New("malformed event")

type Indexer interface {
	Index(ctx context.Context, index, id string, doc any) error
}

type Notifier interface {
	SendTemplate(ctx context.Context, to, name string, data any) error
}

// ESIndexer stores documents in Elasticsearch.
type ESIndexer struct {
	Client *elasticsearch.Client
}

func (e ESIndexer) Index(ctx context.Context, index, id string, doc any) error {
	return helpers.IndexJSON(ctx, e.Client, index, id, doc)
}

// Processor handles one event at a time. A nil Indexer or Notifier disables
// that step.
type Processor struct {
	IndexName string
	Indexer   Indexer
	Notifier  Notifier
	NotifyTo  string
	AppName   string
	Logger    *logrus.Logger
}

func (p *Processor) Handle(ctx context.Context, body []byte) error {
	var evt events.AuthEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if evt.ID == "" || evt.Type == "" {
		return fmt.Errorf("%w: missing id or type", ErrMalformed)
	}

	if p.Indexer != nil {
		if err := p.Indexer.Index(ctx, p.IndexName, evt.ID, evt); err != nil {
			return fmt.Errorf("index event %s: %w", evt.ID, err)
		}
	}

	if evt.Type == events.UserRegistered && p.Notifier != nil && p.NotifyTo != "" {
		data := templates.NewEmployeeNoticeData(p.AppName, p.NotifyTo, evt.Name, evt.EmployeeID, evt.Role,
			templates.WithTime(evt.OccurredAt),
			templates.WithIP(evt.IP),
			templates.WithUserAgent(evt.UserAgent),
		)
		if err := p.Notifier.SendTemplate(ctx, p.NotifyTo, templates.NewEmployee, data); err != nil {
			return fmt.Errorf("notify HR of %s: %w", evt.EmployeeID, err)
		}
	}

	helpers.LogInfo(p.Logger, "event processed", logrus.Fields{"id": evt.ID, "type": evt.Type})
	return nil
}

// Run consumes deliveries until the channel closes or ctx is done. Malformed
// messages are dropped; any other failure is requeued.
func (p *Processor) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-deliveries:
			if !ok {
				return
			}
			p.dispatch(ctx, msg)
		}
	}
}

func (p *Processor) dispatch(ctx context.Context, msg amqp.Delivery) {
	err := p.Handle(ctx, msg.Body)
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case errors.Is(err, ErrMalformed):
		helpers.LogWarn(p.Logger, "dropping bad message", err, nil)
		_ = msg.Nack(false, false)
	default:
		helpers.LogError(p.Logger, "event failed, requeueing", err, nil)
		_ = msg.Nack(false, true)
	}
}
