package messaging

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"bountyvault/internal/bootstrap/logging"
	"bountyvault/internal/errs"
	"bountyvault/internal/ports"
)

type natsConn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes each committed ledger event on
// "<prefix>.<kind>".
type NATSPublisher struct {
	conn   natsConn
	prefix string
	close  func()
}

var _ ports.EventPublisher = (*NATSPublisher)(nil)

func ConnectNATS(ctx context.Context, url string, prefix string) (*NATSPublisher, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	logCtx := logging.WithComponent(ctx, "messaging.nats")

	conn, err := nats.Connect(url,
		nats.Name("bountyvault"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.Warn(logCtx, "nats disconnected", slog.Any("err", errs.Loggable(err)))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info(logCtx, "nats reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, errs.Wrapf(err, "connect nats %q", url)
	}

	logging.Info(logCtx, "nats connected", slog.String("url", conn.ConnectedUrl()), slog.String("subject_prefix", prefix))
	return &NATSPublisher{
		conn:   conn,
		prefix: prefix,
		close: func() {
			if err := conn.Drain(); err != nil {
				conn.Close()
			}
		},
	}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event ports.LedgerEvent) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	payload, err := Encode(event)
	if err != nil {
		return errs.Wrap(err, "encode ledger event")
	}
	if err := p.conn.Publish(Subject(p.prefix, event.Kind), payload); err != nil {
		return errs.Wrapf(err, "publish ledger event %d", event.EventID)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if p.close != nil {
		p.close()
	}
}
