package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// listenConn is the slice of *pgx.Conn the subscription uses. A pgx
// connection is not safe for concurrent use, so the deliver goroutine must
// have returned before anyone calls Close.
type listenConn interface {
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

type client struct {
	connStr string
}

func New(connStr string) Client {
	return &client{connStr: connStr}
}

func (c *client) Subscribe(ctx context.Context, resource Resource, event EventKind, handler ChangeHandler) (Subscription, error) {
	conn, err := pgx.Connect(ctx, c.connStr)
	if err != nil {
		return nil, fmt.Errorf("could not connect to change feed: %w", err)
	}

	channel := Channel(resource, event)

	_, err = conn.Exec(ctx, "listen "+pgx.Identifier{channel}.Sanitize())
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("could not listen on %s: %w", channel, err)
	}

	// the subscription must outlive the caller's request scope, so only an
	// explicit Unsubscribe (or a connection failure) ends delivery
	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	s := &subscription{
		conn:    conn,
		channel: channel,
		cancel:  cancel,
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}

	go s.deliver(subCtx, handler)

	return s, nil
}

type subscription struct {
	conn    listenConn
	channel string
	cancel  context.CancelFunc
	errs    chan error
	done    chan struct{}
	once    sync.Once
}

func (s *subscription) deliver(ctx context.Context, handler ChangeHandler) {
	log := logging.GetFromContext(ctx)

	defer close(s.done)
	defer close(s.errs)

	for {
		notification, err := s.conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Error("change feed connection lost", "channel", s.channel, "err", err.Error())
				s.errs <- err
			}
			return
		}

		change, err := DecodeChangeRecord([]byte(notification.Payload))
		if err != nil {
			log.Error("discarding malformed notification", "channel", s.channel, "err", err.Error())
			continue
		}

		handler(ctx, change)
	}
}

func (s *subscription) Err() <-chan error {
	return s.errs
}

// Unsubscribe ends delivery and closes the connection. Closing the
// connection while the deliver goroutine is still inside
// WaitForNotification would touch the connection from two goroutines, so
// the teardown waits for the goroutine to return first.
func (s *subscription) Unsubscribe(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		s.cancel()
		<-s.done
		err = s.conn.Close(ctx)
	})
	return err
}
