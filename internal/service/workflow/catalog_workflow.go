package workflow

import (
	"context"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/qs-lzh/movie-watchlist/internal/mq"
	"github.com/qs-lzh/movie-watchlist/internal/service/domain"
)

// CatalogWorkflow reacts to catalog events. It purges the watchlist
// entries of deleted movies.
type CatalogWorkflow struct {
	watchlistService domain.WatchlistService
	logger           *zap.Logger
}

func NewCatalogWorkflow(watchlistService domain.WatchlistService, logger *zap.Logger) *CatalogWorkflow {
	return &CatalogWorkflow{
		watchlistService: watchlistService,
		logger:           logger.Named("catalog-workflow"),
	}
}

func (w *CatalogWorkflow) Start(ctx context.Context, mqConn *amqp.Connection) error {
	if err := w.ConsumeMovieDeleted(ctx, mqConn); err != nil {
		return err
	}
	return nil
}

func (w *CatalogWorkflow) ConsumeMovieDeleted(ctx context.Context, conn *amqp.Connection) error {
	ch, err := mq.NewChannel(conn)
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(mq.MovieDeletedQueue, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return err
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if err := w.handleMovieDeleted(ctx, msg); err != nil {
					w.logger.Error("failed to handle movie deletion", zap.Error(err))
				}
			}
		}
	}()

	return nil
}

// handleMovieDeleted acks a processed message, drops a malformed one and
// requeues on store failure.
func (w *CatalogWorkflow) handleMovieDeleted(ctx context.Context, msg amqp.Delivery) error {
	var message mq.MovieDeletedMessage
	if err := json.Unmarshal(msg.Body, &message); err != nil {
		msg.Nack(false, false)
		return err
	}

	if _, err := w.watchlistService.PurgeMovie(ctx, message.MovieID); err != nil {
		msg.Nack(false, true)
		return err
	}

	msg.Ack(false)

	return nil
}
