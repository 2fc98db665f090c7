// Package postgres provides a PostgreSQL outbox implementation of
// queue.Transport. Submit stores the payload in an outbox table inside
// the caller's database; a separate forwarder process relays the rows to
// the real queue, giving producers transactional durability.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"batchq/internal/config"
)

// Outbox implements queue.Transport by inserting rows into the
// outbox_messages table.
type Outbox struct {
	pool *pgxpool.Pool
}

// NewOutbox connects to PostgreSQL and verifies the connection.
func NewOutbox(ctx context.Context, cfg *config.PostgresConfig) (*Outbox, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxOpenConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &Outbox{pool: pool}, nil
}

// Migrate creates the outbox table if it does not exist.
func (o *Outbox) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS outbox_messages (
			id UUID PRIMARY KEY,
			queue TEXT NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			relayed_at TIMESTAMPTZ
		)
	`

	if _, err := o.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create outbox table: %w", err)
	}
	return nil
}

// Submit stores one payload for the named queue. The row is considered
// accepted once the insert commits; relay to the queue happens later.
func (o *Outbox) Submit(ctx context.Context, queueName string, payload []byte) error {
	query := `
		INSERT INTO outbox_messages (id, queue, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := o.pool.Exec(ctx, query,
		uuid.NewString(),
		queueName,
		payload,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store outbox message: %w", err)
	}

	return nil
}

// Close releases the connection pool.
func (o *Outbox) Close() error {
	o.pool.Close()
	return nil
}
