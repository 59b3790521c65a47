// Package postgres adapts the customer collection port onto PostgreSQL.
// Documents live in a customers table, one text column per field; every
// write emits pg_notify so subscribers re-read and push a fresh full
// snapshot, matching the snapshot-per-change contract of the port.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/entity"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/repository"
	"github.com/kobamelo-johnson/Letshego-Analytics/pkg/logger"
)

var _ repository.CustomerCollection = (*Collection)(nil)

const notifyChannel = "customers_changed"

// fieldColumns are the document fields persisted as columns, in table order.
var fieldColumns = []string{
	entity.FieldFullName,
	entity.FieldPIPStatus,
	entity.FieldCreatedAt,
	entity.FieldOmangFile,
	entity.FieldPayslip,
	entity.FieldUtilityBill,
	entity.FieldConfirmationLetter,
	entity.FieldAffidavit,
}

// Collection is the pgx-backed CustomerCollection adapter.
type Collection struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewCollection builds the adapter and ensures the schema exists.
func NewCollection(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) (*Collection, error) {
	c := &Collection{pool: pool, log: log}
	if err := c.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collection) ensureSchema(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS customers (
			id                      TEXT PRIMARY KEY,
			full_name               TEXT,
			pip_status              TEXT,
			created_at              TEXT,
			omang_file_url          TEXT,
			payslip_url             TEXT,
			utility_bill_url        TEXT,
			confirmation_letter_url TEXT,
			affidavit_url           TEXT
		)`)
	if err != nil {
		return fmt.Errorf("ensure customers table: %w", err)
	}
	return nil
}

// Subscribe opens a dedicated listening connection, delivers the current
// snapshot, and then re-reads and forwards the full table on every notify.
// The channel closes when ctx is done or the listen connection fails; the
// caller re-subscribes.
func (c *Collection) Subscribe(ctx context.Context) (<-chan entity.Snapshot, error) {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", notifyChannel, err)
	}

	snap, err := c.readSnapshot(ctx)
	if err != nil {
		conn.Release()
		return nil, err
	}

	ch := make(chan entity.Snapshot, 1)
	ch <- snap

	go func() {
		defer close(ch)
		defer conn.Release()
		for {
			if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
				if ctx.Err() == nil {
					c.log.Error().Err(err).Msg("customer change listener stopped")
				}
				return
			}
			snap, err := c.readSnapshot(ctx)
			if err != nil {
				c.log.Error().Err(err).Msg("re-read customer snapshot")
				return
			}
			// Latest snapshot wins if the consumer lags.
			select {
			case ch <- snap:
			default:
				select {
				case <-ch:
				default:
				}
				select {
				case ch <- snap:
				default:
				}
			}
		}
	}()

	return ch, nil
}

func (c *Collection) readSnapshot(ctx context.Context) (entity.Snapshot, error) {
	query := `
		SELECT id, full_name, pip_status, created_at, omang_file_url,
		       payslip_url, utility_bill_url, confirmation_letter_url, affidavit_url
		FROM customers ORDER BY id`
	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read customers: %w", err)
	}
	defer rows.Close()

	var snap entity.Snapshot
	for rows.Next() {
		var id string
		vals := make([]*string, len(fieldColumns))
		dest := make([]any, 0, len(fieldColumns)+1)
		dest = append(dest, &id)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		fields := make(map[string]any, len(fieldColumns))
		for i, col := range fieldColumns {
			if vals[i] != nil {
				fields[col] = *vals[i]
			}
		}
		snap = append(snap, entity.Document{ID: id, Fields: fields})
	}
	return snap, rows.Err()
}

// Set upserts a document. With merge only the named fields change on
// conflict; without merge the remaining columns are cleared.
func (c *Collection) Set(ctx context.Context, id string, fields map[string]any, merge bool) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	cols, args, err := namedColumns(fields)
	if err != nil {
		return err
	}

	insertCols := append([]string{"id"}, cols...)
	placeholders := make([]string, len(insertCols))
	for i := range insertCols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	var updates []string
	for _, col := range cols {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	if !merge {
		for _, col := range fieldColumns {
			if _, ok := fields[col]; !ok {
				updates = append(updates, col+" = NULL")
			}
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO customers (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		strings.Join(insertCols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
	if _, err := c.pool.Exec(ctx, query, append([]any{id}, args...)...); err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}
	return c.notify(ctx, id)
}

// Update applies a partial field map to an existing document.
func (c *Collection) Update(ctx context.Context, id string, fields map[string]any) error {
	cols, args, err := namedColumns(fields)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return domain.ErrInvalidInput
	}

	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+2)
	}
	query := fmt.Sprintf("UPDATE customers SET %s WHERE id = $1", strings.Join(sets, ", "))
	tag, err := c.pool.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return c.notify(ctx, id)
}

// Delete removes a document; deleting an absent id is a no-op.
func (c *Collection) Delete(ctx context.Context, id string) error {
	tag, err := c.pool.Exec(ctx, "DELETE FROM customers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil
	}
	return c.notify(ctx, id)
}

func (c *Collection) notify(ctx context.Context, id string) error {
	if _, err := c.pool.Exec(ctx, "SELECT pg_notify($1, $2)", notifyChannel, id); err != nil {
		return fmt.Errorf("notify customer change: %w", err)
	}
	return nil
}

// namedColumns validates a field map against the known columns and returns
// column names with their values in matching order.
func namedColumns(fields map[string]any) ([]string, []any, error) {
	var cols []string
	var args []any
	for _, col := range fieldColumns {
		if v, ok := fields[col]; ok {
			cols = append(cols, col)
			args = append(args, v)
		}
	}
	if len(cols) != len(fields) {
		return nil, nil, domain.ErrUnknownField
	}
	return cols, args, nil
}
