package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/job-outreach/internal/types"
)

// Schema creates the tables used by the Postgres ledger.
const Schema = `
CREATE TABLE IF NOT EXISTS ledger_tables (
    name       TEXT PRIMARY KEY,
    header     JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS ledger_rows (
    table_name TEXT NOT NULL REFERENCES ledger_tables(name) ON DELETE CASCADE,
    row_index  INTEGER NOT NULL,
    cells      JSONB NOT NULL,
    PRIMARY KEY (table_name, row_index)
);
`

// Postgres is a Ledger stored in two PostgreSQL tables, keyed by table name.
type Postgres struct {
	pool *pgxpool.Pool
	name string
}

// ConnectPostgres opens a pool, verifies it and ensures the schema exists.
func ConnectPostgres(ctx context.Context, databaseURL, tableName string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create ledger schema: %w", err)
	}

	return &Postgres{pool: pool, name: tableName}, nil
}

// Close closes the connection pool
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Load reads the header and rows in row order. A table that was never written loads empty.
func (p *Postgres) Load(ctx context.Context) (*types.Table, error) {
	var headerJSON []byte
	err := p.pool.QueryRow(ctx,
		`SELECT header FROM ledger_tables WHERE name = $1`, p.name,
	).Scan(&headerJSON)
	if err != nil {
		if err == pgx.ErrNoRows {
			return types.TableFromGrid(nil), nil
		}
		return nil, &Error{Op: "load", Backend: "postgres", Cause: err}
	}

	grid := make([][]string, 1)
	if err := json.Unmarshal(headerJSON, &grid[0]); err != nil {
		return nil, &Error{Op: "load", Backend: "postgres", Cause: fmt.Errorf("decode header: %w", err)}
	}

	rows, err := p.pool.Query(ctx,
		`SELECT row_index, cells FROM ledger_rows WHERE table_name = $1 ORDER BY row_index`, p.name)
	if err != nil {
		return nil, &Error{Op: "load", Backend: "postgres", Cause: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			idx       int
			cellsJSON []byte
		)
		if err := rows.Scan(&idx, &cellsJSON); err != nil {
			return nil, &Error{Op: "load", Backend: "postgres", Cause: err}
		}
		var cells []string
		if err := json.Unmarshal(cellsJSON, &cells); err != nil {
			return nil, &Error{Op: "load", Backend: "postgres", Cause: fmt.Errorf("decode row %d: %w", idx, err)}
		}
		grid = append(grid, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "load", Backend: "postgres", Cause: err}
	}
	return types.TableFromGrid(grid), nil
}

// Overwrite replaces the header and every row in one transaction.
func (p *Postgres) Overwrite(ctx context.Context, t *types.Table) error {
	if err := p.overwrite(ctx, t); err != nil {
		return &Error{Op: "overwrite", Backend: "postgres", Cause: err}
	}
	return nil
}

func (p *Postgres) overwrite(ctx context.Context, t *types.Table) error {
	grid := t.Grid()
	headerJSON, err := json.Marshal(grid[0])
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO ledger_tables (name, header) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET header = $2, updated_at = NOW()`,
		p.name, headerJSON,
	); err != nil {
		return fmt.Errorf("failed to save header: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM ledger_rows WHERE table_name = $1`, p.name); err != nil {
		return fmt.Errorf("failed to clear rows: %w", err)
	}

	batch := &pgx.Batch{}
	for i, cells := range grid[1:] {
		cellsJSON, err := json.Marshal(cells)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		batch.Queue(
			`INSERT INTO ledger_rows (table_name, row_index, cells) VALUES ($1, $2, $3)`,
			p.name, i, cellsJSON,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert rows: %w", err)
		}
	}

	return tx.Commit(ctx)
}
