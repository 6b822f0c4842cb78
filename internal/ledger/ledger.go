// Package ledger loads and checkpoints the lead table kept in an external record store.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonathan/job-outreach/internal/types"
)

// Ledger is the source of truth for lead rows. Overwrite replaces the whole table in one call.
type Ledger interface {
	Load(ctx context.Context) (*types.Table, error)
	Overwrite(ctx context.Context, t *types.Table) error
}

// Error represents a failed ledger read or write
type Error struct {
	Op      string // load or overwrite
	Backend string
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ledger %s (%s): %v", e.Op, e.Backend, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Memory is an in-process Ledger. Load and Overwrite copy the table so callers never share rows.
type Memory struct {
	mu     sync.Mutex
	table  *types.Table
	writes int
}

// NewMemory creates a memory ledger seeded with t. A nil t starts an empty table.
func NewMemory(t *types.Table) *Memory {
	if t == nil {
		t = types.TableFromGrid(nil)
	}
	return &Memory{table: t.Clone()}
}

// Load returns a copy of the stored table.
func (m *Memory) Load(ctx context.Context) (*types.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "load", Backend: "memory", Cause: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.Clone(), nil
}

// Overwrite replaces the stored table with a copy of t.
func (m *Memory) Overwrite(ctx context.Context, t *types.Table) error {
	if err := ctx.Err(); err != nil {
		return &Error{Op: "overwrite", Backend: "memory", Cause: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table = t.Clone()
	m.writes++
	return nil
}

// Writes returns how many times the table has been overwritten.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
