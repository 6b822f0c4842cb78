package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-outreach/internal/types"
)

func sampleTable() *types.Table {
	return types.TableFromGrid([][]string{
		{types.FieldCompanyName, types.FieldPosition, types.FieldStatus},
		{"Acme", "Engineer", "New Job"},
	})
}

func TestMemory_LoadReturnsCopy(t *testing.T) {
	m := NewMemory(sampleTable())
	ctx := context.Background()

	loaded, err := m.Load(ctx)
	require.NoError(t, err)
	loaded.Rows[0].Set(types.FieldStatus, "Email Sent")

	again, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New Job", again.Rows[0].Get(types.FieldStatus))
}

func TestMemory_Overwrite(t *testing.T) {
	m := NewMemory(sampleTable())
	ctx := context.Background()

	tbl, err := m.Load(ctx)
	require.NoError(t, err)
	tbl.Rows[0].SetStatus(types.StatusContactRequired)
	require.NoError(t, m.Overwrite(ctx, tbl))

	tbl.Rows[0].SetStatus(types.StatusEmailSent)

	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.StatusContactRequired, got.Rows[0].Status())
	assert.Equal(t, 1, m.Writes())
}

func TestMemory_NilSeed(t *testing.T) {
	m := NewMemory(nil)
	tbl, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.DefaultHeader, tbl.Header)
	assert.Empty(t, tbl.Rows)
}

func TestMemory_CancelledContext(t *testing.T) {
	m := NewMemory(sampleTable())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Load(ctx)
	var ledgerErr *Error
	require.ErrorAs(t, err, &ledgerErr)
	assert.Equal(t, "load", ledgerErr.Op)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Error(t, m.Overwrite(ctx, sampleTable()))
}
