package mysql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factory-planner/internal/storage"
)

func TestSaveOrder_UnchangedRecordIsNotAnError(t *testing.T) {
	if testStorage == nil {
		t.Skip("TEST_MYSQL_DSN not set")
	}

	ctx := context.Background()
	order := seedOrder(t, ctx)

	order.Quantity = 5
	require.NoError(t, testStorage.SaveOrder(ctx, order))

	// An identical re-save affects zero rows on MySQL; it must still
	// succeed instead of surfacing as not-found.
	require.NoError(t, testStorage.SaveOrder(ctx, order))

	got, err := testStorage.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
	assert.Equal(t, storage.StatusCreated, got.Status)
}
