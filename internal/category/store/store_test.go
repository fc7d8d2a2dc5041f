package store_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocketbook/internal/category/store"
	"github.com/MrJamesThe3rd/pocketbook/internal/database/dbtest"
)

func TestStore_ListCategories_OrderedByName(t *testing.T) {
	db, rec := dbtest.Open(t)

	cs, err := store.New(db).ListCategories(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, cs)

	q := rec.Last()
	assert.Contains(t, q, "WHERE owner_id = $1")
	assert.True(t, strings.HasSuffix(q, "ORDER BY lower(name), created_at, id"), q)
}
