package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/psyche/core/format"
)

func newTestAdapter() *Adapter {
	return NewAdapter(NewMemoryStore())
}

func TestAdapter_TextRoundTrip(t *testing.T) {
	ctx := context.Background()
	adapter := newTestAdapter()

	require.NoError(t, adapter.Put(ctx, 6101, "history_version5.0", "The patient first noticed low mood two months ago."))

	text, found, err := adapter.GetText(ctx, 6101, "history_version5.0")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "The patient first noticed low mood two months ago.", text)
}

func TestAdapter_VersionFormIndifference(t *testing.T) {
	ctx := context.Background()
	adapter := newTestAdapter()

	require.NoError(t, adapter.Put(ctx, 6101, "profile_version5.0", "value"))

	// dotted and underscored forms resolve to the same key
	dotted, found, err := adapter.GetText(ctx, 6101, "profile_version5.0")
	require.NoError(t, err)
	require.True(t, found)

	underscored, found, err := adapter.GetText(ctx, 6101, "profile_version5_0")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, dotted, underscored)
}

func TestAdapter_SlashKeyTolerance(t *testing.T) {
	ctx := context.Background()
	adapter := newTestAdapter()

	require.NoError(t, adapter.Put(ctx, 6101, "Marriage/Relationship History", "lives with spouse"))

	text, found, err := adapter.GetText(ctx, 6101, "Marriage_Relationship History")
	require.NoError(t, err)
	require.True(t, found, "underscored form should read the slash-written key")
	assert.Equal(t, "lives with spouse", text)
}

func TestAdapter_RecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	adapter := newTestAdapter()

	record := format.NewMap()
	record.Set("Chief complaint", "  I can't sleep.  ")
	record.Set("Occupation", nil)
	nested := format.NewMap()
	nested.Set("Marriage/Relationship History", "married")
	record.Set("Identification", nested)

	require.NoError(t, adapter.Put(ctx, 6101, "given_information", record))

	got, found, err := adapter.GetRecord(ctx, 6101, "given_information")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, []string{"Chief complaint", "Identification"}, got.Keys(),
		"null leaf dropped, order preserved")

	cc, _ := got.Get("Chief complaint")
	assert.Equal(t, "I can't sleep.", cc, "strings trimmed on write")

	inner, _ := got.Get("Identification")
	_, hasSanitized := inner.(*format.Map).Get("Marriage_Relationship History")
	assert.True(t, hasSanitized, "nested slash keys persist underscored")
}

func TestAdapter_PutDoesNotMutateCallerRecord(t *testing.T) {
	ctx := context.Background()
	adapter := newTestAdapter()

	record := format.NewMap()
	record.Set("Marriage/Relationship History", "kept")
	record.Set("gone", nil)

	require.NoError(t, adapter.Put(ctx, 1, "x", record))

	_, stillThere := record.Get("gone")
	assert.True(t, stillThere, "caller's record must not be pruned in place")
	_, originalKey := record.Get("Marriage/Relationship History")
	assert.True(t, originalKey, "caller's keys must keep their logical names")
}

func TestAdapter_GetMissing(t *testing.T) {
	ctx := context.Background()
	adapter := newTestAdapter()

	_, found, err := adapter.Get(ctx, 9999, "profile_version5.0")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAdapter_ListClient(t *testing.T) {
	ctx := context.Background()
	adapter := newTestAdapter()

	require.NoError(t, adapter.Put(ctx, 6101, "given_information", "a"))
	require.NoError(t, adapter.Put(ctx, 6101, "history_version5.0", "b"))
	require.NoError(t, adapter.Put(ctx, 6102, "given_information", "c"))

	paths, err := adapter.ListClient(ctx, 6101)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"clients/6101/given_information",
		"clients/6101/history_version5_0",
	}, paths)
}
