package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := New(KindProfileParse, "construct.profile", "no object boundaries in output")

	assert.Contains(t, err.Error(), "profile_parse", "kind name should render")
	assert.Contains(t, err.Error(), "construct.profile", "op should render")
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(KindBlobStore, "blobstore.put", cause)

	assert.ErrorIs(t, err, cause, "wrapped cause should survive errors.Is")
}

func TestError_IsMatchesKind(t *testing.T) {
	a := New(KindGateway, "gateway.complete", "timeout")
	b := New(KindGateway, "other.op", "different message")

	assert.ErrorIs(t, a, b, "same kind should match")
	assert.NotErrorIs(t, a, New(KindProfileParse, "x", "y"), "different kind should not match")
}

func TestIsKind_ThroughWrapping(t *testing.T) {
	inner := New(KindTemplateNotFound, "templates.resolve", "missing")
	outer := fmt.Errorf("building directive: %w", inner)

	assert.True(t, IsKind(outer, KindTemplateNotFound))
	assert.False(t, IsKind(outer, KindGateway))
}

func TestGetBehavior(t *testing.T) {
	tests := []struct {
		kind      Kind
		retryable bool
		fatal     bool
	}{
		{KindTemplateNotFound, false, true},
		{KindProfileParse, false, true},
		{KindBlobStore, true, true},
		{KindGateway, true, true},
		{KindSchemaMismatch, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := New(tt.kind, "op", "msg")
			behavior := GetBehavior(err)
			assert.Equal(t, tt.retryable, behavior.ShouldRetry, "retry policy")
			assert.Equal(t, tt.fatal, behavior.Fatal, "fatality")
		})
	}
}

func TestGetKind_UnclassifiedDefaultsToGateway(t *testing.T) {
	assert.Equal(t, KindGateway, GetKind(stderrors.New("plain error")))
}

func TestTemplateNotFound_Context(t *testing.T) {
	err := TemplateNotFound("sp", "5.0", "MDD")

	require.NotNil(t, err.Context)
	assert.Equal(t, "sp", err.Context["module"])
	assert.Equal(t, "5.0", err.Context["version"])
	assert.Equal(t, "MDD", err.Context["diagnosis"])
}
