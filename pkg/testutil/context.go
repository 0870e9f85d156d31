package testutil

import (
	"context"
	"testing"
	"time"

	id "geoattend/pkg/domain"
	"geoattend/pkg/requestcontext"
)

// AuthedContext returns a context carrying an authenticated user and role,
// as the auth middleware would have set them.
func AuthedContext(t *testing.T, userID id.UserID, role string) context.Context {
	t.Helper()
	ctx := requestcontext.WithUserID(context.Background(), userID)
	return requestcontext.WithRole(ctx, role)
}

// FrozenContext returns a context with a pinned request time so services
// using requestcontext.Now observe a deterministic clock.
func FrozenContext(t *testing.T, at time.Time) context.Context {
	t.Helper()
	return requestcontext.WithTime(context.Background(), at)
}
