package httpapi

import (
	"context"
	"testing"
	"time"
)

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("joined context did not cancel")
	}
}

func TestJoinContexts_BaseCancels(t *testing.T) {
	base, cancelBase := context.WithCancel(context.Background())
	j, cancel := joinContexts(base, context.Background())
	defer cancel()
	cancelBase()
	waitDone(t, j)
}

func TestJoinContexts_RequestCancels(t *testing.T) {
	req, cancelReq := context.WithCancel(context.Background())
	j, cancel := joinContexts(context.Background(), req)
	defer cancel()
	cancelReq()
	waitDone(t, j)
}

func TestSetBaseContext_NilResetsToBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	SetBaseContext(ctx)
	cancel()
	//nolint:staticcheck // SA1012: nil is the documented reset value
	SetBaseContext(nil)
	if serverBaseCtx.Err() != nil {
		t.Fatalf("expected background base context")
	}
}
