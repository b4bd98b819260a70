package principal

import (
	"context"
	"testing"
)

func TestWithContextAndFromContext(t *testing.T) {
	ctx := context.Background()

	if _, ok := FromContext(ctx); ok {
		t.Fatal("FromContext on empty context: want ok=false")
	}

	p := Principal{UserID: "u1", Email: "u1@example.com"}
	ctx = WithContext(ctx, p)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("FromContext: want ok=true")
	}
	if got != p {
		t.Errorf("FromContext: got %+v, want %+v", got, p)
	}
}
