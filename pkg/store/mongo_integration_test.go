//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("ORGCHART_MONGO_URI")
	if uri == "" {
		t.Skip("ORGCHART_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := "orgchart_test_" + uuid.NewString()[:8]
	s, err := NewMongoStore(ctx, uri, db)
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer func() {
		_ = s.client.Database(db).Drop(context.Background())
		s.Close()
	}()
	exerciseStore(t, s)
}
