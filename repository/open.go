package repository

import (
	"context"
	"fmt"
	"net/url"
)

// Open selects a backend from the scheme of dsn. An empty dsn yields an
// Unavailable store.
func Open(ctx context.Context, dsn, dbName string) (Store, error) {
	if dsn == "" {
		return Unavailable{}, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return NewMongoStore(ctx, dsn, dbName)
	case "postgres", "postgresql":
		return NewPostgresStore(ctx, dsn)
	case "memory":
		return NewMemoryStore(dbName), nil
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}
