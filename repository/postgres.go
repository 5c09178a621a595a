package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS documents (
	seq        BIGSERIAL PRIMARY KEY,
	id         UUID NOT NULL UNIQUE,
	collection TEXT NOT NULL,
	body       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS documents_collection_seq ON documents (collection, seq);
CREATE INDEX IF NOT EXISTS documents_body ON documents USING GIN (body jsonb_path_ops);
`

// PostgresStore keeps every collection in one JSONB table. The native identity
// is a UUID column; insertion order is the seq column.
type PostgresStore struct {
	DB     *pgxpool.Pool
	dbName string

	schemaMu sync.Mutex
	ready    atomic.Bool
}

// NewPostgresStore opens a pool for dsn. The pool dials lazily and the schema
// is created by the first operation that reaches the server.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 20
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	cfg.ConnConfig.StatementCacheCapacity = 64
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PostgresStore{DB: pool, dbName: cfg.ConnConfig.Database}, nil
}

// EnsureSchema creates the documents table if it does not exist. Concurrent
// callers are serialized so the DDL runs once per process.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if p.ready.Load() {
		return nil
	}
	p.schemaMu.Lock()
	defer p.schemaMu.Unlock()
	if p.ready.Load() {
		return nil
	}
	if _, err := p.DB.Exec(ctx, pgSchema, pgx.QueryExecModeSimpleProtocol); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	p.ready.Store(true)
	return nil
}

func (p *PostgresStore) Name() string { return p.dbName }

func (p *PostgresStore) Insert(ctx context.Context, collection string, doc any) (ID, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return ID{}, fmt.Errorf("encode document: %w", err)
	}
	if err := p.EnsureSchema(ctx); err != nil {
		return ID{}, err
	}
	id := uuid.New()
	if _, err := p.DB.Exec(ctx,
		`INSERT INTO documents(id, collection, body) VALUES ($1,$2,$3)`,
		id.String(), collection, body,
	); err != nil {
		return ID{}, err
	}
	return NewID(id.String()), nil
}

func (p *PostgresStore) Find(ctx context.Context, collection string, filter Filter, limit int, fn func(ID, Decoder) error) error {
	if limit <= 0 {
		return nil
	}
	if filter == nil {
		filter = Filter{}
	}
	if err := p.EnsureSchema(ctx); err != nil {
		return err
	}
	match, err := json.Marshal(filter)
	if err != nil {
		return fmt.Errorf("encode filter: %w", err)
	}
	rows, err := p.DB.Query(ctx,
		`SELECT id::text, body
		 FROM documents
		 WHERE collection = $1 AND body @> $2::jsonb
		 ORDER BY seq
		 LIMIT $3`, collection, match, limit)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   string
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if err := fn(NewID(id), jsonDecoder(body)); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (p *PostgresStore) CollectionNames(ctx context.Context) ([]string, error) {
	if err := p.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := p.DB.Query(ctx, `SELECT DISTINCT collection FROM documents ORDER BY collection`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.DB.Ping(ctx)
}

func (p *PostgresStore) Close(context.Context) error {
	p.DB.Close()
	return nil
}

// jsonDecoder decodes a JSON-encoded document body.
type jsonDecoder []byte

func (d jsonDecoder) Decode(v any) error { return json.Unmarshal(d, v) }
