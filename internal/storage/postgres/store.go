package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"soldexlogs/internal/model"
)

// Store persists captured records in Postgres. It satisfies storage.Sink;
// one row is inserted per record and the insert is committed before Append
// returns.
type Store struct {
	ctx  context.Context
	pool *pgxpool.Pool
}

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS dex_records (
		id BIGSERIAL PRIMARY KEY,
		hexsize INTEGER NOT NULL,
		captured_at TIMESTAMPTZ NOT NULL,
		txid TEXT NOT NULL,
		programid TEXT NOT NULL,
		dexname TEXT NOT NULL,
		base64 TEXT NOT NULL,
		hex TEXT NOT NULL
	)`

// NewStore connects to Postgres and ensures the records table exists. The
// context bounds both the initial connection and later Append calls.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create dex_records table: %w", err)
	}
	return &Store{ctx: ctx, pool: pool}, nil
}

// Append inserts one record.
func (s *Store) Append(record model.DexRecord) error {
	_, err := s.pool.Exec(s.ctx, `
		INSERT INTO dex_records (hexsize, captured_at, txid, programid, dexname, base64, hex)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		record.HexSize,
		record.Timestamp,
		record.Txid,
		record.ProgramID,
		record.DexName,
		record.Base64,
		record.Hex,
	)
	if err != nil {
		return fmt.Errorf("insert dex record: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
