package registry

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lingaserve/lingaserve/internal/langpair"
)

// Store persists catalogue metadata to PostgreSQL so a restart can serve
// Descriptors/LanguagePairs before the first successful Refresh completes.
// Entirely optional: a Registry constructed without [WithStore] behaves
// identically, just without that warm-start.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore opens a pgx connection pool against dsn and verifies the schema
// table exists, creating it if necessary.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("registry: open postgres pool: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS model_descriptors (
	id            TEXT PRIMARY KEY,
	src_lang      TEXT NOT NULL,
	tgt_lang      TEXT NOT NULL,
	artifact_ref  TEXT NOT NULL
)`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("registry: ensure schema: %w", err)
	}
	return nil
}

// SaveAll upserts every descriptor, replacing whatever was previously
// recorded for its ID.
func (s *Store) SaveAll(ctx context.Context, descs []langpair.Descriptor) error {
	if len(descs) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("registry: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const upsert = `
INSERT INTO model_descriptors (id, src_lang, tgt_lang, artifact_ref)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET
	src_lang = EXCLUDED.src_lang,
	tgt_lang = EXCLUDED.tgt_lang,
	artifact_ref = EXCLUDED.artifact_ref`
	for _, d := range descs {
		if _, err := tx.Exec(ctx, upsert, d.ID, d.Src, d.Tgt, d.ArtifactRef); err != nil {
			return fmt.Errorf("registry: upsert %s: %w", d.ID, err)
		}
	}
	return tx.Commit(ctx)
}

// Load returns every descriptor previously saved, used to warm-start a
// Registry before its first successful Refresh.
func (s *Store) Load(ctx context.Context) ([]langpair.Descriptor, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, src_lang, tgt_lang, artifact_ref FROM model_descriptors`)
	if err != nil {
		return nil, fmt.Errorf("registry: load descriptors: %w", err)
	}
	defer rows.Close()

	var out []langpair.Descriptor
	for rows.Next() {
		var d langpair.Descriptor
		if err := rows.Scan(&d.ID, &d.Src, &d.Tgt, &d.ArtifactRef); err != nil {
			return nil, fmt.Errorf("registry: scan descriptor: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
