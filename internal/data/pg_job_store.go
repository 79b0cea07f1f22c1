package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/promptlab/jobtrack/internal/domain/model"
)

// PGJobStore implements core.JobStore on top of Postgres. Every document
// (index or reply) is one row in a single key/value table, namespaced per
// identity. Uses the pgx stdlib driver.
type PGJobStore struct {
	db *sql.DB
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS job_entries (
	namespace   TEXT        NOT NULL,
	key         TEXT        NOT NULL,
	value       TEXT        NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (namespace, key)
)`

const (
	pgIndexKey    = "index"
	pgReplyPrefix = "reply:"
)

// NewPGJobStore creates a PGJobStore and ensures its schema exists.
func NewPGJobStore(ctx context.Context, db *sql.DB) (*PGJobStore, error) {
	if db == nil {
		return nil, errors.New("database connection is required")
	}

	if _, err := db.ExecContext(ctx, pgSchema); err != nil {
		// Two processes racing on CREATE TABLE IF NOT EXISTS can still
		// collide on the catalog insert; one of them wins and the other
		// sees a duplicate error for an object that now exists.
		if !isPgCode(err, pgerrcode.DuplicateTable, pgerrcode.UniqueViolation) {
			return nil, fmt.Errorf("ensure job_entries schema: %w", err)
		}
	}
	return &PGJobStore{db: db}, nil
}

func isPgCode(err error, codes ...string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	for _, code := range codes {
		if pgErr.Code == code {
			return true
		}
	}
	return false
}

func (s *PGJobStore) upsert(ctx context.Context, ns, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_entries (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		ns, key, value)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", ns, key, err)
	}
	return nil
}

func (s *PGJobStore) get(ctx context.Context, ns, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM job_entries WHERE namespace = $1 AND key = $2`,
		ns, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("select %s/%s: %w", ns, key, err)
	}
	return []byte(value), true, nil
}

// LoadIndex reads the persisted job index for the namespace.
func (s *PGJobStore) LoadIndex(ctx context.Context, ns string) (model.JobIndex, error) {
	if ns == "" {
		return model.JobIndex{}, errors.New("namespace cannot be empty")
	}

	data, ok, err := s.get(ctx, ns, pgIndexKey)
	if err != nil {
		return model.JobIndex{}, err
	}
	if !ok {
		return model.JobIndex{}, nil
	}

	idx, err := model.DecodeIndex(data)
	if err != nil {
		return model.JobIndex{}, fmt.Errorf("decode index: %w", err)
	}
	return idx, nil
}

// SaveIndex replaces the persisted index for the namespace.
func (s *PGJobStore) SaveIndex(ctx context.Context, ns string, idx model.JobIndex) error {
	if ns == "" {
		return errors.New("namespace cannot be empty")
	}

	data, err := idx.Encode()
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return s.upsert(ctx, ns, pgIndexKey, string(data))
}

// SaveReply persists the reply document for one job.
func (s *PGJobStore) SaveReply(
	ctx context.Context,
	ns, jobID string,
	payload model.ReplyPayload,
) error {
	if ns == "" || jobID == "" {
		return errors.New("namespace and job id cannot be empty")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	return s.upsert(ctx, ns, pgReplyPrefix+jobID, string(data))
}

// LoadReply reads a persisted reply document. Returns (nil, nil) when absent.
func (s *PGJobStore) LoadReply(ctx context.Context, ns, jobID string) (*model.ReplyPayload, error) {
	if ns == "" || jobID == "" {
		return nil, errors.New("namespace and job id cannot be empty")
	}

	data, ok, err := s.get(ctx, ns, pgReplyPrefix+jobID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var payload model.ReplyPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal reply: %w", err)
	}
	return &payload, nil
}

// DeleteReply removes a reply document. Idempotent.
func (s *PGJobStore) DeleteReply(ctx context.Context, ns, jobID string) error {
	if ns == "" || jobID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM job_entries WHERE namespace = $1 AND key = $2`,
		ns, pgReplyPrefix+jobID)
	if err != nil {
		return fmt.Errorf("delete reply %s/%s: %w", ns, jobID, err)
	}
	return nil
}

// ListReplyIDs returns the job ids with a persisted reply document.
func (s *PGJobStore) ListReplyIDs(ctx context.Context, ns string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT substring(key from $2) FROM job_entries
		 WHERE namespace = $1 AND key LIKE $3`,
		ns, len(pgReplyPrefix)+1, pgReplyPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("list replies %s: %w", ns, err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows close

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan reply id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate replies: %w", err)
	}
	return ids, nil
}

// UsedBytes sums the encoded size of all documents in the namespace.
func (s *PGJobStore) UsedBytes(ctx context.Context, ns string) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(length(value)), 0) FROM job_entries WHERE namespace = $1`,
		ns).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum namespace size %s: %w", ns, err)
	}
	return total.Int64, nil
}

// DeleteAll removes every key in the namespace. Idempotent.
func (s *PGJobStore) DeleteAll(ctx context.Context, ns string) error {
	if ns == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM job_entries WHERE namespace = $1`, ns)
	if err != nil {
		return fmt.Errorf("delete namespace %s: %w", ns, err)
	}
	return nil
}

// Health checks the database connection.
func (s *PGJobStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
