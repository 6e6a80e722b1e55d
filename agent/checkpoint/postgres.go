package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// PostgresConfig configures the durable thread store.
type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

type threadRow struct {
	bun.BaseModel `bun:"table:assistant_threads,alias:t"`

	ThreadID  string    `bun:"thread_id,pk"`
	State     []byte    `bun:"state,type:jsonb,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// PostgresSaver persists thread state as JSON rows via bun.
type PostgresSaver struct {
	db *bun.DB
}

func NewPostgresSaver(ctx context.Context, cfg PostgresConfig) (*PostgresSaver, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	db := bun.NewDB(sqldb, pgdialect.New())

	saver := &PostgresSaver{db: db}
	if err := saver.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return saver, nil
}

func (s *PostgresSaver) ensureSchema(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*threadRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create thread table: %w", err)
	}
	return nil
}

func (s *PostgresSaver) Load(ctx context.Context, threadID string) (*ThreadState, error) {
	if strings.TrimSpace(threadID) == "" {
		return nil, ErrInvalidThread
	}

	var row threadRow
	err := s.db.NewSelect().
		Model(&row).
		Where("thread_id = ?", threadID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrThreadNotFound
		}
		return nil, fmt.Errorf("load thread %s: %w", threadID, err)
	}

	var st ThreadState
	if err := json.Unmarshal(row.State, &st); err != nil {
		return nil, fmt.Errorf("unmarshal thread %s: %w", threadID, err)
	}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thread state loaded from store: %w", err)
	}
	return &st, nil
}

func (s *PostgresSaver) Save(ctx context.Context, st *ThreadState) error {
	if err := st.Validate(); err != nil {
		return err
	}
	st.UpdatedAt = time.Now().UTC()

	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal thread %s: %w", st.ThreadID, err)
	}

	row := threadRow{
		ThreadID:  st.ThreadID,
		State:     payload,
		UpdatedAt: st.UpdatedAt,
	}
	if _, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (thread_id) DO UPDATE").
		Set("state = EXCLUDED.state").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("save thread %s: %w", st.ThreadID, err)
	}
	return nil
}

func (s *PostgresSaver) Delete(ctx context.Context, threadID string) error {
	if strings.TrimSpace(threadID) == "" {
		return ErrInvalidThread
	}
	if _, err := s.db.NewDelete().
		Model((*threadRow)(nil)).
		Where("thread_id = ?", threadID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete thread %s: %w", threadID, err)
	}
	return nil
}

func (s *PostgresSaver) Close() error {
	return s.db.Close()
}
