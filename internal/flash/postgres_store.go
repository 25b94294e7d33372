package flash

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresKeyCookie = "flash_key"

// PostgresStore keeps the pending message in the flash_messages table, one
// row per browser. The browser only carries an opaque key cookie.
type PostgresStore struct {
	pool   *pgxpool.Pool
	path   string
	secure bool
}

// NewPostgresStore returns a PostgresStore. path and secure configure the
// key cookie.
func NewPostgresStore(pool *pgxpool.Pool, path string, secure bool) *PostgresStore {
	if path == "" {
		path = "/"
	}
	return &PostgresStore{pool: pool, path: path, secure: secure}
}

// Set implements Store. Concurrent writes for the same key resolve as
// last-write-wins.
func (s *PostgresStore) Set(w http.ResponseWriter, r *http.Request, m Message) error {
	m, err := m.Normalize()
	if err != nil {
		return err
	}
	key, ok := s.key(r)
	if !ok {
		key = uuid.New()
		http.SetCookie(w, &http.Cookie{
			Name:     postgresKeyCookie,
			Value:    key.String(),
			Path:     s.path,
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		})
	}
	_, err = s.pool.Exec(r.Context(), `
		INSERT INTO flash_messages (key, text, category, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (key) DO UPDATE
		SET text = EXCLUDED.text, category = EXCLUDED.category, created_at = EXCLUDED.created_at`,
		key.String(), m.Text, string(m.Category),
	)
	if err != nil {
		return fmt.Errorf("flash: store message: %w", err)
	}
	return nil
}

// Consume implements Store. The read and the clear are one DELETE statement.
func (s *PostgresStore) Consume(w http.ResponseWriter, r *http.Request) (*Message, error) {
	key, ok := s.key(r)
	if !ok {
		return nil, nil
	}
	var text, category string
	err := s.pool.QueryRow(r.Context(),
		`DELETE FROM flash_messages WHERE key = $1 RETURNING text, category`,
		key.String(),
	).Scan(&text, &category)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("flash: consume message: %w", err)
	}
	return restore(text, category), nil
}

// Purge deletes messages that were never consumed and are older than maxAge.
func (s *PostgresStore) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM flash_messages WHERE created_at < now() - make_interval(secs => $1)`,
		maxAge.Seconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("flash: purge: %w", err)
	}
	return tag.RowsAffected(), nil
}

// StartPurge runs Purge on a ticker until ctx is cancelled.
func (s *PostgresStore) StartPurge(ctx context.Context, every, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.Purge(ctx, maxAge)
				if err != nil {
					log.Printf("FLASH_PURGE_FAILED err=%v", err)
					continue
				}
				if n > 0 {
					log.Printf("FLASH_PURGED count=%d", n)
				}
			}
		}
	}()
}

func (s *PostgresStore) key(r *http.Request) (uuid.UUID, bool) {
	c, err := r.Cookie(postgresKeyCookie)
	if err != nil {
		return uuid.Nil, false
	}
	key, err := uuid.Parse(c.Value)
	if err != nil {
		return uuid.Nil, false
	}
	return key, true
}
