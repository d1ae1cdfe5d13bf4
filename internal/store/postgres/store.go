// Package postgres implements the session store on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/config"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists sessions and messages in PostgreSQL
type Store struct {
	pool *pgxpool.Pool
}

// New creates a connection pool, runs migrations and returns the store
func New(ctx context.Context, cfg config.PostgresConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(cfg.DSN()); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool}, nil
}

// Create persists a fresh empty session and returns it
func (s *Store) Create(ctx context.Context) (*domain.Session, error) {
	session := &domain.Session{
		ID:        uuid.New().String(),
		Title:     "New Chat",
		CreatedAt: time.Now(),
		Messages:  []domain.Message{},
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_sessions (id, title, created_at) VALUES ($1, $2, $3)`,
		session.ID, session.Title, session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Get loads a session with its full message list
func (s *Store) Get(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, created_at FROM chat_sessions WHERE id = $1`, id,
	).Scan(&session.ID, &session.Title, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT role, content, created_at FROM chat_messages WHERE session_id = $1 ORDER BY seq`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	session.Messages = []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		session.Messages = append(session.Messages, msg)
	}
	return &session, rows.Err()
}

// Append adds a message to an existing session and refreshes its title
func (s *Store) Append(ctx context.Context, id string, msg domain.Message) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists int
	if err := tx.QueryRow(ctx, `SELECT 1 FROM chat_sessions WHERE id = $1`, id).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrSessionNotFound
		}
		return fmt.Errorf("failed to check session: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO chat_messages (session_id, role, content, created_at) VALUES ($1, $2, $3, $4)`,
		id, msg.Role, msg.Content, msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	// Title follows the first non-empty user message.
	if msg.Role == domain.RoleUser {
		_, err = tx.Exec(ctx,
			`UPDATE chat_sessions SET title = $1 WHERE id = $2 AND title = 'New Chat'`,
			domain.TitleFor([]domain.Message{msg}), id,
		)
		if err != nil {
			return fmt.Errorf("failed to update title: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// List returns summaries for all sessions, newest first
func (s *Store) List(ctx context.Context) ([]domain.SessionSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.title, s.created_at, COUNT(m.seq)
		FROM chat_sessions s
		LEFT JOIN chat_messages m ON m.session_id = s.id
		GROUP BY s.id, s.title, s.created_at
		ORDER BY s.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	summaries := []domain.SessionSummary{}
	for rows.Next() {
		var summary domain.SessionSummary
		if err := rows.Scan(&summary.ID, &summary.Title, &summary.CreatedAt, &summary.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// Delete removes a session and its messages
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Close closes the connection pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
