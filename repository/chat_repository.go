package repository

import (
	"context"
	"fmt"
	"time"

	"lexdesk-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatRepository handles database operations for chat sessions and messages
type ChatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateSession creates a new chat session
func (r *ChatRepository) CreateSession(ctx context.Context, session *models.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (
			tenant_id, user_id, client_name, area, status
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		session.TenantID,
		session.UserID,
		session.ClientName,
		session.Area,
		session.Status,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)

	return err
}

const sessionColumns = `
	id, tenant_id, user_id, client_name, area, status,
	last_message, last_message_at, report_path, report_url,
	created_at, updated_at`

func scanSession(row interface{ Scan(...interface{}) error }) (*models.ChatSession, error) {
	session := &models.ChatSession{}
	err := row.Scan(
		&session.ID,
		&session.TenantID,
		&session.UserID,
		&session.ClientName,
		&session.Area,
		&session.Status,
		&session.LastMessage,
		&session.LastMessageAt,
		&session.ReportPath,
		&session.ReportURL,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession retrieves a chat session by ID within a tenant
func (r *ChatRepository) GetSession(ctx context.Context, tenantID, id uuid.UUID) (*models.ChatSession, error) {
	query := `SELECT` + sessionColumns + `
		FROM chat_sessions
		WHERE id = $1 AND tenant_id = $2`

	return scanSession(r.db.QueryRow(ctx, query, id, tenantID))
}

// ListSessions retrieves chat sessions for a tenant, most recently active first
func (r *ChatRepository) ListSessions(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.ChatSession, error) {
	query := `SELECT` + sessionColumns + `
		FROM chat_sessions
		WHERE tenant_id = $1
		ORDER BY COALESCE(last_message_at, created_at) DESC`

	args := []interface{}{tenantID}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.ChatSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// UpdateSessionSummary refreshes the session preview after a new exchange
func (r *ChatRepository) UpdateSessionSummary(ctx context.Context, tenantID, id uuid.UUID, lastMessage string, at time.Time) error {
	query := `
		UPDATE chat_sessions SET
			last_message = $3,
			last_message_at = $4,
			updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	_, err := r.db.Exec(ctx, query, id, tenantID, lastMessage, at)
	return err
}

// UpdateSessionReport stores the generated intake report location
func (r *ChatRepository) UpdateSessionReport(ctx context.Context, tenantID, id uuid.UUID, reportPath, reportURL string) error {
	query := `
		UPDATE chat_sessions SET
			report_path = $3,
			report_url = $4,
			updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	_, err := r.db.Exec(ctx, query, id, tenantID, reportPath, reportURL)
	return err
}

// UpdateSessionStatus changes the session lifecycle state
func (r *ChatRepository) UpdateSessionStatus(ctx context.Context, tenantID, id uuid.UUID, status models.ChatSessionStatus) error {
	query := `
		UPDATE chat_sessions SET
			status = $3,
			updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	_, err := r.db.Exec(ctx, query, id, tenantID, status)
	return err
}

// CreateMessage appends a message to a session
func (r *ChatRepository) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (
			session_id, tenant_id, role, content, file_path
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		message.SessionID,
		message.TenantID,
		message.Role,
		message.Content,
		message.FilePath,
	).Scan(&message.ID, &message.CreatedAt)

	return err
}

// ListMessages retrieves the messages of a session in chronological order
func (r *ChatRepository) ListMessages(ctx context.Context, tenantID, sessionID uuid.UUID) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, session_id, tenant_id, role, content, file_path, created_at
		FROM chat_messages
		WHERE session_id = $1 AND tenant_id = $2
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, sessionID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		message := &models.ChatMessage{}
		err := rows.Scan(
			&message.ID,
			&message.SessionID,
			&message.TenantID,
			&message.Role,
			&message.Content,
			&message.FilePath,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

// DeleteSession deletes a session and its messages
func (r *ChatRepository) DeleteSession(ctx context.Context, tenantID, id uuid.UUID) error {
	// Messages cascade via FK
	query := `DELETE FROM chat_sessions WHERE id = $1 AND tenant_id = $2`
	_, err := r.db.Exec(ctx, query, id, tenantID)
	return err
}
