package repository

import (
	"context"

	"lexdesk-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users and the uid → tenant
// index consulted on every authenticated request.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user and its tenant index entry atomically
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO users (tenant_id, email, password_hash, name, role, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRow(
		ctx, query,
		user.TenantID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.Active,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO user_index (uid, tenant_id) VALUES ($1, $2)`,
		user.ID, user.TenantID,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const userColumns = `
	id, tenant_id, email, password_hash, name, role, active,
	created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.TenantID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user by ID within a tenant
func (r *UserRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	query := `SELECT` + userColumns + `
		FROM users
		WHERE id = $1 AND tenant_id = $2`

	return scanUser(r.db.QueryRow(ctx, query, id, tenantID))
}

// GetByEmail retrieves a user by email. Emails are globally unique, so this
// is the one user lookup that is not tenant-scoped; it backs login.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT` + userColumns + `
		FROM users
		WHERE email = $1`

	return scanUser(r.db.QueryRow(ctx, query, email))
}

// ResolveTenant returns the tenant a user id belongs to
func (r *UserRepository) ResolveTenant(ctx context.Context, uid uuid.UUID) (uuid.UUID, error) {
	var tenantID uuid.UUID
	err := r.db.QueryRow(ctx,
		`SELECT tenant_id FROM user_index WHERE uid = $1`,
		uid,
	).Scan(&tenantID)
	return tenantID, err
}

// ListByTenant retrieves all users of a tenant
func (r *UserRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.User, error) {
	query := `SELECT` + userColumns + `
		FROM users
		WHERE tenant_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// SetActive enables or disables a user account
func (r *UserRepository) SetActive(ctx context.Context, tenantID, id uuid.UUID, active bool) error {
	query := `
		UPDATE users SET
			active = $3,
			updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	_, err := r.db.Exec(ctx, query, id, tenantID, active)
	return err
}
