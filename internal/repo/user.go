package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/assettrack/assettrack/internal/apperr"
	"github.com/assettrack/assettrack/internal/models"
)

const userColumns = `id, username, email, password_hash, role, active, created_at`

// UserRepo persists application accounts.
type UserRepo struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	return u, err
}

// Create inserts a new user with an already-hashed password.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash, role string) (models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password_hash, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		username, email, passwordHash, role))
	if err != nil && isUniqueViolation(err) {
		return models.User{}, apperr.Conflict("username or email already exists")
	}
	return u, err
}

// GetByID returns a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int) (models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperr.NotFound("user %d", id)
	}
	return u, err
}

// GetByUsername returns a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperr.NotFound("user %q", username)
	}
	return u, err
}

// List returns users in id order, paginated.
func (r *UserRepo) List(ctx context.Context, page, size int) (models.Page[models.User], error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return models.Page[models.User]{}, err
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`,
		size, (page-1)*size)
	if err != nil {
		return models.Page[models.User]{}, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return models.Page[models.User]{}, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return models.Page[models.User]{}, err
	}
	return models.NewPage(users, total, page, size), nil
}

// SetRole changes a user's role.
func (r *UserRepo) SetRole(ctx context.Context, id int, role string) (models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`UPDATE users SET role = $1 WHERE id = $2 RETURNING `+userColumns, role, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperr.NotFound("user %d", id)
	}
	return u, err
}

// SetActive enables or disables an account.
func (r *UserRepo) SetActive(ctx context.Context, id int, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("user %d", id)
	}
	return nil
}
