package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"merchant-api/logger"
	"merchant-api/model"

	"github.com/sirupsen/logrus"
)

// IUserRepository defines the contract for user database operations.
type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]*model.User, error)
	UpdateUserRole(ctx context.Context, id int, role string) error
	UpdateCompanyName(ctx context.Context, id int, companyName string) error
	MarkEmailVerified(ctx context.Context, id int) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	DeleteUser(ctx context.Context, id int) error
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, email, password, role, company_name, email_verified, created_at, updated_at`

func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	log := logger.Log.WithFields(logrus.Fields{"email": user.Email, "role": user.Role})
	log.Info("Executing query to create a new user")

	query := `INSERT INTO users (email, password, role, company_name) VALUES ($1, $2, $3, $4) RETURNING id, email_verified, created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query, user.Email, user.Password, user.Role, user.CompanyName).
		Scan(&user.ID, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		log.WithError(err).Error("Failed to execute create user query")
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getUser(ctx, query, email)
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getUser(ctx, query, id)
}

func (r *UserRepository) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Email, &user.Password, &user.Role,
		&user.CompanyName, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRecord
		}
		logger.Log.WithError(err).Error("Failed to execute get user query")
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*model.User, error) {
	logger.Log.Info("Executing query to list all users")

	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute list users query")
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(&user.ID, &user.Email, &user.Password, &user.Role,
			&user.CompanyName, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) UpdateUserRole(ctx context.Context, id int, role string) error {
	logger.Log.WithFields(logrus.Fields{"user_id": id, "role": role}).Info("Executing query to update user role")
	return r.exec(ctx, "update user role", `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`, role, id)
}

func (r *UserRepository) UpdateCompanyName(ctx context.Context, id int, companyName string) error {
	logger.Log.WithField("user_id", id).Info("Executing query to update company name")
	return r.exec(ctx, "update company name", `UPDATE users SET company_name = $1, updated_at = NOW() WHERE id = $2`, companyName, id)
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, id int) error {
	logger.Log.WithField("user_id", id).Info("Executing query to mark email as verified")
	return r.exec(ctx, "mark email verified", `UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE id = $1`, id)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	logger.Log.WithField("user_id", id).Info("Executing query to update user password")
	return r.exec(ctx, "update password", `UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
}

// DeleteUser removes the user. Outstanding verification tokens go with it (ON DELETE CASCADE).
func (r *UserRepository) DeleteUser(ctx context.Context, id int) error {
	logger.Log.WithField("user_id", id).Info("Executing query to delete user")
	return r.exec(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
}

// exec runs a single-row statement and maps "nothing affected" to ErrNoRecord.
func (r *UserRepository) exec(ctx context.Context, op, query string, args ...any) error {
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Log.WithError(err).Errorf("Failed to execute %s query", op)
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoRecord)
	}
	return nil
}
