package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/labstock/internal/model"
)

// NewUser holds the fields of an account to create.
type NewUser struct {
	Username     string
	PasswordHash string
	DisplayName  string
	GroupName    string
	Role         string
	Approved     bool
	Email        string
}

// UserUpdate holds the admin-editable account fields.
type UserUpdate struct {
	DisplayName string
	GroupName   string
	Role        string
	Email       string
}

const userColumns = `id, username, password_hash, display_name, group_name, role, approved, email, created_at`

func scanUser(row interface{ Scan(...any) error }, u *model.User) error {
	return row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.DisplayName, &u.GroupName,
		&u.Role, &u.Approved, &u.Email, &u.CreatedAt)
}

// CreateUser creates a new user. A taken username is a conflict.
func CreateUser(ctx context.Context, db *sql.DB, nu NewUser) (*model.User, error) {
	existing, err := GetUserByUsername(ctx, db, nu.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %q already exists", model.ErrConflict, nu.Username)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, display_name, group_name, role, approved, email)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nu.Username, nu.PasswordHash, nu.DisplayName, nu.GroupName, nu.Role, nu.Approved, nu.Email,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or nil if there is none.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u := &model.User{}
	err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	), u)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByUsername returns a user by username, or nil if there is none.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	u := &model.User{}
	err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username,
	), u)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return u, nil
}

// ListUsers returns all users, pending approvals first.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	return queryUsers(ctx, db,
		`SELECT `+userColumns+` FROM users ORDER BY approved, group_name, username`,
	)
}

// ListNotifiableUsers returns approved members of group that have an email
// address.
func ListNotifiableUsers(ctx context.Context, db *sql.DB, group string) ([]model.User, error) {
	return queryUsers(ctx, db,
		`SELECT `+userColumns+` FROM users
		 WHERE group_name = ? AND approved = 1 AND email != ''
		 ORDER BY username`, group,
	)
}

func queryUsers(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.User, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser updates a user's profile, group and role.
func UpdateUser(ctx context.Context, db *sql.DB, id int64, upd UserUpdate) error {
	return execOne(ctx, db, "updating user",
		`UPDATE users SET display_name = ?, group_name = ?, role = ?, email = ? WHERE id = ?`,
		upd.DisplayName, upd.GroupName, upd.Role, upd.Email, id,
	)
}

// ApproveUser lets a self-registered user log in.
func ApproveUser(ctx context.Context, db *sql.DB, id int64) error {
	return execOne(ctx, db, "approving user",
		`UPDATE users SET approved = 1 WHERE id = ?`, id,
	)
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	return execOne(ctx, db, "updating user password",
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id,
	)
}

// DeleteUser removes a user. Check records keep the name they were
// submitted under.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	return execOne(ctx, db, "deleting user", `DELETE FROM users WHERE id = ?`, id)
}

// execOne runs a single-row statement and maps zero affected rows to
// model.ErrNotFound.
func execOne(ctx context.Context, db *sql.DB, action, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", action, model.ErrNotFound)
	}
	return nil
}
