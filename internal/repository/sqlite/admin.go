package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/CharlesManalo/CommunitySafe/internal/models"
)

func (r *SQLiteRepo) CreateAdmin(ctx context.Context, a *models.AdminAccount) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("admin is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO admin (username, password_hash, created_at) VALUES (?, ?, ?)`,
		a.Username, a.PasswordHash, toMillis(time.Now()))
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetAdminByUsername(ctx context.Context, username string) (*models.AdminAccount, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM admin WHERE username = ?`, username)

	var a models.AdminAccount
	var createdAt int64
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	a.CreatedAt = fromMillis(createdAt)

	return &a, nil
}
