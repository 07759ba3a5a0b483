package repository

import (
	"context"
	"database/sql"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/model"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/shared/storage/dbutil"
)

// CreateUser 创建用户并回填服务端分配的 ID
//
// 邮箱唯一约束冲突时返回 ErrEmailExists。
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if s.dialect.DriverType() == dbutil.DriverPostgres {
		err := s.db.QueryRowContext(ctx,
			`INSERT INTO users (name, email, gender, phone)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			user.Name, user.Email, user.Gender, user.Phone,
		).Scan(&user.ID)
		if err != nil && s.dialect.IsUniqueViolation(err) {
			return ErrEmailExists
		}
		return err
	}

	// SQLite 不支持 RETURNING 的旧语法路径，用 LastInsertId
	res, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO users (name, email, gender, phone) VALUES ($1, $2, $3, $4)`),
		user.Name, user.Email, user.Gender, user.Phone,
	)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

// UpdateUser 按 ID 全量更新用户字段
//
// 返回更新后的记录；记录不存在时返回 (nil, nil)；
// 邮箱唯一约束冲突时返回 ErrEmailExists。
func (s *Store) UpdateUser(ctx context.Context, id int64, draft model.Draft) (*model.User, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE users SET name = $1, email = $2, gender = $3, phone = $4, updated_at = `+s.now()+`
		 WHERE id = $5`),
		draft.Name, draft.Email, draft.Gender, draft.Phone, id,
	)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetUser(ctx, id)
}

// GetUser 按 ID 查找用户，不存在时返回 (nil, nil)
func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user := &model.User{}
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, name, email, gender, phone FROM users WHERE id = $1`), id,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Gender, &user.Phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// ListUsers 列出所有用户，按 ID 升序
func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, name, email, gender, phone FROM users ORDER BY id ASC`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Gender, &user.Phone); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// EmailTaken 邮箱是否已被 excludeID 之外的记录占用
//
// excludeID 为 0 表示创建场景，不排除任何记录。
func (s *Store) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT COUNT(1) FROM users WHERE email = $1 AND id != $2`), email, excludeID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
