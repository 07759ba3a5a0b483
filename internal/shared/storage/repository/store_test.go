// Package repository SQLite 集成测试
//
// 使用 SQLite 内存数据库验证存储层接口，无需外部数据库依赖。
package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/model"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/shared/storage/dbutil"
	sqlitedriver "github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/shared/storage/driver/sqlite"
)

// newTestStore 创建用于测试的 SQLite 内存数据库 Store
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })
	return store
}

func newUser(email string) *model.User {
	return &model.User{Name: "Jane Smith", Email: email, Gender: "female", Phone: "0123456789"}
}

// ============================================================================
// Dialect 基础测试
// ============================================================================

func TestDialectBasics(t *testing.T) {
	d := sqlitedriver.NewDialect()
	assert.Equal(t, dbutil.DriverSQLite, d.DriverType())
	assert.Equal(t, "datetime('now')", d.CurrentTimestamp())
	assert.Equal(t, "SELECT * FROM users WHERE id = ?",
		d.Rebind("SELECT * FROM users WHERE id = $1"))
}

// ============================================================================
// 用户 CRUD
// ============================================================================

func TestCreateUserAssignsID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := newUser("jane@example.com")
	require.NoError(t, store.CreateUser(ctx, u))
	assert.Equal(t, int64(1), u.ID)

	u2 := newUser("bob@example.com")
	require.NoError(t, store.CreateUser(ctx, u2))
	assert.Equal(t, int64(2), u2.ID, "ID 单调递增")
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newUser("jane@example.com")))

	err := store.CreateUser(ctx, newUser("jane@example.com"))
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestGetUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := newUser("jane@example.com")
	require.NoError(t, store.CreateUser(ctx, u))

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.Email, got.Email)

	missing, err := store.GetUser(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing, "不存在返回 (nil, nil) 而非错误")
}

func TestUpdateUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := newUser("jane@example.com")
	require.NoError(t, store.CreateUser(ctx, u))

	updated, err := store.UpdateUser(ctx, u.ID, model.Draft{
		Name: "Jane Doe", Email: "jane@example.com", Gender: "female", Phone: "0987654321",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Jane Doe", updated.Name)
	assert.Equal(t, "0987654321", updated.Phone)

	missing, err := store.UpdateUser(ctx, 999, model.Draft{Name: "X", Email: "x@y.zz", Gender: "male", Phone: "0123456789"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateUserDuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newUser("jane@example.com")))
	u2 := newUser("bob@example.com")
	require.NoError(t, store.CreateUser(ctx, u2))

	_, err := store.UpdateUser(ctx, u2.ID, model.Draft{
		Name: "Bob Stone", Email: "jane@example.com", Gender: "male", Phone: "0123456789",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestListUsersOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, email := range []string{"c@example.com", "a@example.com", "b@example.com"} {
		require.NoError(t, store.CreateUser(ctx, newUser(email)))
	}

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	for i, u := range users {
		assert.Equal(t, int64(i+1), u.ID, "按 id 升序")
	}
}

func TestListUsersEmpty(t *testing.T) {
	store := newTestStore(t)
	users, err := store.ListUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestEmailTaken(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := newUser("jane@example.com")
	require.NoError(t, store.CreateUser(ctx, u))

	taken, err := store.EmailTaken(ctx, "jane@example.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = store.EmailTaken(ctx, "new@example.com", 0)
	require.NoError(t, err)
	assert.False(t, taken)

	// 编辑场景排除自身
	taken, err = store.EmailTaken(ctx, "jane@example.com", u.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}
