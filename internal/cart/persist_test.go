package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	"github.com/angelmondragon/ecofinds-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	pkgredis "github.com/angelmondragon/ecofinds-backend/pkg/redis"
)

type flakyPersister struct {
	mu    sync.Mutex
	fail  bool
	saves int
	inner *MemoryPersister
}

func newFlakyPersister() *flakyPersister {
	return &flakyPersister{inner: NewMemoryPersister()}
}

func (f *flakyPersister) Name() string { return "flaky" }

func (f *flakyPersister) Load(ctx context.Context, owner string) ([]LineItem, error) {
	return f.inner.Load(ctx, owner)
}

func (f *flakyPersister) Save(ctx context.Context, owner string, items []LineItem) error {
	f.mu.Lock()
	f.saves++
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errors.New("storage unavailable")
	}
	return f.inner.Save(ctx, owner, items)
}

func (f *flakyPersister) setFail(fail bool) {
	f.mu.Lock()
	f.fail = fail
	f.mu.Unlock()
}

func TestStorePersistsAndHydrates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	persister := NewMemoryPersister()

	first := Open(ctx, "session:abc", Options{Persister: persister})
	first.AddItem(mug(), 2)
	first.AddItem(bag(), 1)
	first.RemoveItem("p2")
	first.AddItem(bag(), 1)
	require.NoError(t, first.Flush(ctx))
	require.NoError(t, first.Close(ctx))

	second := Open(ctx, "session:abc", Options{Persister: persister})
	defer second.Close(ctx)
	requireSameItems(t, first.Items(), second.Items())
	require.Equal(t, 3, second.TotalItems())
}

func TestStoreHydratesEmptyOnMissingOrCorruptState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	persister := NewMemoryPersister()
	persister.Put("session:corrupt", []byte("{{{"))

	missing := Open(ctx, "session:none", Options{Persister: persister})
	defer missing.Close(ctx)
	require.Empty(t, missing.Items())

	corrupt := Open(ctx, "session:corrupt", Options{Persister: persister})
	defer corrupt.Close(ctx)
	require.Empty(t, corrupt.Items())

	corrupt.AddItem(mug(), 1)
	require.NoError(t, corrupt.Flush(ctx))
	raw, ok := persister.Raw("session:corrupt")
	require.True(t, ok)
	items, err := DecodeSnapshot(raw)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestStoreKeepsWorkingWhenPersistenceFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	persister := newFlakyPersister()
	persister.setFail(true)

	store := Open(ctx, "user:1", Options{Persister: persister, WriteTimeout: time.Second})
	defer store.Close(ctx)

	store.AddItem(mug(), 1)
	require.Equal(t, 1, store.TotalItems())

	err := store.Flush(ctx)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodePersistence), "unexpected error %v", err)
	require.False(t, store.PersistenceHealthy())

	persister.setFail(false)
	store.AddItem(mug(), 1)
	require.NoError(t, store.Flush(ctx))
	require.True(t, store.PersistenceHealthy())

	saved, err := persister.inner.Load(ctx, "user:1")
	require.NoError(t, err)
	require.Equal(t, 2, saved[0].Quantity)
}

func TestCloseWritesLatestSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	persister := NewMemoryPersister()
	store := Open(ctx, "session:close", Options{Persister: persister})

	for i := 0; i < 20; i++ {
		store.AddItem(mug(), 1)
	}
	require.NoError(t, store.Close(ctx))
	require.NoError(t, store.Close(ctx))

	saved, err := persister.Load(ctx, "session:close")
	require.NoError(t, err)
	require.Equal(t, 20, saved[0].Quantity)

	store.AddItem(bag(), 1)
	require.Len(t, store.Items(), 2)
}

func TestFlushWithoutPersister(t *testing.T) {
	t.Parallel()

	store := New()
	store.AddItem(mug(), 1)
	require.NoError(t, store.Flush(context.Background()))
	require.True(t, store.PersistenceHealthy())
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *pkgredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := pkgredis.New(context.Background(), config.RedisConfig{Address: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisPersister(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)

	persister, err := NewRedisPersister(client, time.Hour)
	require.NoError(t, err)
	require.Equal(t, "redis", persister.Name())

	_, err = persister.Load(ctx, "user:42")
	require.ErrorIs(t, err, ErrNoSnapshot)

	items := []LineItem{
		{ID: "p1", Name: "Mug", Price: decimal.RequireFromString("12.50"), Image: "/mug.png", Seller: "Alice", Quantity: 3},
	}
	require.NoError(t, persister.Save(ctx, "user:42", items))
	require.True(t, mr.Exists("ef:cart:user:42"))
	require.Equal(t, time.Hour, mr.TTL("ef:cart:user:42"))

	loaded, err := persister.Load(ctx, "user:42")
	require.NoError(t, err)
	requireSameItems(t, items, loaded)

	require.NoError(t, mr.Set("ef:cart:user:43", "broken"))
	_, err = persister.Load(ctx, "user:43")
	require.ErrorIs(t, err, ErrCorruptSnapshot)

	mr.Close()
	require.Error(t, persister.Save(ctx, "user:42", items))
}

func TestRedisPersisterBacksStore(t *testing.T) {
	ctx := context.Background()
	_, client := setupTestRedis(t)
	persister, err := NewRedisPersister(client, time.Hour)
	require.NoError(t, err)

	store := Open(ctx, "session:r", Options{Persister: persister})
	store.AddItem(mug(), 2)
	require.NoError(t, store.Close(ctx))

	again := Open(ctx, "session:r", Options{Persister: persister})
	defer again.Close(ctx)
	require.Equal(t, 2, again.TotalItems())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.CartSnapshot{}))
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func TestDBPersisterUpserts(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)

	persister, err := NewDBPersister(conn)
	require.NoError(t, err)

	_, err = persister.Load(ctx, "user:7")
	require.ErrorIs(t, err, ErrNoSnapshot)

	first := []LineItem{{ID: "p1", Name: "Mug", Price: decimal.RequireFromString("12.50"), Image: "/mug.png", Seller: "Alice", Quantity: 1}}
	require.NoError(t, persister.Save(ctx, "user:7", first))

	second := append(first, LineItem{ID: "p2", Name: "Bag", Price: decimal.RequireFromString("30"), Image: "/bag.png", Seller: "Bob", Quantity: 2})
	require.NoError(t, persister.Save(ctx, "user:7", second))

	var count int64
	require.NoError(t, conn.Model(&models.CartSnapshot{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	var snap models.CartSnapshot
	require.NoError(t, conn.First(&snap, "owner = ?", "user:7").Error)
	require.Equal(t, 3, snap.ItemCount)

	loaded, err := persister.Load(ctx, "user:7")
	require.NoError(t, err)
	requireSameItems(t, second, loaded)
}

func TestNewPersistersRequireClients(t *testing.T) {
	t.Parallel()

	_, err := NewDBPersister(nil)
	require.Error(t, err)
	_, err = NewRedisPersister(nil, time.Minute)
	require.Error(t, err)
}
