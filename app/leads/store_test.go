package leads

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/leadquiz/app/leads/migrations"
	"github.com/m3rciful/leadquiz/core/database"
)

var sevenAnswers = []string{"Ivan", "IT", "Growth", "100k", "1 month", "yes, example.com", "@ivan"}

func setupMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	s := NewStore(sqlx.NewDb(mockDB, "sqlmock"), len(sevenAnswers))
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("MSK", 3*3600)) }
	return s, mock
}

func setupSQLiteStore(t *testing.T) *Store {
	cfg := database.Config{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "db", "leads.sqlite3")}
	src, err := migrations.For(database.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(cfg, src))

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db, len(sevenAnswers))
}

func TestAppendInsertsInTransaction(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertLeadSQL)).
		WithArgs(int64(42), "ivan", "Ivan|||IT|||Growth|||100k|||1 month|||yes, example.com|||@ivan", "2026-03-01T09:00:00Z").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectCommit()

	id, err := s.Append(context.Background(), 42, " ivan ", sevenAnswers)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendStoresNullUsername(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertLeadSQL)).
		WithArgs(int64(1), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectCommit()

	_, err := s.Append(context.Background(), 1, "", sevenAnswers)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendRollsBackOnInsertError(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertLeadSQL)).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err := s.Append(context.Background(), 1, "u", sevenAnswers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendRejectsWrongAnswerCount(t *testing.T) {
	s, mock := setupMockStore(t)

	_, err := s.Append(context.Background(), 1, "u", sevenAnswers[:3])
	assert.ErrorIs(t, err, ErrAnswerCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountAndGetWithMock(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(countLeadsSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	mock.ExpectQuery(regexp.QuoteMeta(getLeadSQL)).WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "username", "answers", "created_at"}))
	_, err = s.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteAppendIncrementsCountByOne(t *testing.T) {
	s := setupSQLiteStore(t)
	ctx := context.Background()

	before, err := s.Count(ctx)
	require.NoError(t, err)

	id, err := s.Append(ctx, 42, "ivan", sevenAnswers)
	require.NoError(t, err)

	after, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	lead, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), lead.UserID)
	assert.Equal(t, "ivan", lead.Username.String)
	assert.Equal(t, Answers(sevenAnswers), lead.Answers)
	_, err = lead.CreatedTime()
	assert.NoError(t, err)
}

func TestSQLiteConcurrentAppendsGetUniqueIDs(t *testing.T) {
	s := setupSQLiteStore(t)
	ctx := context.Background()

	const writers = 20
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[int64]struct{}, writers)
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(user int64) {
			defer wg.Done()
			id, err := s.Append(ctx, user, "", sevenAnswers)
			assert.NoError(t, err)
			mu.Lock()
			ids[id] = struct{}{}
			mu.Unlock()
		}(int64(i))
	}
	wg.Wait()

	assert.Len(t, ids, writers)
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers, n)
}

func TestAnswersScan(t *testing.T) {
	var a Answers
	require.NoError(t, a.Scan([]byte("a||| |||c")))
	assert.Equal(t, Answers{"a", " ", "c"}, a)

	require.NoError(t, a.Scan(nil))
	assert.Nil(t, a)

	assert.Error(t, a.Scan(12))

	v, err := Answers{"", "x"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "|||x", v)
}

func TestMigrationsFor(t *testing.T) {
	for _, driver := range []string{"sqlite", "postgres"} {
		src, err := migrations.For(driver)
		require.NoError(t, err)
		_, err = src.Open("000001_create_leads.up.sql")
		assert.NoError(t, err, driver)
	}
	_, err := migrations.For("oracle")
	assert.Error(t, err)
}
