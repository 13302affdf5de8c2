package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/FloraSpot/FloraSpot-Back/internal/errs"
)

func newMockPostgres(t *testing.T) (*Postgres, sqlmock.Sqlmock, func()) {
	t.Helper()

	// Setup mock database
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)

	// Configure GORM with mock
	dialector := postgres.New(postgres.Config{
		Conn:                 mockDB,
		DriverName:           "postgres",
		PreferSimpleProtocol: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	assert.NoError(t, err)

	return NewPostgres(db), mock, func() { mockDB.Close() }
}

func TestPostgresGet(t *testing.T) {
	pg, mock, done := newMockPostgres(t)
	defer done()

	rows := sqlmock.NewRows([]string{"path", "collection", "created_at", "data"}).
		AddRow("posts/p1", "posts", int64(100), []byte(`{"id":"p1","user_id":"alice","created_at":100}`))
	mock.ExpectQuery(`SELECT`).WillReturnRows(rows)

	var got struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
	}
	err := pg.Get(context.Background(), "posts/p1", &got)
	assert.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, "alice", got.UserID)
}

func TestPostgresGetNotFound(t *testing.T) {
	pg, mock, done := newMockPostgres(t)
	defer done()

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(sqlmock.NewRows([]string{"path", "collection", "created_at", "data"}))

	var got map[string]interface{}
	err := pg.Get(context.Background(), "posts/absent", &got)
	assert.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestPostgresList(t *testing.T) {
	pg, mock, done := newMockPostgres(t)
	defer done()

	rows := sqlmock.NewRows([]string{"path", "collection", "created_at", "data"}).
		AddRow("posts/p2", "posts", int64(300), []byte(`{"id":"p2","created_at":300}`)).
		AddRow("posts/p1", "posts", int64(100), []byte(`{"id":"p1","created_at":100}`))
	mock.ExpectQuery(`SELECT`).WillReturnRows(rows)

	docs, err := pg.List(context.Background(), "posts", ListOptions{Limit: 10})
	assert.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, "posts/p2", docs[0].Path)
}

func TestPostgresCount(t *testing.T) {
	pg, mock, done := newMockPostgres(t)
	defer done()

	mock.ExpectQuery(`SELECT count`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	n, err := pg.Count(context.Background(), "comments/p1")
	assert.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
