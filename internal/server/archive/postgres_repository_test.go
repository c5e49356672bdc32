package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpress/newsdesk/internal/common"
)

func itemRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "guid", "item_type", "headline", "slugline", "language", "version", "body_html",
		"firstcreated", "versioncreated", "firstpublished", "embargo", "authors", "associations", "extra",
	}).AddRow(
		"item-1", "urn:item-1", TypeText, "Headline", "slug", "en", 3, "<p>body</p>",
		now, now, nil, nil,
		[]byte(`[{"name":"Jane Doe","code":"abc","role":"writer"}]`),
		[]byte(`{"featuremedia":{"renditions":{"original":{"href":"/api/upload-raw/a.jpg"}}}}`),
		[]byte(`{"doi":"10.54377/abc"}`),
	)
}

func TestGetItem_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM items WHERE id =").
		WithArgs("item-1").
		WillReturnRows(itemRows())

	repo, err := NewPostgresRepository(db)
	require.NoError(t, err)

	item, err := repo.GetItem(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, "Headline", item.Headline)
	assert.Len(t, item.Authors, 1)
	assert.Equal(t, "Jane Doe", item.Authors[0].Name)
	assert.Equal(t, "10.54377/abc", item.Extra.String("doi"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetItem_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM items").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo, _ := NewPostgresRepository(db)
	_, err = repo.GetItem(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestSystemUpdateExtra(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE items SET extra =").
		WithArgs("item-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo, _ := NewPostgresRepository(db)
	err = repo.SystemUpdateExtra(context.Background(), "item-1", Extra{})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSystemUpdateExtra_MissingItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE items SET extra =").
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo, _ := NewPostgresRepository(db)
	err = repo.SystemUpdateExtra(context.Background(), "missing", Extra{})
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestNextPublishSequence(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO publish_sequences").
		WithArgs("crossref").
		WillReturnRows(sqlmock.NewRows([]string{"last_seq"}).AddRow(42))

	repo, _ := NewPostgresRepository(db)
	seq, err := repo.NextPublishSequence(context.Background(), "crossref")
	require.NoError(t, err)
	assert.Equal(t, 42, seq)
}
