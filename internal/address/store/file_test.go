package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cepbook/internal/sentinel"
	id "cepbook/pkg/domain"
)

func newFileStore(t *testing.T) (*File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	return NewFile(path, nil), path
}

func TestFileMissingBlobIsEmptyCollection(t *testing.T) {
	store, _ := newFileStore(t)

	records, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFilePersistsAcrossReopen(t *testing.T) {
	store, path := newFileStore(t)
	ctx := context.Background()

	record := newRecord("Maria Souza")
	require.NoError(t, store.Create(ctx, record))

	reopened := NewFile(path, nil)
	found, err := reopened.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", found.Name)
	assert.Equal(t, "01310-100", found.PostalCode)
	assert.Equal(t, record.CreatedAt.UnixMilli(), found.CreatedAt.UnixMilli())
}

func TestFileBlobFieldNamesAreStable(t *testing.T) {
	store, path := newFileStore(t)
	ctx := context.Background()

	record := newRecord("Maria Souza")
	record.Complement = "Apto 12"
	require.NoError(t, store.Create(ctx, record))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var blobs []map[string]any
	require.NoError(t, json.Unmarshal(data, &blobs))
	require.Len(t, blobs, 1)

	for _, key := range []string{"id", "name", "cep", "street", "number", "city", "uf", "complement", "createdAt"} {
		assert.Contains(t, blobs[0], key)
	}
	assert.Equal(t, "01310-100", blobs[0]["cep"])
	assert.Equal(t, "SP", blobs[0]["uf"])
	assert.EqualValues(t, record.CreatedAt.UnixMilli(), blobs[0]["createdAt"])
}

func TestFileCorruptBlobDegradesToEmpty(t *testing.T) {
	store, path := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	// Writing after corruption starts the collection over.
	require.NoError(t, store.Create(ctx, newRecord("Ana Costa")))
	records, err = store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFileSearchByName(t *testing.T) {
	store, _ := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newRecord("José Almeida")))
	require.NoError(t, store.Create(ctx, newRecord("Ana Costa")))

	results, err := store.SearchByName(ctx, "jose")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "José Almeida", results[0].Name)

	results, err = store.SearchByName(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFileDeleteRewritesBlob(t *testing.T) {
	store, _ := newFileStore(t)
	ctx := context.Background()

	first := newRecord("Maria Souza")
	second := newRecord("Ana Costa")
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))

	deleted, err := store.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, second.ID, records[0].ID)

	deleted, err = store.Delete(ctx, id.NewRecordID())
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFileCreateDuplicateIDReturnsError(t *testing.T) {
	store, _ := newFileStore(t)
	ctx := context.Background()

	record := newRecord("Maria Souza")
	require.NoError(t, store.Create(ctx, record))

	dup := newRecord("Outra Pessoa")
	dup.ID = record.ID
	err := store.Create(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrInvalidInput)
}
