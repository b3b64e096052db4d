package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sushant-115/pagestore/core/storage/dberror"
)

func openCatalog(t *testing.T, dir string) *Catalog {
	t.Helper()
	c, err := Open(dir, "Test", zap.NewNop(), nil)
	require.NoError(t, err)
	return c
}

func TestOpen_CreatesEmptyCatalogFile(t *testing.T) {
	dir := t.TempDir()
	c := openCatalog(t, dir)

	assert.Equal(t, filepath.Join(dir, "Test.catalog.txt"), c.Filename())
	assert.FileExists(t, c.Filename())
	assert.Empty(t, c.GetTypes())
}

func TestCreateType(t *testing.T) {
	dir := t.TempDir()
	c := openCatalog(t, dir)
	ctx := context.Background()

	res, err := c.CreateType(ctx, "Car", []string{"id", "make"}, "id")
	require.NoError(t, err)
	assert.Equal(t, TypeCreated, res)
	assert.FileExists(t, filepath.Join(dir, "car.type.txt"))

	raw, err := os.ReadFile(c.Filename())
	require.NoError(t, err)
	assert.Equal(t, "Car       !2:id      :id      ,make    \n", string(raw))

	typ, ok := c.GetType("CAR")
	require.True(t, ok)
	assert.Equal(t, "Car", typ.Name())
}

func TestCreateType_ExistingNameIsLeftAlone(t *testing.T) {
	c := openCatalog(t, t.TempDir())
	ctx := context.Background()

	_, err := c.CreateType(ctx, "Car", []string{"id", "make"}, "id")
	require.NoError(t, err)

	res, err := c.CreateType(ctx, "car", []string{"vin"}, "vin")
	require.NoError(t, err)
	assert.Equal(t, TypeExists, res)

	require.Len(t, c.GetTypes(), 1)
	assert.Equal(t, []string{"id", "make"}, c.GetTypes()[0].Schema().Fields())
}

func TestCreateType_InvalidSchema(t *testing.T) {
	c := openCatalog(t, t.TempDir())

	_, err := c.CreateType(context.Background(), "Car", []string{"id"}, "vin")
	require.ErrorIs(t, err, dberror.ErrInvalidSchema)
	assert.Empty(t, c.GetTypes())

	raw, err := os.ReadFile(c.Filename())
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestDeleteType(t *testing.T) {
	dir := t.TempDir()
	c := openCatalog(t, dir)
	ctx := context.Background()

	for _, name := range []string{"Car", "Person", "Pet"} {
		_, err := c.CreateType(ctx, name, []string{"id"}, "id")
		require.NoError(t, err)
	}

	res, err := c.DeleteType(ctx, "person")
	require.NoError(t, err)
	assert.Equal(t, TypeDeleted, res)
	assert.NoFileExists(t, filepath.Join(dir, "person.type.txt"))

	names := []string{}
	for _, typ := range c.GetTypes() {
		names = append(names, typ.Name())
	}
	assert.Equal(t, []string{"Car", "Pet"}, names)

	res, err = c.DeleteType(ctx, "person")
	require.NoError(t, err)
	assert.Equal(t, TypeMissing, res)
}

func TestOpen_ReloadsTypesAndRecords(t *testing.T) {
	dir := t.TempDir()
	c := openCatalog(t, dir)
	ctx := context.Background()

	_, err := c.CreateType(ctx, "Car", []string{"id", "make"}, "id")
	require.NoError(t, err)
	_, err = c.CreateType(ctx, "Person", []string{"name", "age"}, "name")
	require.NoError(t, err)
	car, _ := c.GetType("Car")
	_, err = car.CreateRecord(ctx, map[string]string{"id": "1", "make": "VW"})
	require.NoError(t, err)

	reopened := openCatalog(t, dir)
	types := reopened.GetTypes()
	require.Len(t, types, 2)
	assert.True(t, c.GetTypes()[0].Schema().Equal(types[0].Schema()))
	assert.True(t, c.GetTypes()[1].Schema().Equal(types[1].Schema()))

	r, found := types[0].GetRecord("1")
	require.True(t, found)
	assert.Equal(t, "VW", r.ValueOf("make"))
}

func TestOpen_CorruptLineAborts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Test.catalog.txt")
	require.NoError(t, os.WriteFile(path, []byte("Car!1:id:id\nthis is junk\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "car.type.txt"), nil, 0644))

	_, err := Open(dir, "Test", zap.NewNop(), nil)
	require.ErrorIs(t, err, dberror.ErrInvalidSchema)
	assert.Contains(t, err.Error(), "line 2")
}

func TestOpen_MissingDataFileAborts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Test.catalog.txt")
	require.NoError(t, os.WriteFile(path, []byte("Car!1:id:id\n"), 0644))

	_, err := Open(dir, "Test", zap.NewNop(), nil)
	require.ErrorIs(t, err, dberror.ErrIO)
}

// breakCatalogFile swaps the catalog file for a directory so rewrites fail.
func breakCatalogFile(t *testing.T, c *Catalog) {
	t.Helper()
	require.NoError(t, os.Remove(c.Filename()))
	require.NoError(t, os.Mkdir(c.Filename(), 0755))
}

func repairCatalogFile(t *testing.T, c *Catalog) {
	t.Helper()
	require.NoError(t, os.Remove(c.Filename()))
}

func TestCreateType_FailedRewriteLeavesTypeUnregistered(t *testing.T) {
	c := openCatalog(t, t.TempDir())
	ctx := context.Background()

	breakCatalogFile(t, c)
	res, err := c.CreateType(ctx, "Car", []string{"id"}, "id")
	require.ErrorIs(t, err, dberror.ErrIO)
	assert.Equal(t, CreateTypeUnknown, res)
	_, ok := c.GetType("Car")
	assert.False(t, ok)

	repairCatalogFile(t, c)
	res, err = c.CreateType(ctx, "Car", []string{"id"}, "id")
	require.NoError(t, err)
	assert.Equal(t, TypeCreated, res)
}

func TestDeleteType_FailedRewriteKeepsType(t *testing.T) {
	dir := t.TempDir()
	c := openCatalog(t, dir)
	ctx := context.Background()
	_, err := c.CreateType(ctx, "Car", []string{"id"}, "id")
	require.NoError(t, err)

	breakCatalogFile(t, c)
	res, err := c.DeleteType(ctx, "Car")
	require.ErrorIs(t, err, dberror.ErrIO)
	assert.Equal(t, DeleteTypeUnknown, res)
	_, ok := c.GetType("Car")
	assert.True(t, ok)
	assert.FileExists(t, filepath.Join(dir, "car.type.txt"))
}

func TestCreateType_InvalidSchemaResultIsUnknown(t *testing.T) {
	c := openCatalog(t, t.TempDir())
	res, err := c.CreateType(context.Background(), "Car", nil, "id")
	require.ErrorIs(t, err, dberror.ErrInvalidSchema)
	assert.Equal(t, CreateTypeUnknown, res)
	assert.Equal(t, "unknown", res.String())
}
