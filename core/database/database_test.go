package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/sushant-115/pagestore/core/catalog"
	"github.com/sushant-115/pagestore/core/storage/dberror"
	"github.com/sushant-115/pagestore/core/storage/page"
	"github.com/sushant-115/pagestore/core/storage/recordtype"
	"github.com/sushant-115/pagestore/pkg/telemetry"
)

func openDB(t *testing.T, dir string) *Database {
	t.Helper()
	db, err := Open(Options{Dir: dir, Logger: zap.NewNop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	db := openDB(t, dir)

	assert.Equal(t, DefaultName, db.Name())
	assert.Equal(t, filepath.Join(dir, "Datenbank.catalog.txt"), db.CatalogFile())
	assert.FileExists(t, db.CatalogFile())
	assert.Empty(t, db.ListTypes(context.Background()))
}

func TestStudentWorkload(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	db := openDB(t, dir)

	res, err := db.CreateType(ctx, "Student", []string{"matrnr", "name", "semester"}, "matrnr")
	require.NoError(t, err)
	require.Equal(t, catalog.TypeCreated, res)

	for n := 2000; n < 2100; n++ {
		res, err := db.CreateRecord(ctx, "Student", map[string]string{
			"matrnr":   fmt.Sprint(n),
			"name":     fmt.Sprintf("s%d", n),
			"semester": fmt.Sprint(n % 12),
		})
		require.NoError(t, err)
		require.Equal(t, recordtype.Inserted, res)
	}

	reopened := openDB(t, dir)
	records, err := reopened.GetRecordsByType(ctx, "student")
	require.NoError(t, err)
	require.Len(t, records, 100)
	for i, r := range records {
		assert.Equal(t, fmt.Sprint(2000+i), r.KeyValue())
	}

	pages, err := reopened.Pages(ctx, "Student")
	require.NoError(t, err)
	require.Len(t, pages, 5)
	for i, p := range pages {
		assert.Equal(t, page.PageID(i+1), p.ID)
		assert.Equal(t, page.Capacity, p.Used)
	}

	r, found, err := reopened.GetRecord(ctx, "Student", "2042")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "s2042", r.ValueOf("name"))
	assert.Equal(t, "2", r.ValueOf("semester"))
}

func TestRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	db := openDB(t, t.TempDir())

	_, err := db.CreateType(ctx, "Car", []string{"id", "make"}, "id")
	require.NoError(t, err)

	res, err := db.CreateRecord(ctx, "car", map[string]string{"id": "1", "make": "VW"})
	require.NoError(t, err)
	assert.Equal(t, recordtype.Inserted, res)

	res, err = db.CreateRecord(ctx, "car", map[string]string{"id": "1", "make": "BMW"})
	require.NoError(t, err)
	assert.Equal(t, recordtype.AlreadyExists, res)

	del, err := db.DeleteRecord(ctx, "Car", "1")
	require.NoError(t, err)
	assert.Equal(t, recordtype.Deleted, del)

	del, err = db.DeleteRecord(ctx, "Car", "1")
	require.NoError(t, err)
	assert.Equal(t, recordtype.NotFound, del)

	_, found, err := db.GetRecord(ctx, "Car", "1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUnknownType(t *testing.T) {
	ctx := context.Background()
	db := openDB(t, t.TempDir())

	ins, err := db.CreateRecord(ctx, "Nope", map[string]string{"id": "1"})
	require.ErrorIs(t, err, dberror.ErrTypeNotFound)
	assert.Equal(t, recordtype.InsertUnknown, ins)
	del, err := db.DeleteRecord(ctx, "Nope", "1")
	require.ErrorIs(t, err, dberror.ErrTypeNotFound)
	assert.Equal(t, recordtype.DeleteUnknown, del)
	_, _, err = db.GetRecord(ctx, "Nope", "1")
	require.ErrorIs(t, err, dberror.ErrTypeNotFound)
	_, err = db.GetRecordsByType(ctx, "Nope")
	require.ErrorIs(t, err, dberror.ErrTypeNotFound)
	_, err = db.Pages(ctx, "Nope")
	require.ErrorIs(t, err, dberror.ErrTypeNotFound)

	_, ok := db.GetType(ctx, "Nope")
	assert.False(t, ok)
	res, err := db.DeleteType(ctx, "Nope")
	require.NoError(t, err)
	assert.Equal(t, catalog.TypeMissing, res)
}

func TestDeleteTypeThenRecreate(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	db := openDB(t, dir)

	_, err := db.CreateType(ctx, "Pet", []string{"name"}, "name")
	require.NoError(t, err)
	_, err = db.CreateRecord(ctx, "Pet", map[string]string{"name": "Rex"})
	require.NoError(t, err)

	_, err = db.DeleteType(ctx, "Pet")
	require.NoError(t, err)
	_, err = db.CreateType(ctx, "Pet", []string{"name", "kind"}, "name")
	require.NoError(t, err)

	records, err := db.GetRecordsByType(ctx, "Pet")
	require.NoError(t, err)
	assert.Empty(t, records)

	s, ok := openDB(t, dir).GetType(ctx, "pet")
	require.True(t, ok)
	assert.Equal(t, []string{"name", "kind"}, s.Fields())
}

func TestOperationsAreTraced(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tel := &telemetry.Telemetry{
		Tracer: tp.Tracer("test"),
		Meter:  noop.NewMeterProvider().Meter("test"),
	}

	ctx := context.Background()
	db, err := Open(Options{Dir: t.TempDir(), Name: "Traced", Telemetry: tel})
	require.NoError(t, err)

	_, err = db.CreateType(ctx, "Car", []string{"id"}, "id")
	require.NoError(t, err)
	_, err = db.CreateRecord(ctx, "Ghost", map[string]string{"id": "1"})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "CreateType", spans[0].Name())
	assert.Equal(t, otelcodes.Ok, spans[0].Status().Code)
	assert.Equal(t, "CreateRecord", spans[1].Name())
	assert.Equal(t, otelcodes.Error, spans[1].Status().Code)
}
