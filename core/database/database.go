// Package database is the public surface of the record store. A Database is
// an explicit handle over one catalog; every call delegates to the catalog or
// to a record type and returns their results and errors unchanged.
package database

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sushant-115/pagestore/core/catalog"
	"github.com/sushant-115/pagestore/core/storage/dberror"
	"github.com/sushant-115/pagestore/core/storage/record"
	"github.com/sushant-115/pagestore/core/storage/recordtype"
	"github.com/sushant-115/pagestore/core/storage/schema"
	internaltelemetry "github.com/sushant-115/pagestore/internal/telemetry"
	"github.com/sushant-115/pagestore/pkg/logger"
	"github.com/sushant-115/pagestore/pkg/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultName is the database name used when none is configured.
const DefaultName = "Datenbank"

// Options configure Open.
type Options struct {
	// Dir holds the catalog and data files. Empty means the working directory.
	Dir string
	// Name selects the catalog file <Name>.catalog.txt.
	Name string
	// Logger receives progress and diagnostic lines. Nil disables logging.
	Logger *zap.Logger
	// Telemetry supplies the tracer and meter. Nil disables telemetry.
	Telemetry *telemetry.Telemetry
}

type Database struct {
	name        string
	catalog     *catalog.Catalog
	logger      *zap.Logger
	tracer      trace.Tracer
	metrics     *internaltelemetry.StoreMetrics
	serviceName string
}

// Open loads the named database from opts.Dir. Load failures are returned
// as is; no partially loaded store is ever handed out.
func Open(opts Options) (*Database, error) {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating data directory %s: %v", dberror.ErrIO, opts.Dir, err)
	}

	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.Noop()
	}
	metrics, err := internaltelemetry.NewStoreMetrics(tel.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create store metrics: %w", err)
	}

	log := logger.OrNop(opts.Logger).With(
		zap.String("database", opts.Name),
		zap.String("storeID", uuid.NewString()),
	)

	cat, err := catalog.Open(opts.Dir, opts.Name, log, metrics)
	if err != nil {
		return nil, err
	}

	return &Database{
		name:        opts.Name,
		catalog:     cat,
		logger:      log,
		tracer:      tel.Tracer,
		metrics:     metrics,
		serviceName: "database",
	}, nil
}

func (d *Database) Name() string { return d.name }

// CatalogFile is the path of the catalog file backing this database.
func (d *Database) CatalogFile() string { return d.catalog.Filename() }

// ListTypes returns every schema in catalog order.
func (d *Database) ListTypes(ctx context.Context) []schema.Schema {
	ctx, op := d.startOp(ctx, "ListTypes")
	defer op.end(ctx, nil)

	types := d.catalog.GetTypes()
	schemas := make([]schema.Schema, len(types))
	for i, t := range types {
		schemas[i] = t.Schema()
	}
	return schemas
}

// GetType finds a schema by case-insensitive name.
func (d *Database) GetType(ctx context.Context, typeName string) (schema.Schema, bool) {
	ctx, op := d.startOp(ctx, "GetType")
	defer op.end(ctx, nil)

	t, ok := d.catalog.GetType(typeName)
	if !ok {
		return schema.Schema{}, false
	}
	return t.Schema(), true
}

func (d *Database) CreateType(ctx context.Context, typeName string, fields []string, keyField string) (res catalog.CreateTypeResult, err error) {
	ctx, op := d.startOp(ctx, "CreateType")
	defer func() { op.end(ctx, err) }()

	return d.catalog.CreateType(ctx, typeName, fields, keyField)
}

func (d *Database) DeleteType(ctx context.Context, typeName string) (res catalog.DeleteTypeResult, err error) {
	ctx, op := d.startOp(ctx, "DeleteType")
	defer func() { op.end(ctx, err) }()

	return d.catalog.DeleteType(ctx, typeName)
}

func (d *Database) CreateRecord(ctx context.Context, typeName string, values map[string]string) (res recordtype.InsertResult, err error) {
	ctx, op := d.startOp(ctx, "CreateRecord")
	defer func() { op.end(ctx, err) }()

	t, err := d.lookup(typeName)
	if err != nil {
		return res, err
	}
	return t.CreateRecord(ctx, values)
}

func (d *Database) DeleteRecord(ctx context.Context, typeName, key string) (res recordtype.DeleteResult, err error) {
	ctx, op := d.startOp(ctx, "DeleteRecord")
	defer func() { op.end(ctx, err) }()

	t, err := d.lookup(typeName)
	if err != nil {
		return res, err
	}
	return t.DeleteRecord(ctx, key)
}

// GetRecord reports found=false when the type exists but holds no record
// with the key.
func (d *Database) GetRecord(ctx context.Context, typeName, key string) (r *record.Record, found bool, err error) {
	ctx, op := d.startOp(ctx, "GetRecord")
	defer func() { op.end(ctx, err) }()

	t, err := d.lookup(typeName)
	if err != nil {
		return nil, false, err
	}
	r, found = t.GetRecord(key)
	return r, found, nil
}

func (d *Database) GetRecordsByType(ctx context.Context, typeName string) (records []*record.Record, err error) {
	ctx, op := d.startOp(ctx, "GetRecordsByType")
	defer func() { op.end(ctx, err) }()

	t, err := d.lookup(typeName)
	if err != nil {
		return nil, err
	}
	return t.GetRecords(), nil
}

// Pages describes the in-memory pages of a type, empty ones included.
func (d *Database) Pages(ctx context.Context, typeName string) (pages []recordtype.PageInfo, err error) {
	ctx, op := d.startOp(ctx, "Pages")
	defer func() { op.end(ctx, err) }()

	t, err := d.lookup(typeName)
	if err != nil {
		return nil, err
	}
	return t.Pages(), nil
}

// Close releases the handle. Every mutation is already on disk.
func (d *Database) Close() error {
	d.logger.Info("Store closed")
	return nil
}

func (d *Database) lookup(typeName string) (*recordtype.Type, error) {
	t, ok := d.catalog.GetType(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", dberror.ErrTypeNotFound, typeName)
	}
	return t, nil
}
