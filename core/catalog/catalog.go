// Package catalog keeps the list of record types of one database and the
// catalog file that persists their schemas, one line per type.
//
// Opening a catalog is the single point where the whole on-disk store is read
// into memory: every listed type loads its data file. Any failure aborts the
// open, so a catalog is either fully loaded or not returned at all.
package catalog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sushant-115/pagestore/core/storage/codec"
	"github.com/sushant-115/pagestore/core/storage/dberror"
	"github.com/sushant-115/pagestore/core/storage/recordtype"
	"github.com/sushant-115/pagestore/core/storage/schema"
	internaltelemetry "github.com/sushant-115/pagestore/internal/telemetry"
	"github.com/sushant-115/pagestore/pkg/logger"
	"go.uber.org/zap"
)

const catalogFileSuffix = ".catalog.txt"

// CreateTypeResult distinguishes a new type from an existing name.
// CreateTypeUnknown is only returned together with an error.
type CreateTypeResult int

const (
	CreateTypeUnknown CreateTypeResult = iota
	TypeCreated
	TypeExists
)

func (r CreateTypeResult) String() string {
	switch r {
	case TypeCreated:
		return "created"
	case TypeExists:
		return "already exists"
	default:
		return "unknown"
	}
}

// DeleteTypeResult distinguishes a removed type from an unknown name.
// DeleteTypeUnknown is only returned together with an error.
type DeleteTypeResult int

const (
	DeleteTypeUnknown DeleteTypeResult = iota
	TypeDeleted
	TypeMissing
)

func (r DeleteTypeResult) String() string {
	switch r {
	case TypeDeleted:
		return "deleted"
	case TypeMissing:
		return "missing"
	default:
		return "unknown"
	}
}

type Catalog struct {
	name    string
	dir     string
	types   []*recordtype.Type
	logger  *zap.Logger
	metrics *internaltelemetry.StoreMetrics
}

// Open reads (creating it first if needed) the catalog file of database name
// in dir and loads every type it lists.
func Open(dir, name string, log *zap.Logger, metrics *internaltelemetry.StoreMetrics) (*Catalog, error) {
	c := &Catalog{
		name:    name,
		dir:     dir,
		logger:  logger.OrNop(log).Named("catalog"),
		metrics: metrics,
	}
	if err := c.createFileIfNotExists(); err != nil {
		return nil, err
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	c.logger.Info("Catalog opened", zap.String("path", c.Filename()), zap.Int("types", len(c.types)))
	return c, nil
}

// Filename is the path of the catalog file.
func (c *Catalog) Filename() string {
	return filepath.Join(c.dir, c.name+catalogFileSuffix)
}

func (c *Catalog) Name() string { return c.name }

func (c *Catalog) createFileIfNotExists() error {
	file, err := os.OpenFile(c.Filename(), os.O_CREATE|os.O_RDONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: creating catalog file %s: %v", dberror.ErrIO, c.Filename(), err)
	}
	return file.Close()
}

func (c *Catalog) load() error {
	file, err := os.Open(c.Filename())
	if err != nil {
		return fmt.Errorf("%w: opening catalog file %s: %v", dberror.ErrIO, c.Filename(), err)
	}
	defer file.Close()

	var types []*recordtype.Type
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		s, err := codec.DecodeSchema(line)
		if err != nil {
			return fmt.Errorf("%s line %d: %w", c.Filename(), lineNo, err)
		}
		t := recordtype.New(c.dir, s, c.logger, c.metrics)
		if err := t.Load(); err != nil {
			return err
		}
		types = append(types, t)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: reading catalog file %s: %v", dberror.ErrIO, c.Filename(), err)
	}
	c.types = types
	return nil
}

// GetTypes returns the types in catalog order.
func (c *Catalog) GetTypes() []*recordtype.Type {
	return append([]*recordtype.Type(nil), c.types...)
}

// GetType finds a type by case-insensitive name.
func (c *Catalog) GetType(name string) (*recordtype.Type, bool) {
	for _, t := range c.types {
		if t.IsNamed(name) {
			return t, true
		}
	}
	return nil, false
}

// CreateType validates and registers a new type, rewrites the catalog file
// and creates the type's empty data file. An existing name is left alone. A
// failed catalog rewrite leaves the type unregistered.
func (c *Catalog) CreateType(ctx context.Context, name string, fields []string, keyField string) (CreateTypeResult, error) {
	if _, exists := c.GetType(name); exists {
		c.logger.Info("Type already exists", zap.String("type", name))
		return TypeExists, nil
	}

	s, err := schema.New(name, fields, keyField)
	if err != nil {
		return CreateTypeUnknown, err
	}

	t := recordtype.New(c.dir, s, c.logger, c.metrics)
	previous := c.types
	c.types = append(c.types[:len(c.types):len(c.types)], t)
	if err := c.writeCatalogFile(ctx); err != nil {
		c.types = previous
		return CreateTypeUnknown, err
	}
	if err := t.CreateFile(); err != nil {
		return CreateTypeUnknown, err
	}

	c.logger.Info("Created type", zap.String("type", name), zap.Strings("fields", fields), zap.String("key", keyField))
	c.metrics.Inc(ctx, internaltelemetry.TypesCreated, name)
	return TypeCreated, nil
}

// DeleteType unregisters a type, rewrites the catalog file and deletes the
// data file. An unknown name changes nothing. A failed catalog rewrite leaves
// the type registered.
func (c *Catalog) DeleteType(ctx context.Context, name string) (DeleteTypeResult, error) {
	for i, t := range c.types {
		if !t.IsNamed(name) {
			continue
		}

		previous := c.types
		c.types = append(c.types[:i:i], c.types[i+1:]...)
		if err := c.writeCatalogFile(ctx); err != nil {
			c.types = previous
			return DeleteTypeUnknown, err
		}
		if err := t.RemoveFile(); err != nil {
			return DeleteTypeUnknown, err
		}

		c.logger.Info("Type has been deleted", zap.String("type", t.Name()))
		c.metrics.Inc(ctx, internaltelemetry.TypesDeleted, t.Name())
		return TypeDeleted, nil
	}
	c.logger.Debug("No type to delete", zap.String("type", name))
	return TypeMissing, nil
}

// writeCatalogFile truncates the catalog file and writes every schema.
func (c *Catalog) writeCatalogFile(ctx context.Context) error {
	file, err := os.Create(c.Filename())
	if err != nil {
		return fmt.Errorf("%w: truncating catalog file %s: %v", dberror.ErrIO, c.Filename(), err)
	}

	w := bufio.NewWriter(file)
	for _, t := range c.types {
		if _, err := w.WriteString(codec.EncodeSchema(t.Schema()) + "\n"); err != nil {
			return errors.Join(
				fmt.Errorf("%w: writing catalog file %s: %v", dberror.ErrIO, c.Filename(), err),
				file.Close(),
			)
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Join(
			fmt.Errorf("%w: flushing catalog file %s: %v", dberror.ErrIO, c.Filename(), err),
			file.Close(),
		)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: closing catalog file %s: %v", dberror.ErrIO, c.Filename(), err)
	}
	c.metrics.Inc(ctx, internaltelemetry.FileRewrites, c.name+catalogFileSuffix)
	return nil
}
