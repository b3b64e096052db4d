package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sushant-115/pagestore/core/catalog"
	"github.com/sushant-115/pagestore/core/database"
	"github.com/sushant-115/pagestore/core/storage/recordtype"
)

// command is one store operation, shared by the one-shot subcommands and the
// interactive shell.
type command struct {
	name    string
	usage   string
	short   string
	minArgs int
	maxArgs int // -1 for unbounded
	run     func(r *runner, ctx context.Context, args []string) error
}

var commandTable = []command{
	{"create-type", "create-type <name> <field1,field2,...> <key>", "Create a type", 3, 3, (*runner).createType},
	{"delete-type", "delete-type <name>", "Delete a type and its data file", 1, 1, (*runner).deleteType},
	{"types", "types", "List all types", 0, 0, (*runner).listTypes},
	{"insert", "insert <type> <field=value|value>...", "Create a record", 1, -1, (*runner).insert},
	{"delete", "delete <type> <key>", "Delete a record", 2, 2, (*runner).deleteRecord},
	{"get", "get <type> <key>", "Find a record by key", 2, 2, (*runner).get},
	{"list", "list <type>", "List all records of a type", 1, 1, (*runner).list},
	{"pages", "pages <type>", "Show the in-memory pages of a type", 1, 1, (*runner).pages},
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commandTable {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func (c command) checkArgs(args []string) error {
	if len(args) < c.minArgs || (c.maxArgs >= 0 && len(args) > c.maxArgs) {
		return fmt.Errorf("usage: %s", c.usage)
	}
	return nil
}

func newStoreCommand(s *session, c command) *cobra.Command {
	return &cobra.Command{
		Use:   c.usage,
		Short: c.short,
		Args: func(_ *cobra.Command, args []string) error {
			return c.checkArgs(args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(s.runner(cmd), cmd.Context(), args)
		},
	}
}

// runner executes commands against an open database.
type runner struct {
	db     *database.Database
	out    io.Writer
	format string
}

func (r *runner) say(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(r.out, format+"\n", a...)
}

func (r *runner) createType(ctx context.Context, args []string) error {
	name := args[0]
	fields := splitFields(args[1])
	keyField := args[2]

	res, err := r.db.CreateType(ctx, name, fields, keyField)
	if err != nil {
		return err
	}
	if res == catalog.TypeExists {
		r.say("Type '%s' already exists", name)
		return nil
	}
	r.say("Created type '%s'", name)
	return nil
}

func (r *runner) deleteType(ctx context.Context, args []string) error {
	res, err := r.db.DeleteType(ctx, args[0])
	if err != nil {
		return err
	}
	if res == catalog.TypeMissing {
		r.say("No such type '%s'", args[0])
		return nil
	}
	r.say("Type '%s' has been deleted", args[0])
	return nil
}

func (r *runner) listTypes(ctx context.Context, _ []string) error {
	schemas := r.db.ListTypes(ctx)
	rows := make([]typeRow, 0, len(schemas))
	for _, s := range schemas {
		records, err := r.db.GetRecordsByType(ctx, s.Name())
		if err != nil {
			return err
		}
		rows = append(rows, typeRow{
			Name:    s.Name(),
			Fields:  s.Fields(),
			Key:     s.KeyField(),
			Records: len(records),
		})
	}
	return renderTypes(r.out, r.format, rows)
}

func (r *runner) insert(ctx context.Context, args []string) error {
	s, ok := r.db.GetType(ctx, args[0])
	if !ok {
		return fmt.Errorf("no such type '%s'", args[0])
	}
	values, err := parseValues(s.Fields(), args[1:])
	if err != nil {
		return err
	}

	res, err := r.db.CreateRecord(ctx, s.Name(), values)
	if err != nil {
		return err
	}
	key := values[s.KeyField()]
	if res == recordtype.AlreadyExists {
		r.say("Record with key '%s' already exists", key)
		return nil
	}
	r.say("A '%s' record has been created", s.Name())
	return nil
}

func (r *runner) deleteRecord(ctx context.Context, args []string) error {
	res, err := r.db.DeleteRecord(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if res == recordtype.NotFound {
		r.say("No '%s' record with key '%s'", args[0], args[1])
		return nil
	}
	r.say("A '%s' record with key '%s' has been deleted", args[0], args[1])
	return nil
}

func (r *runner) get(ctx context.Context, args []string) error {
	rec, found, err := r.db.GetRecord(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if !found {
		r.say("No '%s' record with key '%s'", args[0], args[1])
		return nil
	}
	return renderRecords(r.out, r.format, rec.Schema().Fields(), [][]string{rec.Values()})
}

func (r *runner) list(ctx context.Context, args []string) error {
	s, ok := r.db.GetType(ctx, args[0])
	if !ok {
		return fmt.Errorf("no such type '%s'", args[0])
	}
	records, err := r.db.GetRecordsByType(ctx, s.Name())
	if err != nil {
		return err
	}
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = rec.Values()
	}
	return renderRecords(r.out, r.format, s.Fields(), rows)
}

func (r *runner) pages(ctx context.Context, args []string) error {
	infos, err := r.db.Pages(ctx, args[0])
	if err != nil {
		return err
	}
	return renderPages(r.out, r.format, infos)
}

// splitFields parses "id, name ,make" into its trimmed parts.
func splitFields(raw string) []string {
	parts := strings.Split(raw, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		fields = append(fields, strings.TrimSpace(p))
	}
	return fields
}

// parseValues accepts field=value pairs and bare values. Bare values fill the
// schema fields in order, skipping fields already named explicitly.
func parseValues(fields []string, args []string) (map[string]string, error) {
	values := make(map[string]string, len(fields))
	var positional []string
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			positional = append(positional, arg)
			continue
		}
		if !contains(fields, name) {
			return nil, fmt.Errorf("unknown field '%s'", name)
		}
		values[name] = value
	}

	next := 0
	for _, value := range positional {
		for next < len(fields) {
			if _, named := values[fields[next]]; !named {
				break
			}
			next++
		}
		if next == len(fields) {
			return nil, fmt.Errorf("too many values: type has %d fields", len(fields))
		}
		values[fields[next]] = value
		next++
	}
	return values, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
