package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	shellPrompt      = "pagestore> "
	shellHistoryFile = ".pagestore_history"
)

// shell runs commands typed one per line. Errors are reported and the
// session goes on.
type shell struct {
	runner *runner
	errOut io.Writer
	log    *zap.Logger
}

func newShellCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sh := &shell{runner: s.runner(cmd), errOut: cmd.ErrOrStderr(), log: s.log}
			return sh.run(cmd.Context(), filepath.Join(s.cfg.DataDir, shellHistoryFile))
		},
	}
}

func (sh *shell) run(ctx context.Context, historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    sh.completer(ctx),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(sh.runner.out, "pagestore shell (database: %s)\n", sh.runner.db.Name())
	_, _ = fmt.Fprintln(sh.runner.out, "Type 'help' for commands, 'exit' or 'quit' to leave.")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit := sh.execute(ctx, line); quit {
			return nil
		}
	}
}

// execute runs one input line and reports whether the session should end.
func (sh *shell) execute(ctx context.Context, line string) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}

	name := strings.ToLower(args[0])
	switch name {
	case "exit", "quit":
		_, _ = fmt.Fprintln(sh.runner.out, "Bye.")
		return true
	case "help":
		printShellHelp(sh.runner.out)
		return false
	}

	c, ok := lookupCommand(name)
	if !ok {
		_, _ = fmt.Fprintf(sh.errOut, "Error: unknown command %q. Type 'help' for a list of commands.\n", args[0])
		return false
	}
	if err := c.checkArgs(args[1:]); err != nil {
		_, _ = fmt.Fprintf(sh.errOut, "Error: %v\n", err)
		return false
	}
	if err := c.run(sh.runner, ctx, args[1:]); err != nil {
		if sh.log != nil {
			sh.log.Debug("Shell command failed", zap.String("command", name), zap.Error(err))
		}
		_, _ = fmt.Fprintf(sh.errOut, "Error: %v\n", err)
	}
	return false
}

func printShellHelp(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Commands:")
	for _, c := range commandTable {
		_, _ = fmt.Fprintf(w, "  %-46s %s\n", c.usage, c.short)
	}
	_, _ = fmt.Fprintf(w, "  %-46s %s\n", "help", "Show this help message")
	_, _ = fmt.Fprintf(w, "  %-46s %s\n", "exit / quit", "Leave the shell")
}

// completer offers command names, then the current type names.
func (sh *shell) completer(ctx context.Context) *readline.PrefixCompleter {
	typeNames := readline.PcItemDynamic(func(string) []string {
		schemas := sh.runner.db.ListTypes(ctx)
		names := make([]string, len(schemas))
		for i, s := range schemas {
			names[i] = s.Name()
		}
		return names
	})

	items := make([]readline.PrefixCompleterInterface, 0, len(commandTable)+3)
	for _, c := range commandTable {
		if c.name == "create-type" || c.name == "types" {
			items = append(items, readline.PcItem(c.name))
			continue
		}
		items = append(items, readline.PcItem(c.name, typeNames))
	}
	items = append(items, readline.PcItem("help"), readline.PcItem("exit"), readline.PcItem("quit"))
	return readline.NewPrefixCompleter(items...)
}
