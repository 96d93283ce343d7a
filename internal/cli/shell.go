package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/facets/internal/engine"
	"github.com/mesh-intelligence/facets/internal/expr"
	"github.com/mesh-intelligence/facets/internal/metrics"
	"github.com/mesh-intelligence/facets/pkg/types"
)

const shellPrompt = "facets> "

const shellHelp = `commands:
  select COLUMN=V1,V2   add values to the selection
  deselect COLUMN=V1    remove values from the selection
                        (numbers match by value and written scale:
                        007 selects 7, 1.50 does not select 1.5)
  watch EXPR            print EXPR after every selection change
  unwatch N             stop watch N
  eval EXPR             evaluate EXPR once
  count                 rows matching the selection
  sum|min|max COLUMN    aggregate a column over the matching rows
  selection             print the selection
  stats                 print session metrics
  help                  print this help
  quit                  leave the shell
`

var (
	errUnknownCommand = errors.New("unknown command, try help")
	errMissingArg     = errors.New("missing argument")
	errNoWatch        = errors.New("no such watch")
)

func newShellCmd(a *app) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "shell --in FILE",
		Short: "Refine a selection over one table interactively",
		Long: "Load one input and read commands from standard input, one per line.\n" +
			"Type help inside the shell for the list of commands.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in == "" {
				return userError(errNoInput)
			}
			tables, err := a.loadTables(cmd.Context(), []string{in})
			if err != nil {
				return err
			}
			s := newSession(tables[0], cmd.InOrStdin(), out(cmd), a.log)
			return s.run()
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input file, optionally name=path")
	return cmd
}

// watch is an expression printed after every selection change.
type watch struct {
	id   int
	expr expr.Expr
}

// session is one interactive shell over a DataContext.
type session struct {
	id      uuid.UUID
	ctx     *engine.DataContext
	rec     *metrics.Recorder
	in      io.Reader
	out     io.Writer
	log     zerolog.Logger
	prompt  bool
	watches []watch
	nextID  int
}

func newSession(t *engine.Table, in io.Reader, out io.Writer, log zerolog.Logger) *session {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	s := &session{
		id:     id,
		ctx:    t.NewContext(),
		rec:    metrics.New(),
		in:     in,
		out:    out,
		log:    log.With().Str("session", id.String()).Str("table", t.Name()).Logger(),
		prompt: isTerminal(in),
		nextID: 1,
	}
	s.rec.RowsLoaded(t.Len())
	s.rec.Track(s.ctx)
	s.ctx.Observe(engine.ObserverFunc(s.printWatches))
	return s
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// run reads commands until quit or end of input. Command errors are
// printed and the loop goes on.
func (s *session) run() error {
	s.log.Info().Int("rows", s.ctx.Count()).Msg("shell started")
	sc := bufio.NewScanner(s.in)
	for {
		if s.prompt {
			fmt.Fprint(s.out, shellPrompt)
		}
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		quit, err := s.exec(line)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			s.log.Debug().Err(err).Str("line", line).Msg("command failed")
		}
		if quit {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return sysError(fmt.Errorf("reading commands: %w", err))
	}
	s.log.Info().Int("rows", s.ctx.Count()).Msg("shell finished")
	return nil
}

// exec runs one command line. It reports whether the shell should stop.
func (s *session) exec(line string) (bool, error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprint(s.out, shellHelp)
	case "select", "deselect":
		if arg == "" {
			return false, fmt.Errorf("%s: %w", name, errMissingArg)
		}
		c, err := types.ParseConstraint(arg)
		if err != nil {
			return false, err
		}
		if name == "select" {
			s.ctx.Select(c)
		} else {
			s.ctx.Deselect(c)
		}
		fmt.Fprintf(s.out, "count: %d\n", s.ctx.Count())
	case "watch":
		return false, s.addWatch(arg)
	case "unwatch":
		return false, s.removeWatch(arg)
	case "eval":
		e, err := expr.Parse(arg)
		if err != nil {
			return false, err
		}
		r, err := expr.Eval(e, s.ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "%s = %s\n", e, r)
	case "count":
		fmt.Fprintf(s.out, "count: %d\n", s.ctx.Count())
	case "sum", "min", "max":
		return false, s.aggregate(name, arg)
	case "selection":
		sel := s.ctx.Selection()
		if len(sel) == 0 {
			fmt.Fprintln(s.out, "(no selection)")
		}
		for _, c := range sel {
			fmt.Fprintln(s.out, c)
		}
	case "stats":
		lines, err := s.rec.Snapshot()
		if err != nil {
			return false, err
		}
		for _, l := range lines {
			fmt.Fprintln(s.out, l)
		}
	default:
		return false, fmt.Errorf("%q: %w", name, errUnknownCommand)
	}
	return false, nil
}

func (s *session) aggregate(op, column string) error {
	if column == "" {
		return fmt.Errorf("%s: %w", op, errMissingArg)
	}
	if _, ok := s.ctx.ColumnIndex(column); !ok {
		return fmt.Errorf("%w: %q", expr.ErrUnknownColumn, column)
	}
	fn := map[string]func(string) (types.Value, bool){
		"sum": s.ctx.Sum,
		"min": s.ctx.Min,
		"max": s.ctx.Max,
	}[op]
	v, ok := fn(column)
	if !ok && op == "sum" {
		return fmt.Errorf("%w: sum(%s)", types.ErrOverflow, column)
	}
	if !ok {
		fmt.Fprintf(s.out, "%s(%s) = none\n", op, column)
		return nil
	}
	fmt.Fprintf(s.out, "%s(%s) = %s\n", op, column, v)
	return nil
}

func (s *session) addWatch(arg string) error {
	if arg == "" {
		return fmt.Errorf("watch: %w", errMissingArg)
	}
	e, err := expr.Parse(arg)
	if err != nil {
		return err
	}
	// A watch must evaluate against the current rows to be accepted.
	r, err := expr.Eval(e, s.ctx)
	if err != nil {
		return err
	}
	w := watch{id: s.nextID, expr: e}
	s.nextID++
	s.watches = append(s.watches, w)
	fmt.Fprintf(s.out, "watch %d: %s = %s\n", w.id, e, r)
	return nil
}

func (s *session) removeWatch(arg string) error {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("unwatch %q: %w", arg, errNoWatch)
	}
	for i, w := range s.watches {
		if w.id == id {
			s.watches = append(s.watches[:i], s.watches[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("unwatch %d: %w", id, errNoWatch)
}

// printWatches is the session's observer on its context.
func (s *session) printWatches(ctx *engine.DataContext) {
	for _, w := range s.watches {
		r, err := expr.Eval(w.expr, ctx)
		if err != nil {
			fmt.Fprintf(s.out, "[%d] %s: %v\n", w.id, w.expr, err)
			continue
		}
		fmt.Fprintf(s.out, "[%d] %s = %s\n", w.id, w.expr, r)
	}
}
