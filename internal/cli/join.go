package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/facets/internal/ingest"
	"github.com/mesh-intelligence/facets/internal/join"
	"github.com/mesh-intelligence/facets/internal/paths"
)

func newJoinCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "join LEFT RIGHT",
		Short: "Join two headered files on their one shared column",
		Long: "Read LEFT and RIGHT, pair every row of LEFT with every row of RIGHT that has\n" +
			"the same value in the column both headers name, and write the result as\n" +
			"delimited text. Either file may be - for standard input.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "-" && args[1] == "-" {
				return userError(errors.New("only one side can be read from standard input"))
			}
			left, err := a.readJoinTable(cmd, args[0])
			if err != nil {
				return err
			}
			right, err := a.readJoinTable(cmd, args[1])
			if err != nil {
				return err
			}

			joined, err := join.Tables(left, right)
			if err != nil {
				return userError(err)
			}
			a.log.Debug().Int("rows", len(joined.Rows)).Msg("joined")

			w := out(cmd)
			if a.flags.jsonMode {
				return writeJSON(w, struct {
					Header []string   `json:"header"`
					Rows   [][]string `json:"rows"`
				}{joined.Header, nonNilRows(joined.Rows)})
			}
			return writeDelimited(w, joined, a.cfg.DelimiterRune())
		},
	}
}

// readJoinTable reads one side of a join. TSV files are read tab-delimited
// whatever the configured delimiter.
func (a *app) readJoinTable(cmd *cobra.Command, arg string) (join.Table, error) {
	opts := ingest.OptionsFromConfig(a.cfg)
	if f, err := ingest.FormatFor(arg); err == nil && f == ingest.FormatTSV {
		opts.Delimiter = '\t'
	}

	var r io.Reader = cmd.InOrStdin()
	if arg != "-" {
		f, err := os.Open(paths.ResolveInput(a.dataDir, arg))
		if err != nil {
			return join.Table{}, loadError(fmt.Errorf("opening %s: %w", arg, err))
		}
		defer f.Close()
		r = f
	}

	header, rows, err := ingest.ReadRecords(arg, r, opts)
	if err != nil {
		return join.Table{}, userError(err)
	}
	return join.Table{Header: header, Rows: rows}, nil
}

// writeDelimited writes the header and rows of t.
func writeDelimited(w io.Writer, t join.Table, delim rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim
	if err := cw.Write(t.Header); err != nil {
		return sysError(err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return sysError(err)
	}
	return nil
}

func nonNilRows(rows [][]string) [][]string {
	if rows == nil {
		return [][]string{}
	}
	return rows
}
