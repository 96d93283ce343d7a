package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/mesh-intelligence/facets/internal/engine"
)

// ReadJSONL reads one JSON object per line into a table named name. When
// columns is empty the columns are the sorted keys of the first object.
// Numbers keep their literal text, nested arrays and objects are stored as
// their JSON encoding, and null or missing keys become empty text. Blank
// and malformed lines are skipped.
func ReadJSONL(name string, r io.Reader, columns []string) (*engine.Table, error) {
	objs, err := readObjects(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(columns) == 0 {
		if len(objs) == 0 {
			return nil, fmt.Errorf("%s: %w", name, ErrNoHeader)
		}
		for k := range objs[0] {
			columns = append(columns, k)
		}
		sort.Strings(columns)
	}

	rows := make([][]string, 0, len(objs))
	for _, obj := range objs {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = fieldText(obj[col])
		}
		rows = append(rows, row)
	}
	return buildTable(name, columns, rows)
}

// readObjects decodes every well-formed object line.
func readObjects(r io.Reader) ([]map[string]any, error) {
	var objs []map[string]any
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil || obj == nil {
			// valid JSON that is not an object
			continue
		}
		objs = append(objs, obj)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return objs, nil
}

func fieldText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
