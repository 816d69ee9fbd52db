package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/logging"
	"github.com/dd0wney/cluso-netmap/pkg/validation"
)

// MaxLevel is the strongest link level a matrix cell may carry.
const MaxLevel = 3

func normalizeMatrix(m *MatrixFile) ([]string, [][]int, error) {
	if err := validation.Struct(m); err != nil {
		return nil, nil, err
	}

	n := len(m.Columns)
	if len(m.Index) > 0 && len(m.Index) != n {
		return nil, nil, fmt.Errorf("%w: %d index labels for %d columns", ErrShape, len(m.Index), n)
	}
	if len(m.Data) != n {
		return nil, nil, fmt.Errorf("%w: %d rows for %d columns", ErrShape, len(m.Data), n)
	}

	weights := make([][]int, n)
	for i, row := range m.Data {
		if len(row) != n {
			return nil, nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrShape, i, len(row), n)
		}
		weights[i] = make([]int, n)
		for j, cell := range row {
			w, err := level(cell)
			if err != nil {
				return nil, nil, fmt.Errorf("cell (%d,%d): %w", i, j, err)
			}
			weights[i][j] = w
		}
	}

	return append([]string(nil), m.Columns...), weights, nil
}

// level maps a cell to 0..MaxLevel. Null and zero both mean no link.
func level(cell *float64) (int, error) {
	if cell == nil {
		return 0, nil
	}
	v := *cell
	if v != math.Trunc(v) || v < 0 || v > MaxLevel {
		return 0, fmt.Errorf("%w: %v", ErrInvalidLevel, v)
	}
	return int(v), nil
}

func normalizeLinkTypes(lt *LinkTypeFile, n int) ([][]string, error) {
	if err := validation.Struct(lt); err != nil {
		return nil, err
	}
	if len(lt.Data) != n {
		return nil, fmt.Errorf("%w: %d rows, want %d", ErrShape, len(lt.Data), n)
	}

	out := make([][]string, n)
	for i, row := range lt.Data {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrShape, i, len(row), n)
		}
		out[i] = make([]string, n)
		for j, cell := range row {
			if cell != nil {
				out[i][j] = *cell
			}
		}
	}
	return out, nil
}

func (l *Loader) normalizeTable(name string, t *TableFile, width int) (*AttributeTable, error) {
	if err := validation.Struct(t); err != nil {
		return nil, err
	}
	if len(t.Index) != len(t.Data) {
		return nil, fmt.Errorf("%w: %d index labels for %d rows", ErrShape, len(t.Index), len(t.Data))
	}
	if len(t.Columns) > 0 && len(t.Columns) != width {
		return nil, fmt.Errorf("%w: %d columns, want %d", ErrShape, len(t.Columns), width)
	}

	rows := make(map[string][]string, len(t.Index))
	for i, label := range t.Index {
		raw := t.Data[i]
		if len(raw) != width {
			return nil, fmt.Errorf("%w: row %q has %d cells, want %d", ErrShape, label, len(raw), width)
		}
		row := make([]string, width)
		for j, cell := range raw {
			if cell != nil {
				row[j] = *cell
			}
		}
		rows[label] = row
	}

	l.logger.Debug("attribute table indexed", logging.String("table", name), logging.Count(len(rows)))
	return NewAttributeTable(name, t.Columns, rows), nil
}

func (l *Loader) normalizePositions(raw map[string]geom.Point, n int) map[int]geom.Point {
	out := make(map[int]geom.Point, len(raw))
	for key, p := range raw {
		id, err := strconv.Atoi(key)
		if err != nil || id < 0 || id >= n {
			l.logger.Warn("ignoring saved position", logging.String("key", key))
			continue
		}
		out[id] = p
	}
	return out
}

// WritePositions writes positions in the saved-layout format: a JSON object
// keyed by decimal node id, in ascending id order.
func WritePositions(w io.Writer, positions map[int]geom.Point) error {
	ids := make([]int, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	if _, err := io.WriteString(w, "{\n"); err != nil {
		return err
	}
	for i, id := range ids {
		p, err := json.Marshal(positions[id])
		if err != nil {
			return fmt.Errorf("encode position %d: %w", id, err)
		}
		sep := ","
		if i == len(ids)-1 {
			sep = ""
		}
		if _, err := fmt.Fprintf(w, "  %q: %s%s\n", strconv.Itoa(id), p, sep); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}\n")
	return err
}
