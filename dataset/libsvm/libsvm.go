// Package libsvm parses sparse rows in the LIBSVM text format
// ("label index:value index:value ...") into the index/value pairs an
// xgboost.FVec accepts.
package libsvm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/gbtree/pkg/errors"
)

// Record is one parsed row.
type Record struct {
	Label   float32
	Indices []uint32
	Values  []float32
}

// ParseLine parses one row. A "qid:N" token is accepted and dropped.
func ParseLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Record{}, errors.NewValueError("libsvm.ParseLine", "empty line")
	}

	label, err := strconv.ParseFloat(fields[0], 32)
	if err != nil {
		return Record{}, errors.NewValueError("libsvm.ParseLine",
			fmt.Sprintf("label %q is not a number", fields[0]))
	}

	rec := Record{
		Label:   float32(label),
		Indices: make([]uint32, 0, len(fields)-1),
		Values:  make([]float32, 0, len(fields)-1),
	}
	for _, tok := range fields[1:] {
		idxStr, valStr, ok := strings.Cut(tok, ":")
		if !ok {
			return Record{}, errors.NewValueError("libsvm.ParseLine",
				fmt.Sprintf("token %q is not index:value", tok))
		}
		if idxStr == "qid" {
			continue
		}
		idx, err := strconv.ParseUint(idxStr, 10, 32)
		if err != nil {
			return Record{}, errors.NewValueError("libsvm.ParseLine",
				fmt.Sprintf("index %q in token %q is not an unsigned integer", idxStr, tok))
		}
		val, err := strconv.ParseFloat(valStr, 32)
		if err != nil {
			return Record{}, errors.NewValueError("libsvm.ParseLine",
				fmt.Sprintf("value %q in token %q is not a number", valStr, tok))
		}
		rec.Indices = append(rec.Indices, uint32(idx))
		rec.Values = append(rec.Values, float32(val))
	}
	return rec, nil
}

// Parse reads every row from r. Blank lines and lines starting with '#' are
// skipped.
func Parse(r io.Reader) ([]Record, error) {
	var records []Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := ParseLine(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "libsvm: scan")
	}
	return records, nil
}

// ParseLeafIndices parses a space separated list of leaf ids, the format of
// per-tree leaf expectation files.
func ParseLeafIndices(line string) ([]uint32, error) {
	fields := strings.Fields(line)
	out := make([]uint32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, errors.NewValueError("libsvm.ParseLeafIndices",
				fmt.Sprintf("leaf id %q at position %d is not an unsigned integer", f, i))
		}
		out[i] = uint32(v)
	}
	return out, nil
}

// MaxIndex returns the largest feature index in rec, or -1 when rec has none.
func (rec Record) MaxIndex() int {
	max := -1
	for _, idx := range rec.Indices {
		if int(idx) > max {
			max = int(idx)
		}
	}
	return max
}
