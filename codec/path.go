package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"astm-mapper/utils"
)

// ErrInvalidPath is returned by ParsePath for malformed field paths.
var ErrInvalidPath = errors.New("invalid path")

// PathSegment is one dotted element of a field path.
type PathSegment struct {
	Name string
	// Index selects an item of a repeated field; -1 when not indexed.
	Index int
}

// Path addresses a value inside a record instance.
type Path struct {
	Segments []PathSegment
}

// ParsePath parses a field path.
// Supports: "seq", "sample_id.sample_id", "test[1]", "test[1].assay_code".
func ParsePath(path string) (Path, error) {
	if path == "" {
		return Path{}, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	var segments []PathSegment

	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return Path{}, fmt.Errorf("%w %q: empty segment", ErrInvalidPath, path)
		}

		seg := PathSegment{Name: part, Index: -1}

		// Check for index notation
		if open := strings.IndexByte(part, '['); open >= 0 {
			if !strings.HasSuffix(part, "]") {
				return Path{}, fmt.Errorf("%w %q: unterminated index in %q", ErrInvalidPath, path, part)
			}

			digits := part[open+1 : len(part)-1]
			if !utils.IsDigits(digits) {
				return Path{}, fmt.Errorf("%w %q: bad index in %q", ErrInvalidPath, path, part)
			}

			n, err := strconv.Atoi(digits)
			if err != nil {
				return Path{}, fmt.Errorf("%w %q: %w", ErrInvalidPath, path, err)
			}

			seg.Name, seg.Index = part[:open], n
		}

		if seg.Name == "" {
			return Path{}, fmt.Errorf("%w %q: index without field name", ErrInvalidPath, path)
		}

		segments = append(segments, seg)
	}

	return Path{Segments: segments}, nil
}

func (p Path) String() string {
	var sb strings.Builder

	for i, seg := range p.Segments {
		if i > 0 {
			sb.WriteByte('.')
		}

		sb.WriteString(seg.Name)

		if seg.Index >= 0 {
			fmt.Fprintf(&sb, "[%d]", seg.Index)
		}
	}

	return sb.String()
}

// Lookup resolves p against f. It reports false when any step is absent.
func (f Fields) Lookup(p Path) (any, bool) {
	var cur any = f

	for _, seg := range p.Segments {
		group, ok := cur.(Fields)
		if !ok {
			return nil, false
		}

		cur, ok = group[seg.Name]
		if !ok {
			return nil, false
		}

		if seg.Index < 0 {
			continue
		}

		items, ok := cur.([]Fields)
		if !ok || seg.Index >= len(items) {
			return nil, false
		}

		cur = items[seg.Index]
	}

	return cur, true
}

// Get resolves a textual field path against the record fields.
func (r *Record) Get(path string) (any, bool, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, false, err
	}

	v, ok := r.Fields.Lookup(p)

	return v, ok, nil
}
