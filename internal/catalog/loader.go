package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// ErrIncludeCycle is returned when catalog includes form a loop.
var ErrIncludeCycle = errors.New("include cycle")

// Source is a root catalog file together with everything it includes.
type Source struct {
	// Root is the file Load was called with.
	Root *File
	// Files lists every loaded file, includes before their includer.
	Files []*File
}

// LoadFile loads and parses a single catalog file without resolving includes.
func LoadFile(p string) (*File, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", p, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}

	f.Path = p

	return f, nil
}

// Parse parses YAML data into a File. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(&f)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	applyDefaults(&f)

	return &f, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = "1"
	}
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// Load reads name from fsys and resolves its includes recursively. Include
// paths are relative to the including file; each file is loaded once.
func Load(fsys fs.FS, name string) (*Source, error) {
	l := &loader{
		fsys:    fsys,
		loaded:  make(map[string]*File),
		loading: make(map[string]bool),
	}

	root, err := l.load(path.Clean(name))
	if err != nil {
		return nil, err
	}

	return &Source{Root: root, Files: l.order}, nil
}

type loader struct {
	fsys    fs.FS
	loaded  map[string]*File
	loading map[string]bool
	order   []*File
}

func (l *loader) load(name string) (*File, error) {
	if f, ok := l.loaded[name]; ok {
		return f, nil
	}

	if l.loading[name] {
		return nil, fmt.Errorf("%w: %s", ErrIncludeCycle, name)
	}

	l.loading[name] = true
	defer delete(l.loading, name)

	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", name, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	f.Path = name

	for _, inc := range f.Include {
		if _, err := l.load(path.Join(path.Dir(name), inc)); err != nil {
			return nil, fmt.Errorf("%s: include %s: %w", name, inc, err)
		}
	}

	l.loaded[name] = f
	l.order = append(l.order, f)

	return f, nil
}

// Single wraps one parsed file as a Source without includes.
func Single(f *File) *Source {
	return &Source{Root: f, Files: []*File{f}}
}

// Dispatch returns the effective dispatch list: the root's own list, or the
// list of the closest include declaring one.
func (s *Source) Dispatch() []string {
	if s == nil || s.Root == nil {
		return nil
	}

	if len(s.Root.Dispatch) > 0 {
		return s.Root.Dispatch
	}

	for i := len(s.Files) - 1; i >= 0; i-- {
		if len(s.Files[i].Dispatch) > 0 {
			return s.Files[i].Dispatch
		}
	}

	return nil
}

// Name returns the root's dialect name, falling back to its path.
func (s *Source) Name() string {
	if s.Root.Name != "" {
		return s.Root.Name
	}

	return s.Root.Path
}
