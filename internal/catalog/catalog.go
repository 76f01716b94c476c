package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"posort/internal/charset"
	perrors "posort/internal/errors"
	"posort/internal/slogutil"
)

// NotFoundMessage is reported when the catalog path is missing or not a regular file.
const NotFoundMessage = "Error: File not found."

// CheckFile verifies that path references an existing regular file.
func CheckFile(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, perrors.New(perrors.NotFound, NotFoundMessage, err).WithPath(path)
	}
	if !info.Mode().IsRegular() {
		return nil, perrors.New(perrors.NotFound, NotFoundMessage, fmt.Errorf("%s is not a regular file", path)).WithPath(path)
	}
	return info, nil
}

// LoadCatalog reads and parses the catalog at path, decoding it from the
// charset declared in its header.
func LoadCatalog(path string) (*Catalog, error) {
	if _, err := CheckFile(path); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, perrors.New(perrors.NotFound, NotFoundMessage, err).WithPath(path)
	}
	raw = charset.StripBOM(raw)

	name := charset.Detect(raw)
	text, err := charset.Decode(raw, name)
	if err != nil {
		return nil, parseFailure(path, &ParseError{Msg: err.Error()})
	}

	cat, err := Parse(text)
	if err != nil {
		return nil, parseFailure(path, err)
	}
	cat.Charset = name
	return cat, nil
}

func parseFailure(path string, err error) error {
	return perrors.New(perrors.ParseError, "cannot parse catalog", err).WithPath(path)
}

// SaveCatalog overwrites path with the catalog header followed by entries,
// encoded in the catalog's charset with "\n" line endings.
func SaveCatalog(path string, c *Catalog, entries []*Entry, opts WriteOptions) error {
	data, err := charset.Encode(c.Render(entries, opts), c.Charset)
	if err != nil {
		return perrors.New(perrors.WriteError, "cannot encode catalog", err).WithPath(path)
	}

	mode := fs.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	if err := os.WriteFile(path, data, mode); err != nil {
		return perrors.New(perrors.WriteError, "cannot write catalog", err).WithPath(path)
	}
	return nil
}

// Result summarizes one sort run.
type Result struct {
	Path          string
	Entries       int
	Obsolete      int
	AlreadySorted bool
	Duration      time.Duration
}

// Sorter runs the load, sort and save pipeline for a single file.
type Sorter struct {
	logger *slog.Logger
	opts   WriteOptions
}

// NewSorter creates a Sorter. A nil logger discards output.
func NewSorter(logger *slog.Logger, opts WriteOptions) *Sorter {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Sorter{logger: logger, opts: opts}
}

// SortFile sorts the catalog at path in place.
func (s *Sorter) SortFile(path string) (*Result, error) {
	start := time.Now()

	cat, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Catalog loaded",
		"path", path,
		"entries", len(cat.Entries),
		"metadata", cat.Metadata.Len(),
		"charset", displayCharset(cat.Charset),
	)
	if err := cat.CheckLanguage(); err != nil {
		s.logger.Warn("Catalog declares an invalid language", "path", path, "error", err.Error())
	}

	sorted := SortEntries(cat.Entries)
	result := &Result{
		Path:          path,
		Entries:       len(sorted),
		Obsolete:      len(cat.ObsoleteEntries()),
		AlreadySorted: sameOrder(cat.Entries, outputOrder(sorted)),
	}

	if err := SaveCatalog(path, cat, sorted, s.opts); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	s.logger.Info("Catalog sorted",
		"path", path,
		"entries", result.Entries,
		"obsolete", result.Obsolete,
		"alreadySorted", result.AlreadySorted,
		"duration", result.Duration,
	)
	return result, nil
}

func sameOrder(a, b []*Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AsParseError extracts the parser's error from err's chain.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func displayCharset(name string) string {
	if name == "" {
		return charset.UTF8
	}
	return name
}
