package catalog

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	perrors "posort/internal/errors"
	"posort/internal/slogutil"
	"posort/internal/testutil"
)

func TestGolden(t *testing.T) {
	for _, name := range []string{"unsorted.po", "template.pot"} {
		t.Run(name, func(t *testing.T) {
			path := testutil.CopyFixture(t, filepath.Join("testdata", name))

			if _, err := NewSorter(nil, DefaultWriteOptions()).SortFile(path); err != nil {
				t.Fatalf("SortFile() error = %v", err)
			}

			testutil.CompareGolden(t, filepath.Join("testdata", name+".golden"), testutil.ReadFile(t, path))
		})
	}
}

func TestSortFile_Idempotent(t *testing.T) {
	path := testutil.CopyFixture(t, filepath.Join("testdata", "unsorted.po"))
	sorter := NewSorter(nil, DefaultWriteOptions())

	first, err := sorter.SortFile(path)
	if err != nil {
		t.Fatalf("first SortFile() error = %v", err)
	}
	once := testutil.ReadFile(t, path)

	second, err := sorter.SortFile(path)
	if err != nil {
		t.Fatalf("second SortFile() error = %v", err)
	}
	twice := testutil.ReadFile(t, path)

	if !bytes.Equal(once, twice) {
		t.Errorf("sorting twice changed the output:\n%s\nvs\n%s", once, twice)
	}
	if first.AlreadySorted {
		t.Error("first run should report an unsorted catalog")
	}
	if !second.AlreadySorted {
		t.Error("second run should report an already sorted catalog")
	}
	if first.Entries != 7 || first.Obsolete != 2 {
		t.Errorf("Result = %+v, want 7 entries / 2 obsolete", first)
	}
}

func TestSortFile_PreservesEntriesAndMetadata(t *testing.T) {
	src := filepath.Join("testdata", "unsorted.po")
	before, err := LoadCatalog(src)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	path := testutil.CopyFixture(t, src)
	if _, err := NewSorter(nil, DefaultWriteOptions()).SortFile(path); err != nil {
		t.Fatalf("SortFile() error = %v", err)
	}
	after, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog(sorted) error = %v", err)
	}

	if got, want := renderAll(after.Entries), renderAll(before.Entries); !equalStrings(got, want) {
		t.Errorf("entries changed:\n%q\nvs\n%q", got, want)
	}

	beforeFields, afterFields := before.Metadata.Fields(), after.Metadata.Fields()
	if len(beforeFields) != len(afterFields) {
		t.Fatalf("metadata fields = %d, want %d", len(afterFields), len(beforeFields))
	}
	for i := range beforeFields {
		if beforeFields[i] != afterFields[i] {
			t.Errorf("metadata[%d] = %v, want %v", i, afterFields[i], beforeFields[i])
		}
	}
	if !equalStrings(after.Header, before.Header) || !equalStrings(after.HeaderFlags, before.HeaderFlags) {
		t.Errorf("header = %q %q, want %q %q", after.Header, after.HeaderFlags, before.Header, before.HeaderFlags)
	}

	if !IsSorted(after.Live()) || !IsSorted(after.ObsoleteEntries()) {
		t.Error("entries are not in key order after sorting")
	}
}

// renderAll renders each entry on its own and returns the sorted set.
func renderAll(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = renderEntry(e, DefaultWrapWidth)
	}
	sort.Strings(out)
	return out
}

func TestSortFile_ContextOrdering(t *testing.T) {
	content := "msgid \"\"\nmsgstr \"\"\n\"Language: de\\n\"\n\n" +
		"msgctxt \"noun\"\nmsgid \"file\"\nmsgstr \"Datei\"\n\n" +
		"msgid \"file\"\nmsgstr \"Feile\"\n"
	path := testutil.WriteTemp(t, "ctx.po", []byte(content))

	if _, err := NewSorter(nil, DefaultWriteOptions()).SortFile(path); err != nil {
		t.Fatalf("SortFile() error = %v", err)
	}

	want := "msgid \"\"\nmsgstr \"\"\n\"Language: de\\n\"\n\n" +
		"msgid \"file\"\nmsgstr \"Feile\"\n\n" +
		"msgctxt \"noun\"\nmsgid \"file\"\nmsgstr \"Datei\"\n"
	if got := string(testutil.ReadFile(t, path)); got != want {
		t.Errorf("sorted =\n%s\nwant\n%s", got, want)
	}
}

func TestSortFile_NormalizesLineEndings(t *testing.T) {
	content := "msgid \"\"\r\nmsgstr \"\"\r\n\"Language: fr\\n\"\r\n\r\nmsgid \"b\"\r\nmsgstr \"\"\r\n\r\nmsgid \"a\"\r\nmsgstr \"\"\r\n"
	path := testutil.WriteTemp(t, "crlf.po", []byte(content))

	if _, err := NewSorter(nil, DefaultWriteOptions()).SortFile(path); err != nil {
		t.Fatalf("SortFile() error = %v", err)
	}

	got := string(testutil.ReadFile(t, path))
	want := "msgid \"\"\nmsgstr \"\"\n\"Language: fr\\n\"\n\nmsgid \"a\"\nmsgstr \"\"\n\nmsgid \"b\"\nmsgstr \"\"\n"
	if got != want {
		t.Errorf("sorted =\n%q\nwant\n%q", got, want)
	}
}

func TestSortFile_Latin1(t *testing.T) {
	header := "msgid \"\"\nmsgstr \"\"\n\"Content-Type: text/plain; charset=ISO-8859-1\\n\"\n\n"
	b := "msgid \"b\"\nmsgstr \"caf\xe9\"\n"
	a := "msgid \"a\"\nmsgstr \"na\xefve\"\n"
	path := testutil.WriteTemp(t, "latin1.po", []byte(header+b+"\n"+a))

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if cat.Charset != "ISO-8859-1" {
		t.Errorf("Charset = %q, want ISO-8859-1", cat.Charset)
	}
	if cat.Entries[0].Msgstr != "café" {
		t.Errorf("decoded Msgstr = %q, want %q", cat.Entries[0].Msgstr, "café")
	}

	if _, err := NewSorter(nil, DefaultWriteOptions()).SortFile(path); err != nil {
		t.Fatalf("SortFile() error = %v", err)
	}

	if got, want := testutil.ReadFile(t, path), []byte(header+a+"\n"+b); !bytes.Equal(got, want) {
		t.Errorf("sorted =\n%q\nwant\n%q", got, want)
	}
}

func TestSortFile_BOM(t *testing.T) {
	path := testutil.WriteTemp(t, "bom.po", []byte("\xEF\xBB\xBFmsgid \"\"\nmsgstr \"\"\n"))

	if _, err := NewSorter(nil, DefaultWriteOptions()).SortFile(path); err != nil {
		t.Fatalf("SortFile() error = %v", err)
	}
	if got := string(testutil.ReadFile(t, path)); got != "msgid \"\"\nmsgstr \"\"\n" {
		t.Errorf("sorted = %q", got)
	}
}

func TestSortFile_LogsInvalidLanguage(t *testing.T) {
	content := "msgid \"\"\nmsgstr \"\"\n\"Language: not a language\\n\"\n"
	path := testutil.WriteTemp(t, "lang.po", []byte(content))

	var logs bytes.Buffer
	sorter := NewSorter(slogutil.NewLogger(&logs, slog.LevelDebug), DefaultWriteOptions())
	if _, err := sorter.SortFile(path); err != nil {
		t.Fatalf("SortFile() error = %v", err)
	}

	out := logs.String()
	for _, want := range []string{"[warn] Catalog declares an invalid language", "[debug] Catalog loaded", "[info] Catalog sorted"} {
		if !strings.Contains(out, want) {
			t.Errorf("logs should contain %q, got:\n%s", want, out)
		}
	}
	if got := string(testutil.ReadFile(t, path)); got != content {
		t.Errorf("file changed:\n%q", got)
	}
}

func TestLoadCatalog_NotFound(t *testing.T) {
	dir := t.TempDir()

	for name, path := range map[string]string{
		"missing":   filepath.Join(dir, "missing.po"),
		"directory": dir,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCatalog(path)
			if !perrors.Is(err, perrors.NotFound) {
				t.Fatalf("LoadCatalog() error = %v, want NOT_FOUND", err)
			}
			var pe *perrors.PosortError
			if !errors.As(err, &pe) || pe.Message != NotFoundMessage || pe.Path != path {
				t.Errorf("error = %+v", pe)
			}
		})
	}
}

func TestLoadCatalog_ParseError(t *testing.T) {
	tests := []struct {
		name     string
		content  []byte
		wantLine int
	}{
		{"grammar", []byte("msgid \"a\"\nmsgstr \"\"\nnonsense\n"), 3},
		{"invalid utf-8", []byte("msgid \"a\"\nmsgstr \"\xff\"\n"), 0},
		{"unknown charset", []byte("msgid \"\"\nmsgstr \"\"\n\"Content-Type: text/plain; charset=X-NOPE\\n\"\n"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteTemp(t, "bad.po", tt.content)

			_, err := NewSorter(nil, DefaultWriteOptions()).SortFile(path)
			if !perrors.Is(err, perrors.ParseError) {
				t.Fatalf("SortFile() error = %v, want PARSE_ERROR", err)
			}
			pe, ok := AsParseError(err)
			if !ok {
				t.Fatalf("expected a *ParseError in %v", err)
			}
			if pe.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", pe.Line, tt.wantLine)
			}
			if got := testutil.ReadFile(t, path); !bytes.Equal(got, tt.content) {
				t.Error("file must not be modified when parsing fails")
			}
		})
	}
}

func TestSaveCatalog_EncodeError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.po")
	cat := &Catalog{Charset: "ISO-8859-1"}

	err := SaveCatalog(path, cat, []*Entry{{Msgid: "日本"}}, DefaultWriteOptions())
	if !perrors.Is(err, perrors.WriteError) {
		t.Fatalf("SaveCatalog() error = %v, want WRITE_ERROR", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("nothing should be written when encoding fails")
	}
}

func TestSaveCatalog_KeepsMode(t *testing.T) {
	path := testutil.WriteTemp(t, "mode.po", []byte("msgid \"\"\nmsgstr \"\"\n"))
	if err := os.Chmod(path, 0600); err != nil {
		t.Fatal(err)
	}

	if err := SaveCatalog(path, &Catalog{}, nil, DefaultWriteOptions()); err != nil {
		t.Fatalf("SaveCatalog() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}
