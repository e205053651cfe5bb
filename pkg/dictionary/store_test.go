package dictionary

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testStore() *Store {
	s := NewStore()
	s.Add("ㄊㄞ2", "台", 80)
	s.Add("ㄊㄞ2", "抬", 40)
	s.Add("ㄊㄞ2", "臺", 10)
	s.Add("ㄊㄞ4", "太", 90)
	s.Add("ㄊㄞ2 ㄨㄢ1", "台灣", 95)
	s.Add("ㄊㄞ2 ㄅㄟ3", "台北", 85)
	return s
}

func texts(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out
}

func TestLookupExact(t *testing.T) {
	s := testStore()
	got := texts(s.Lookup("ㄊㄞ2"))
	want := []string{"台", "抬", "臺"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Lookup(ㄊㄞ2) = %v, want %v", got, want)
	}
	if got := s.Lookup("ㄇㄚ1"); got != nil {
		t.Errorf("Lookup(miss) = %v, want nil", got)
	}
}

func TestLookupToneless(t *testing.T) {
	s := testStore()
	// Tone-insensitive: ㄊㄞ matches both ㄊㄞ2 and ㄊㄞ4 entries.
	got := texts(s.LookupToneless("ㄊㄞ3"))
	want := []string{"太", "台", "抬", "臺"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LookupToneless(ㄊㄞ3) = %v, want %v", got, want)
	}
}

func TestLookupPrefix(t *testing.T) {
	s := testStore()

	// Syllable-boundary prefix picks up phrase continuations only.
	got := texts(s.LookupPrefix("ㄊㄞ2 "))
	want := []string{"台灣", "台北"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LookupPrefix(ㄊㄞ2 ) = %v, want %v", got, want)
	}

	// A pre-tone partial narrows the match.
	got = texts(s.LookupPrefix("ㄊㄞ2 ㄨ"))
	want = []string{"台灣"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LookupPrefix(ㄊㄞ2 ㄨ) = %v, want %v", got, want)
	}
}

func TestLookupPrefixToneless(t *testing.T) {
	s := testStore()
	got := texts(s.LookupPrefixToneless("ㄊㄞ ㄨ"))
	want := []string{"台灣"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LookupPrefixToneless(ㄊㄞ ㄨ) = %v, want %v", got, want)
	}

	// Toned queries are stripped before the toneless index is consulted.
	got = texts(s.LookupPrefixToneless("ㄊㄞ2 ㄨ"))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LookupPrefixToneless(ㄊㄞ2 ㄨ) = %v, want %v", got, want)
	}
}

func TestEntryKind(t *testing.T) {
	s := testStore()
	if got := s.Lookup("ㄊㄞ2")[0].Kind; got != KindCharacter {
		t.Errorf("台 Kind = %v, want KindCharacter", got)
	}
	if got := s.Lookup("ㄊㄞ2 ㄨㄢ1")[0].Kind; got != KindPhrase {
		t.Errorf("台灣 Kind = %v, want KindPhrase", got)
	}
}

func writeWordList(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.tsv")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildAndLoadRoundTrip(t *testing.T) {
	src := writeWordList(t, "# comment line\n"+
		"台\tㄊㄞ2\t80\n"+
		"抬\tㄊㄞ2\t40\n"+
		"台灣\tㄊㄞ2 ㄨㄢ1\t95\n"+
		"\n"+
		"默\tㄇㄛ4\n") // no frequency column, gets the default
	dbPath := filepath.Join(t.TempDir(), "phrases.db")

	count, err := Build(src, dbPath)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if count != 4 {
		t.Errorf("Build count = %d, want 4", count)
	}

	s, err := Load(dbPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Len() != 4 {
		t.Errorf("Len() = %d, want 4", s.Len())
	}
	if got := texts(s.Lookup("ㄊㄞ2")); !reflect.DeepEqual(got, []string{"台", "抬"}) {
		t.Errorf("Lookup(ㄊㄞ2) = %v", got)
	}
	if got := s.Lookup("ㄇㄛ4"); len(got) != 1 || got[0].Freq != defaultFreq {
		t.Errorf("default frequency entry = %+v", got)
	}
}

func TestBuildSkipsMalformedLines(t *testing.T) {
	src := writeWordList(t, "台\tㄊㄞ2\t80\nno-tab-here\n好\tㄏㄠ3\tNaN\n")
	dbPath := filepath.Join(t.TempDir(), "phrases.db")

	count, err := Build(src, dbPath)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Malformed line skipped, bad frequency falls back to the default.
	if count != 2 {
		t.Errorf("Build count = %d, want 2", count)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Error("Load of missing artifact succeeded, want error")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.db")
	if err := os.WriteFile(path, []byte("this is not a database"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load of corrupt artifact succeeded, want error")
	}
}

func TestLoadEmptyDictionary(t *testing.T) {
	src := writeWordList(t, "# nothing but comments\n")
	dbPath := filepath.Join(t.TempDir(), "phrases.db")
	if _, err := Build(src, dbPath); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := Load(dbPath); err == nil {
		t.Error("Load of empty artifact succeeded, want error")
	}
}
