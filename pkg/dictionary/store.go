/*
Package dictionary implements the static phrase dictionary.

The dictionary is a versioned SQLite artifact opened read-only (it may
live on read-only media) and loaded fully into memory at startup: an
entry table in insertion order, an exact-match index, and two Patricia
tries over the syllable keys, one toned and one toneless. All queries
run against the in-memory structures; the artifact is never touched
again after Load returns.

Keys are space-joined syllable keys as produced by pkg/zhuyin, e.g.
"ㄊㄞ2 ㄨㄢ1" for 台灣.
*/
package dictionary

import (
	"database/sql"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
	_ "modernc.org/sqlite"

	"github.com/HiDomesticCat/zhuyinserve/pkg/zhuyin"
)

// SchemaVersion is the artifact format this loader understands.
const SchemaVersion = 1

// Kind distinguishes single characters from multi-character phrases.
type Kind int

const (
	KindCharacter Kind = iota
	KindPhrase
)

// Entry is one dictionary row: a character or phrase with its toned
// syllable-sequence key and static frequency weight.
type Entry struct {
	Text string
	Key  string
	Freq int
	Kind Kind

	// ord preserves artifact insertion order for stable tie-breaks.
	ord int
}

// Store is the loaded dictionary. Immutable after Load.
type Store struct {
	entries  []Entry
	exact    map[string][]int
	toned    *patricia.Trie
	toneless *patricia.Trie
}

// NewStore returns an empty store, populated via Add. Load is the
// normal path; NewStore exists for tests and the artifact builder.
func NewStore() *Store {
	return &Store{
		exact:    make(map[string][]int),
		toned:    patricia.NewTrie(),
		toneless: patricia.NewTrie(),
	}
}

// Add indexes one entry. Insertion order is significant: it is the
// final tie-break for equally ranked candidates.
func (s *Store) Add(key, text string, freq int) {
	kind := KindCharacter
	if len([]rune(text)) > 1 {
		kind = KindPhrase
	}
	idx := len(s.entries)
	s.entries = append(s.entries, Entry{Text: text, Key: key, Freq: freq, Kind: kind, ord: idx})
	s.exact[key] = append(s.exact[key], idx)
	trieAppend(s.toned, key, idx)
	trieAppend(s.toneless, zhuyin.StripTones(key), idx)
}

func trieAppend(t *patricia.Trie, key string, idx int) {
	prefix := patricia.Prefix(key)
	if item := t.Get(prefix); item != nil {
		t.Set(prefix, append(item.([]int), idx))
		return
	}
	t.Insert(prefix, []int{idx})
}

// Len reports the number of loaded entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Lookup returns entries whose toned key matches exactly, ordered by
// descending frequency, ties in insertion order.
func (s *Store) Lookup(key string) []Entry {
	return s.collect(s.exact[key])
}

// LookupToneless returns entries matching the toneless form of the
// query key, tone-insensitively.
func (s *Store) LookupToneless(key string) []Entry {
	item := s.toneless.Get(patricia.Prefix(zhuyin.StripTones(key)))
	if item == nil {
		return nil
	}
	return s.collect(item.([]int))
}

// LookupPrefix returns entries whose toned key starts with the query,
// for partial phrase matching while later syllables are still open.
func (s *Store) LookupPrefix(key string) []Entry {
	return s.visit(s.toned, key)
}

// LookupPrefixToneless is LookupPrefix over the toneless index. The
// query is stripped of tone digits first, so a mix of completed
// syllables and a pre-tone partial works as one prefix.
func (s *Store) LookupPrefixToneless(key string) []Entry {
	return s.visit(s.toneless, zhuyin.StripTones(key))
}

func (s *Store) visit(t *patricia.Trie, key string) []Entry {
	var idxs []int
	err := t.VisitSubtree(patricia.Prefix(key), func(_ patricia.Prefix, item patricia.Item) error {
		idxs = append(idxs, item.([]int)...)
		return nil
	})
	if err != nil {
		log.Errorf("dictionary: visiting trie subtree: %v", err)
		return nil
	}
	return s.collect(idxs)
}

func (s *Store) collect(idxs []int) []Entry {
	if len(idxs) == 0 {
		return nil
	}
	out := make([]Entry, 0, len(idxs))
	seen := make(map[int]struct{}, len(idxs))
	for _, i := range idxs {
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, s.entries[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Freq != out[j].Freq {
			return out[i].Freq > out[j].Freq
		}
		return out[i].ord < out[j].ord
	})
	return out
}

// Load opens the artifact read-only and builds the in-memory store.
// Any failure here is fatal to the session: without the dictionary no
// candidate can ever be produced.
func Load(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("dictionary artifact %s: %w", path, err)
	}

	// immutable=1 skips journal/lock probing, required on read-only mounts.
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("open dictionary %s: %w", path, err)
	}
	defer db.Close()

	if err := checkSchemaVersion(db); err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT zhuyin, phrase, frequency FROM phrases ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	defer rows.Close()

	s := NewStore()
	for rows.Next() {
		var key, text string
		var freq int
		if err := rows.Scan(&key, &text, &freq); err != nil {
			return nil, fmt.Errorf("scan dictionary row: %w", err)
		}
		if freq < 0 {
			return nil, fmt.Errorf("dictionary entry %q has negative frequency %d", text, freq)
		}
		s.Add(key, text, freq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("dictionary %s contains no entries", path)
	}

	log.Debugf("dictionary loaded: %d entries from %s", s.Len(), path)
	return s, nil
}

func checkSchemaVersion(db *sql.DB) error {
	var v int
	err := db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&v)
	if err != nil {
		return fmt.Errorf("dictionary meta table: %w", err)
	}
	if v != SchemaVersion {
		return fmt.Errorf("dictionary schema version %d, want %d", v, SchemaVersion)
	}
	return nil
}
