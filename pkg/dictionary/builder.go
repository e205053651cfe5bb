package dictionary

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"
)

// defaultFreq is assumed when a source line omits the frequency column.
const defaultFreq = 100

const buildSchema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS phrases (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	zhuyin    TEXT NOT NULL,
	phrase    TEXT NOT NULL,
	frequency INTEGER NOT NULL DEFAULT 100,
	length    INTEGER NOT NULL,
	UNIQUE(zhuyin, phrase)
);
CREATE INDEX IF NOT EXISTS idx_phrases_zhuyin ON phrases(zhuyin);
CREATE INDEX IF NOT EXISTS idx_phrases_freq ON phrases(frequency DESC);
`

// Build compiles a tab-separated word list into the SQLite artifact.
// Source lines are "phrase<TAB>zhuyin-key<TAB>frequency"; blank lines
// and #-comments are skipped. Returns the number of entries written.
func Build(srcPath, dbPath string) (int, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("open word list %s: %w", srcPath, err)
	}
	defer src.Close()

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("create artifact %s: %w", dbPath, err)
	}
	defer db.Close()

	if _, err := db.Exec(buildSchema); err != nil {
		return 0, fmt.Errorf("create schema: %w", err)
	}
	if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`,
		strconv.Itoa(SchemaVersion)); err != nil {
		return 0, fmt.Errorf("write schema version: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO phrases (zhuyin, phrase, frequency, length) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	lineNo := 0
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			log.Warnf("word list line %d: want phrase<TAB>zhuyin, skipping", lineNo)
			continue
		}
		phrase, key := parts[0], parts[1]
		freq := defaultFreq
		if len(parts) > 2 {
			if n, err := strconv.Atoi(parts[2]); err == nil && n >= 0 {
				freq = n
			} else {
				log.Warnf("word list line %d: bad frequency %q, using %d", lineNo, parts[2], defaultFreq)
			}
		}
		if _, err := stmt.Exec(key, phrase, freq, len([]rune(phrase))); err != nil {
			return 0, fmt.Errorf("insert %q: %w", phrase, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read word list: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	log.Infof("dictionary artifact built: %d entries into %s", count, dbPath)
	return count, nil
}
