/*
Package main implements the dictionary artifact builder.

zhuyindict compiles a tab-separated word list into the versioned SQLite
artifact that zhuyinserve loads read-only at startup:

	zhuyindict -in words.tsv -out phrases.db

Source lines are "phrase<TAB>zhuyin-key<TAB>frequency", where the
zhuyin key is the space-joined toned syllable form, e.g.

	台灣	ㄊㄞ2 ㄨㄢ1	95
*/
package main

import (
	"flag"
	"os"

	"github.com/charmbracelet/log"

	"github.com/HiDomesticCat/zhuyinserve/pkg/dictionary"
)

func main() {
	srcPath := flag.String("in", "", "Tab-separated word list to import")
	dbPath := flag.String("out", "phrases.db", "Output artifact path")
	debugMode := flag.Bool("d", false, "Toggle debug mode")

	flag.Parse()

	if *debugMode {
		log.SetLevel(log.DebugLevel)
	}

	if *srcPath == "" {
		log.Error("no word list given, use -in <file>")
		flag.Usage()
		os.Exit(1)
	}

	count, err := dictionary.Build(*srcPath, *dbPath)
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}

	// Sanity-load the artifact the same way the server will.
	dict, err := dictionary.Load(*dbPath)
	if err != nil {
		log.Fatalf("Artifact verification failed: %v", err)
	}
	log.Infof("OK: %d lines imported, %d entries loadable", count, dict.Len())
}
