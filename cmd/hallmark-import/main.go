// Command hallmark-import loads lexicon source files into a SQLite lexicon.
//
// Usage:
//
//	hallmark-import [-db lexicon.db] [-log development] source.txt...
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrwolf/hallmark-server/internal/importer"
	"github.com/mrwolf/hallmark-server/internal/lexicon"
	"github.com/mrwolf/hallmark-server/internal/logger"
)

func main() {
	dbPath := flag.String("db", "lexicon.db", "lexicon database to create or extend")
	logMode := flag.String("log", "development", "log mode: development or production")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: hallmark-import [-db path] source.txt...")
		os.Exit(2)
	}

	log, err := logger.New(*logMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	database, err := lexicon.Open(*dbPath)
	if err != nil {
		log.Fatal("failed to open lexicon", "db", *dbPath, "error", err)
	}
	defer database.Close()

	im := importer.New(database, log)
	for _, path := range flag.Args() {
		stats, err := im.ImportFile(path)
		if err != nil {
			log.Error("import failed", "file", path, "error", err)
			database.Close()
			log.Sync()
			os.Exit(1)
		}
		log.Info("imported", "file", path, "added", stats.Added, "skipped", stats.Skipped)
	}
}
