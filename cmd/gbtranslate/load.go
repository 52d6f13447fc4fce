package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/inodb/gbtranslate/internal/catalog"
	"github.com/inodb/gbtranslate/internal/duckdb"
	"github.com/inodb/gbtranslate/internal/genbank"
)

// defaultInput is read when no file argument is given.
const defaultInput = "nc_005816.gb"

func inputPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultInput
}

// loadRecords parses path, going through the record cache when enabled.
func loadRecords(path string, opts options) ([]*genbank.Record, error) {
	if path != "-" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("file '%s' does not exist", path)
		}
	}

	if path == "-" && opts.stdin != nil {
		r, err := genbank.NewReader(opts.stdin)
		if err != nil {
			return nil, err
		}
		return r.Records()
	}
	if !opts.cacheEnabled || path == "-" || opts.cacheDir == "" {
		return genbank.ReadAll(path)
	}

	records, cached, err := duckdb.LoadRecords(path, opts.cacheDir)
	if err != nil {
		if records == nil {
			return nil, err
		}
		logger.Warn("could not write record cache", zap.String("dir", opts.cacheDir), zap.Error(err))
	}
	if cached {
		logger.Debug("loaded records from cache", zap.String("file", path), zap.Int("records", len(records)))
	} else {
		logger.Debug("cache miss, parsed records", zap.String("file", path), zap.Int("records", len(records)))
	}
	return records, nil
}

// loadCatalogs builds one gene catalog per record of path.
func loadCatalogs(path string, opts options) ([]*catalog.Catalog, error) {
	records, err := loadRecords(path, opts)
	if err != nil {
		return nil, err
	}

	catalogs := make([]*catalog.Catalog, 0, len(records))
	for _, rec := range records {
		c, err := catalog.Build(rec, catalog.Options{
			SkipIncomplete: opts.skipIncomplete,
			Logger:         logger,
		})
		if err != nil {
			return nil, err
		}
		catalogs = append(catalogs, c)
	}
	return catalogs, nil
}
