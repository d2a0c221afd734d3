// Command import-schools runs the school spreadsheet importer against a
// local file, without going through the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"backoffice_backend/internal/cms"
	"backoffice_backend/internal/schools/importer"
	"backoffice_backend/platform/config"
	"backoffice_backend/platform/logger"
)

func main() {
	filePath := flag.String("file", "", "path to the .csv/.xlsx/.xls file to import")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: import-schools -file <path>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	file, err := os.Open(*filePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open file:", err)
		os.Exit(1)
	}
	defer file.Close()

	ctx := context.Background()
	cmsClient := cms.NewClient(cfg, log)
	imp := importer.New(cmsClient, nil, cfg.GetImportReadTimeout(), log)

	result, err := imp.Run(ctx, filepath.Base(*filePath), "text/csv", file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "import failed:", err)
		os.Exit(1)
	}

	fmt.Printf("run %s: %d rows, %d created, %d updated, %d failed\n",
		result.RunID, result.Total, result.Created, result.Updated, result.Failed)
	for _, failure := range result.Failures {
		fmt.Printf("  line %d (rbd %s): %s\n", failure.Line, failure.RBD, failure.Reason)
	}
	if result.Failed > 0 {
		os.Exit(1)
	}
}
