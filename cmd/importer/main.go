// Command importer checks a catalog CSV before it is handed to the storefront
// via CATALOG_FILE and lists what would be served.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"storefront/internal/importer"
	"storefront/internal/money"
)

func main() {
	var (
		filePath string
		currency string
	)
	flag.StringVar(&filePath, "file", "", "Path to catalog CSV (id,name,price,category,unit,image)")
	flag.StringVar(&currency, "currency", money.MVR.Code, "Currency used to print prices")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	rule, ok := money.RuleFor(currency)
	if !ok {
		log.Fatalf("unsupported currency %q", currency)
	}
	formatter := money.NewFormatter(rule)

	start := time.Now()
	cat, err := importer.LoadFile(context.Background(), filePath)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	for _, p := range cat.All() {
		fmt.Printf("%-24s %-36s %-12s %s\n", p.ID, p.Name, p.Category, formatter.Format(p.Price))
	}
	fmt.Printf("Checked %d products in %d categories in %s\n", cat.Len(), len(cat.Categories()), time.Since(start).Truncate(time.Millisecond))
}
