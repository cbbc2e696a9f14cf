// Command print_returns dumps the built-in historical returns table and its
// summary statistics. Useful when sanity-checking backtest windows against
// the raw data.
package main

import (
	"fmt"
	"os"

	"github.com/firecalc/fire-planner/internal/simulation"
)

func main() {
	table := simulation.DefaultStockReturns()
	if len(os.Args) > 2 {
		var err error
		table, err = simulation.LoadHistoricalReturnsCSV(os.Args[1], os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, "load:", err)
			os.Exit(1)
		}
	}

	fmt.Printf("table %s: %d years (%d-%d)\n", table.Name, table.Len(), table.MinYear, table.MaxYear)
	for year := table.MinYear; year <= table.MaxYear; year++ {
		r, ok := table.Return(year)
		if !ok {
			fmt.Printf("%d  (missing)\n", year)
			continue
		}
		fmt.Printf("%d  %s\n", year, r.StringFixed(4))
	}

	stats := table.Statistics()
	fmt.Printf("\nmean %s  stdev %s  min %s  max %s\n",
		stats.Mean.StringFixed(4), stats.StdDev.StringFixed(4), stats.Min.StringFixed(4), stats.Max.StringFixed(4))
}
