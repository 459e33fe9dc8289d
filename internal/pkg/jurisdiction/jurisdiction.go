package jurisdiction

import (
	"strings"

	"github.com/AmeyBarve/CivicTrack/app/models"
)

// Entry ties an address keyword to the officials responsible for it. The
// table is ordered; the first matching entry wins, so more specific keywords
// belong before broader ones.
type Entry struct {
	Keyword   string
	Officials models.CivicData
}

// Table is the static jurisdiction reference data. New jurisdictions are new
// rows here, not code changes.
var Table = []Entry{
	{
		Keyword: "pune",
		Officials: models.CivicData{
			MLA:                  "Bapusaheb Tukaram Pathare (Wadgaon Sheri)",
			MP:                   "Murlidhar Mohol (Pune)",
			MunicipalCorporation: "Pune Municipal Corporation (PMC)",
		},
	},
}

// Resolve maps a display address to the responsible officials via
// case-insensitive containment, first match wins. It returns nil for an
// empty address or when no jurisdiction matches.
func Resolve(address string) *models.CivicData {
	return ResolveIn(Table, address)
}

// ResolveIn runs the same matching against an explicit table.
func ResolveIn(table []Entry, address string) *models.CivicData {
	if address == "" {
		return nil
	}
	lower := strings.ToLower(address)
	for _, entry := range table {
		if strings.Contains(lower, strings.ToLower(entry.Keyword)) {
			officials := entry.Officials
			return &officials
		}
	}
	return nil
}
