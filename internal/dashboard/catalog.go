package dashboard

import (
	"fmt"
	"strings"
)

// Catalog holds every user-facing string of the dashboard for one language.
type Catalog struct {
	Lang string

	Title         string
	FileLabel     string
	UploadButton  string
	SelectedLabel string
	RefreshButton string

	SelectFileFirst string
	UploadOK        string
	UploadRejected  string // format with the server message
	UploadUnknown   string
	UploadFailed    string

	TotalTrades   string
	SumProfitLoss string
	AvgProfitLoss string
	WinRate       string
	BySymbol      string

	Columns  []string
	NoTrades string
}

var catalogs = map[string]Catalog{
	"en": {
		Lang:            "en",
		Title:           "TradeSense Dashboard",
		FileLabel:       "File (CSV/XLSX):",
		UploadButton:    "Upload",
		SelectedLabel:   "Selected:",
		RefreshButton:   "Reload",
		SelectFileFirst: "Please select a CSV or XLSX file.",
		UploadOK:        "Import successful.",
		UploadRejected:  "Error: %s",
		UploadUnknown:   "Error: unknown error",
		UploadFailed:    "Upload failed.",
		TotalTrades:     "Total Trades",
		SumProfitLoss:   "Sum Profit/Loss",
		AvgProfitLoss:   "Avg Profit/Loss",
		WinRate:         "Win Rate",
		BySymbol:        "Trades by symbol",
		Columns:         []string{"ID", "Symbol", "Entry", "Exit", "Qty", "P/L", "Timestamp", "Tags", "Notes", "Rating"},
		NoTrades:        "No trades available",
	},
	"de": {
		Lang:            "de",
		Title:           "TradeSense Dashboard",
		FileLabel:       "Datei (CSV/XLSX):",
		UploadButton:    "Upload",
		SelectedLabel:   "Ausgewählt:",
		RefreshButton:   "Neu laden",
		SelectFileFirst: "Bitte eine CSV- oder XLSX-Datei auswählen.",
		UploadOK:        "Import erfolgreich.",
		UploadRejected:  "Fehler: %s",
		UploadUnknown:   "Fehler: Unbekannter Fehler",
		UploadFailed:    "Upload fehlgeschlagen.",
		TotalTrades:     "Trades gesamt",
		SumProfitLoss:   "Summe Gewinn/Verlust",
		AvgProfitLoss:   "Ø Gewinn/Verlust",
		WinRate:         "Trefferquote",
		BySymbol:        "Trades nach Symbol",
		Columns:         []string{"ID", "Symbol", "Einstieg", "Ausstieg", "Menge", "G/V", "Zeitpunkt", "Tags", "Notizen", "Bewertung"},
		NoTrades:        "Keine Trades verfügbar",
	},
}

// CatalogFor returns the catalog for lang, falling back to English.
func CatalogFor(lang string) Catalog {
	if c, ok := catalogs[strings.ToLower(strings.TrimSpace(lang))]; ok {
		return c
	}
	return catalogs["en"]
}

func (c Catalog) uploadRejected(serverMessage string) string {
	serverMessage = strings.TrimSpace(serverMessage)
	if serverMessage == "" {
		return c.UploadUnknown
	}
	return fmt.Sprintf(c.UploadRejected, serverMessage)
}
