package domain

// Stashpoint is a location offering luggage storage. Values are read-only
// snapshots of the last stashpoint fetch.
type Stashpoint struct {
	ID             string
	Name           string
	Address        string
	Rating         float64
	BagPerDayPrice float64
	CurrencyCode   string
}
