package database

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankAirports_IATAFirstThenCity(t *testing.T) {
	airports := []Airport{
		{IATA: "BOM", Name: "Chhatrapati Shivaji Maharaj International", City: "Mumbai"},
		{IATA: "DEL", Name: "Indira Gandhi International", City: "Delhi"},
		{IATA: "XDE", Name: "Delhi Heliport", City: "New Delhi"},
		{IATA: "DED", Name: "Jolly Grant", City: "Dehradun"},
	}

	got := rankAirports(airports, "del")

	codes := make([]string, 0, len(got))
	for _, a := range got {
		codes = append(codes, a.IATA)
	}
	assert.Equal(t, []string{"DEL", "XDE"}, codes)
}

func TestRankAirports_NameOnlyMatchesLast(t *testing.T) {
	airports := []Airport{
		{IATA: "BLR", Name: "Kempegowda International", City: "Bengaluru"},
		{IATA: "KGX", Name: "Kempegowda Regional", City: "Kengal"},
		{IATA: "KEM", Name: "Kemi-Tornio", City: "Kemi"},
	}

	got := rankAirports(airports, "kem")

	assert.Len(t, got, 3)
	assert.Equal(t, "KEM", got[0].IATA)
	assert.Equal(t, "BLR", got[1].IATA)
}

func TestRankAirports_Limit(t *testing.T) {
	var airports []Airport
	for i := 0; i < 25; i++ {
		airports = append(airports, Airport{IATA: fmt.Sprintf("A%02d", i), City: "Springfield"})
	}

	assert.Len(t, rankAirports(airports, "spring"), referenceLimit)
}
