package services

import "globetrail/database"

const airlineLogoBase = "https://www.air.irctc.co.in/assets/airline-logos/"

var airlineNames = map[string]string{
	"AI": "Air India",
	"UK": "Vistara",
	"6E": "IndiGo",
	"SG": "SpiceJet",
	"G8": "Go First",
	"I5": "Air Asia India",
	"QP": "Akasa Air",
	"TK": "Turkish Airlines",
	"LH": "Lufthansa",
	"AF": "Air France",
	"BA": "British Airways",
	"EK": "Emirates",
	"QR": "Qatar Airways",
	"EY": "Etihad Airways",
	"SQ": "Singapore Airlines",
	"FZ": "FlyDubai",
	"KL": "KLM",
	"UA": "United Airlines",
	"AA": "American Airlines",
	"DL": "Delta Air Lines",
}

// logos exist only for the domestic carriers
var airlineLogos = map[string]bool{"AI": true, "UK": true, "6E": true, "SG": true, "G8": true, "I5": true}

// LookupAirline resolves an IATA carrier code to its display name and logo.
func LookupAirline(code string) database.Airline {
	a := database.Airline{Code: code, Name: code, Logo: airlineLogoBase + "default.png"}
	if name, ok := airlineNames[code]; ok {
		a.Name = name
	}
	if airlineLogos[code] {
		a.Logo = airlineLogoBase + code + ".png"
	}
	return a
}
