package models

import (
	"fmt"
	"strings"
)

// Sport is the stats site's sport code (e.g. "MIH" for men's ice hockey)
type Sport string

const (
	MensIceHockey     Sport = "MIH"
	WomensIceHockey   Sport = "WIH"
	MensLacrosse      Sport = "MLA"
	WomensLacrosse    Sport = "WLA"
	WomensFieldHockey Sport = "WFH"
	Football          Sport = "MFB"
	MensBasketball    Sport = "MBB"
	WomensBasketball  Sport = "WBB"
)

var sportFamilies = map[Sport]string{
	MensIceHockey:     "hockey",
	WomensIceHockey:   "hockey",
	MensLacrosse:      "lacrosse",
	WomensLacrosse:    "lacrosse",
	WomensFieldHockey: "field_hockey",
	Football:          "football",
	MensBasketball:    "basketball",
	WomensBasketball:  "basketball",
}

// AllSports lists every sport with play-by-play support
func AllSports() []Sport {
	return []Sport{
		MensIceHockey, WomensIceHockey,
		MensLacrosse, WomensLacrosse,
		WomensFieldHockey,
		Football,
		MensBasketball, WomensBasketball,
	}
}

// ParseSport parses a sport code, case-insensitively
func ParseSport(s string) (Sport, error) {
	sport := Sport(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := sportFamilies[sport]; !ok {
		return "", fmt.Errorf("unknown sport code %q", s)
	}
	return sport, nil
}

// Family returns the sport family name ("hockey", "lacrosse", ...)
func (s Sport) Family() string {
	return sportFamilies[s]
}

// CacheFolder returns the folder name used for this sport's cached files, e.g. "hockey_MIH"
func (s Sport) CacheFolder() string {
	return fmt.Sprintf("%s_%s", s.Family(), s)
}

func (s Sport) String() string {
	return string(s)
}
