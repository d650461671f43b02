package enums

// Sport is the sport code the odds API expects in its "sport" query parameter.
type Sport string

const (
	NBA Sport = "NBA"
)

// IsValid checks if sport is supported
func (s Sport) IsValid() bool {
	switch s {
	case NBA:
		return true
	default:
		return false
	}
}

// String returns string representation
func (s Sport) String() string {
	return string(s)
}

// ParseSport parses string to Sport enum
func ParseSport(s string) (Sport, bool) {
	sport := Sport(s)
	return sport, sport.IsValid()
}
