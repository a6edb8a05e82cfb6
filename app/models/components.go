package models

// ParsedComponents structured decomposition of a query, supplied by the
// external normalizer (libpostal labels). All fields are optional: an empty
// field means "do not constrain on it", not "must be empty".
type ParsedComponents struct {
	City         string `json:"city,omitempty"`
	Road         string `json:"road,omitempty"`
	HouseNumber  string `json:"house_number,omitempty"`
	Unit         string `json:"unit,omitempty"`
	Level        string `json:"level,omitempty"`
	Staircase    string `json:"staircase,omitempty"`
	Entrance     string `json:"entrance,omitempty"`
	Suburb       string `json:"suburb,omitempty"`
	CityDistrict string `json:"city_district,omitempty"`
	State        string `json:"state,omitempty"`
	Postcode     string `json:"postcode,omitempty"`
	Country      string `json:"country,omitempty"`
}

// IsEmpty reports whether no searchable component is present.
func (pc *ParsedComponents) IsEmpty() bool {
	if pc == nil {
		return true
	}
	return pc.City == "" && pc.Road == "" && pc.HouseNumber == ""
}

// Coordinates точка WGS84.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
