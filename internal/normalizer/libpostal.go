//go:build cgo

package normalizer

import (
	"context"
	"strings"

	"github.com/openvenues/gopostal/expand"
	"github.com/openvenues/gopostal/parser"

	"github.com/geocode-service/app/models"
)

// Libpostal in-process normalizer for deployments without the remote parser
// service. Same contract as the HTTP client.
type Libpostal struct {
	languages []string
}

// NewLibpostal defaults to Russian expansion.
func NewLibpostal() *Libpostal {
	return &Libpostal{languages: []string{"ru"}}
}

// Normalize expands the address and maps libpostal labels onto components.
func (lp *Libpostal) Normalize(_ context.Context, rawAddress string) (*Result, error) {
	opts := expand.DefaultOptions()
	opts.Languages = lp.languages
	exps := expand.ExpandAddress(rawAddress, opts)
	best := rawAddress
	if len(exps) > 0 {
		best = exps[0]
	}

	res := &Result{NormalizedText: strings.ToLower(best)}
	comps := parser.ParseAddress(best)
	if len(comps) == 0 {
		return res, nil
	}

	pc := &models.ParsedComponents{}
	for _, c := range comps {
		switch c.Label {
		case "house_number":
			pc.HouseNumber = c.Value
		case "road":
			pc.Road = c.Value
		case "unit":
			pc.Unit = c.Value
		case "level":
			pc.Level = c.Value
		case "staircase":
			pc.Staircase = c.Value
		case "entrance":
			pc.Entrance = c.Value
		case "suburb":
			pc.Suburb = c.Value
		case "city_district":
			pc.CityDistrict = c.Value
		case "city":
			pc.City = c.Value
		case "state":
			pc.State = c.Value
		case "postcode":
			pc.Postcode = c.Value
		case "country":
			pc.Country = c.Value
		}
	}
	res.Components = pc
	return res, nil
}

// Ping libpostal is linked in, always available.
func (lp *Libpostal) Ping(context.Context) error { return nil }
