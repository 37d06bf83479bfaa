package geo

import (
	"fmt"
	"strings"
)

// LabelUnspecified is returned when neither state, city nor coordinates are known.
const LabelUnspecified = "localização não informada"

// capital describes a metro capital whose bounding box is split into zone
// quadrants. The set is extensible; only the three largest markets ship today.
type capital struct {
	state       string
	city        string
	displayName string
	minLat      float64
	maxLat      float64
	minLng      float64
	maxLng      float64
}

var capitals = []capital{
	{
		state:       "SP",
		city:        "SÃO PAULO",
		displayName: "São Paulo",
		minLat:      -24.00, maxLat: -23.30,
		minLng: -46.85, maxLng: -46.35,
	},
	{
		state:       "RJ",
		city:        "RIO DE JANEIRO",
		displayName: "Rio de Janeiro",
		minLat:      -23.10, maxLat: -22.70,
		minLng: -43.80, maxLng: -43.10,
	},
	{
		state:       "MG",
		city:        "BELO HORIZONTE",
		displayName: "Belo Horizonte",
		minLat:      -20.05, maxLat: -19.75,
		minLng: -44.10, maxLng: -43.85,
	},
}

// macroRegion groups cities of a state into a named sub-region. City matching
// is a substring check in either direction so "SÃO BERNARDO DO CAMPO" matches
// the "SÃO BERNARDO" entry and vice versa.
type macroRegion struct {
	name   string
	cities []string
}

var macroRegions = map[string][]macroRegion{
	"SP": {
		{name: "Grande São Paulo", cities: []string{"GUARULHOS", "OSASCO", "SÃO BERNARDO", "SANTO ANDRÉ", "SÃO CAETANO", "DIADEMA", "MAUÁ", "BARUERI", "COTIA"}},
		{name: "Baixada Santista", cities: []string{"SANTOS", "SÃO VICENTE", "GUARUJÁ", "PRAIA GRANDE", "CUBATÃO"}},
		{name: "Interior Paulista", cities: []string{"CAMPINAS", "RIBEIRÃO PRETO", "SOROCABA", "SÃO JOSÉ DOS CAMPOS", "BAURU", "PIRACICABA"}},
	},
	"RJ": {
		{name: "Baixada Fluminense", cities: []string{"DUQUE DE CAXIAS", "NOVA IGUAÇU", "SÃO JOÃO DE MERITI", "BELFORD ROXO", "NILÓPOLIS"}},
		{name: "Região dos Lagos", cities: []string{"CABO FRIO", "BÚZIOS", "ARRAIAL DO CABO", "ARARUAMA", "SAQUAREMA"}},
		{name: "Região Serrana", cities: []string{"PETRÓPOLIS", "TERESÓPOLIS", "NOVA FRIBURGO"}},
	},
	"MG": {
		{name: "Grande BH", cities: []string{"CONTAGEM", "BETIM", "NOVA LIMA", "SABARÁ", "RIBEIRÃO DAS NEVES"}},
		{name: "Sul de Minas", cities: []string{"POÇOS DE CALDAS", "VARGINHA", "POUSO ALEGRE", "ITAJUBÁ"}},
		{name: "Zona da Mata", cities: []string{"JUIZ DE FORA", "UBÁ", "VIÇOSA", "MURIAÉ"}},
	},
}

// stateCodes maps spelled-out state names to their two-letter code.
var stateCodes = map[string]string{
	"SÃO PAULO":         "SP",
	"RIO DE JANEIRO":    "RJ",
	"MINAS GERAIS":      "MG",
	"ESPÍRITO SANTO":    "ES",
	"PARANÁ":            "PR",
	"SANTA CATARINA":    "SC",
	"RIO GRANDE DO SUL": "RS",
	"BAHIA":             "BA",
	"PERNAMBUCO":        "PE",
	"CEARÁ":             "CE",
	"DISTRITO FEDERAL":  "DF",
	"GOIÁS":             "GO",
}

// ComputeRegionLabel derives a human-readable region label from administrative
// names and an optional coordinate. It is pure: the same inputs always produce
// the same label.
//
// Resolution order: capital zone (state/city pair or coordinate inside a
// capital bounding box), then a state macro-region containing the city, then
// "CITY — STATE", then the state alone, then LabelUnspecified.
func ComputeRegionLabel(state, city string, lat, lng *float64) string {
	stateCode := normalizeState(state)
	cityName := strings.ToUpper(strings.TrimSpace(city))

	if c, ok := matchCapital(stateCode, cityName, lat, lng); ok {
		return fmt.Sprintf("%s — %s", c.displayName, c.zone(lat, lng))
	}

	if stateCode != "" && cityName != "" {
		for _, region := range macroRegions[stateCode] {
			for _, candidate := range region.cities {
				if strings.Contains(cityName, candidate) || strings.Contains(candidate, cityName) {
					return fmt.Sprintf("%s — %s", stateCode, region.name)
				}
			}
		}
	}

	if cityName != "" && stateCode != "" {
		return fmt.Sprintf("%s — %s", cityName, stateCode)
	}
	if stateCode != "" {
		return stateCode
	}
	return LabelUnspecified
}

func normalizeState(state string) string {
	s := strings.ToUpper(strings.TrimSpace(state))
	if code, ok := stateCodes[s]; ok {
		return code
	}
	return s
}

func matchCapital(stateCode, cityName string, lat, lng *float64) (capital, bool) {
	for _, c := range capitals {
		if stateCode == c.state && cityName == c.city {
			return c, true
		}
		if lat != nil && lng != nil && c.contains(*lat, *lng) {
			return c, true
		}
	}
	return capital{}, false
}

func (c capital) contains(lat, lng float64) bool {
	return lat >= c.minLat && lat <= c.maxLat && lng >= c.minLng && lng <= c.maxLng
}

// zone assigns a coordinate to a quadrant of the capital's bounding box. The
// threshold checks are evaluated in a fixed order (north, south, east, west,
// center); a coordinate satisfying more than one check gets the first match.
func (c capital) zone(lat, lng *float64) string {
	if lat == nil || lng == nil {
		return "Centro"
	}

	midLat := (c.minLat + c.maxLat) / 2
	midLng := (c.minLng + c.maxLng) / 2
	latBand := (c.maxLat - c.minLat) * 0.1
	lngBand := (c.maxLng - c.minLng) * 0.1

	switch {
	case *lat > midLat+latBand:
		return "Zona Norte"
	case *lat < midLat-latBand:
		return "Zona Sul"
	case *lng > midLng+lngBand:
		return "Zona Leste"
	case *lng < midLng-lngBand:
		return "Zona Oeste"
	default:
		return "Centro"
	}
}
