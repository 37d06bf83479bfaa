package geo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestComputeRegionLabel_CapitalZoneFromCoordinates(t *testing.T) {
	label := ComputeRegionLabel("SP", "São Paulo", ptr(-23.4), ptr(-46.7))
	require.Contains(t, label, "Zona Norte")
	require.Contains(t, label, "São Paulo")
}

func TestComputeRegionLabel_CapitalZoneOrder(t *testing.T) {
	// Mid-box latitude, far-east longitude: the north/south checks lose and
	// the east check wins.
	label := ComputeRegionLabel("SP", "São Paulo", ptr(-23.65), ptr(-46.36))
	require.Contains(t, label, "Zona Leste")

	// Southern latitude wins over the longitude checks.
	label = ComputeRegionLabel("RJ", "Rio de Janeiro", ptr(-23.05), ptr(-43.15))
	require.Contains(t, label, "Zona Sul")
}

func TestComputeRegionLabel_CapitalByNameWithoutCoordinates(t *testing.T) {
	label := ComputeRegionLabel("MG", "Belo Horizonte", nil, nil)
	require.Equal(t, "Belo Horizonte — Centro", label)
}

func TestComputeRegionLabel_MacroRegion(t *testing.T) {
	require.Equal(t, "SP — Baixada Santista", ComputeRegionLabel("SP", "Santos", nil, nil))
	require.Equal(t, "RJ — Região Serrana", ComputeRegionLabel("RJ", "Petrópolis", nil, nil))
}

func TestComputeRegionLabel_MacroRegionSubstringBothWays(t *testing.T) {
	// Profile city longer than the table entry.
	require.Equal(t, "SP — Grande São Paulo", ComputeRegionLabel("SP", "São Bernardo do Campo", nil, nil))
}

func TestComputeRegionLabel_CityStateFallback(t *testing.T) {
	require.Equal(t, "UBERLÂNDIA — MG", ComputeRegionLabel("MG", "Uberlândia", nil, nil))
}

func TestComputeRegionLabel_StateOnly(t *testing.T) {
	require.Equal(t, "XX", ComputeRegionLabel("XX", "", nil, nil))
}

func TestComputeRegionLabel_SpelledOutStateNormalized(t *testing.T) {
	require.Equal(t, "UBERABA — MG", ComputeRegionLabel("Minas Gerais", "Uberaba", nil, nil))
}

func TestComputeRegionLabel_NothingKnown(t *testing.T) {
	require.Equal(t, LabelUnspecified, ComputeRegionLabel("", "", nil, nil))
}
