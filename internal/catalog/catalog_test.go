package catalog

import (
	"testing"

	"tripplanner/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedCatalogValidates(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.NoError(t, c.Validate())
}

func TestFallbackTotalOverSkeletonLegs(t *testing.T) {
	c := MustDefault()
	for _, d := range c.Destinations {
		for _, o := range c.Origins {
			out, ok := c.FallbackFact(o, d.ID)
			require.Truef(t, ok, "missing %s -> %s", o, d.ID)
			assert.Equal(t, o, out.Origin)
			assert.Equal(t, domain.SourceFallback, out.Source)

			back, ok := c.FallbackFact(d.ID, o)
			require.Truef(t, ok, "missing reversed %s -> %s", d.ID, o)
			assert.Equal(t, out.DistanceKM, back.DistanceKM)
			assert.Equal(t, d.ID, back.Origin)
		}
		for _, tpl := range d.Days {
			_, ok := c.FallbackFact(d.ID, tpl.Place)
			assert.Truef(t, ok, "missing %s -> %s", d.ID, tpl.Place)
		}
	}
}

func TestValidateReportsFallbackGap(t *testing.T) {
	c := MustDefault()
	trimmed := c.Fallback[:0:0]
	for _, l := range c.Fallback {
		if l.From == "karachi" && l.To == "hunza" {
			continue
		}
		trimmed = append(trimmed, l)
	}
	c.Fallback = trimmed
	c.index()

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "karachi -> hunza")
}

func TestFallbackFactDerivesHoursAndSafety(t *testing.T) {
	c := MustDefault()
	f, ok := c.FallbackFact("lahore", "hunza")
	require.True(t, ok)
	// 1045 km at the northern-areas speed of 40 km/h.
	assert.InDelta(t, 26.1, f.TimeHours, 0.01)
	assert.Equal(t, 65, f.BaseSafetyScore)
	assert.Equal(t, int64(2663), f.FarePKR)
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "fairy-meadows", NormalizeID("  Fairy Meadows "))
	assert.Equal(t, "attabad-lake", NormalizeID("attabad_lake"))
	_, ok := MustDefault().Destination("HUNZA")
	assert.True(t, ok)
}

func TestPolicyNightWindow(t *testing.T) {
	p := MustDefault().Policy
	cases := map[string]bool{"05:59": true, "06:00": false, "07:00": false, "17:59": false, "18:00": true, "20:00": true, "00:30": true}
	for clock, want := range cases {
		m, err := ParseClock(clock)
		require.NoError(t, err)
		assert.Equalf(t, want, p.IsNight(m), "clock %s", clock)
	}
	assert.Equal(t, 11.0, p.DaylightHours())
	assert.Equal(t, "02:00", FormatClock(26*60))
}

func TestPackingChecklist(t *testing.T) {
	cat := MustDefault()
	items := cat.PackingChecklist("Hunza", domain.TravelFamily, 6)
	names := map[string]bool{}
	for _, it := range items {
		names[it.Item] = true
	}
	for _, want := range []string{"CNIC/Passport", "Warm jacket", "Kids snacks", "Laundry bag"} {
		assert.Truef(t, names[want], "expected %s", want)
	}
	assert.False(t, names["Umbrella/raincoat"])

	short := cat.PackingChecklist("murree", domain.TravelSolo, 2)
	assert.Len(t, short, 11)
}

func TestTransportOptionsByDistance(t *testing.T) {
	p := MustDefault().Pricing

	modes := func(km float64) []string {
		var out []string
		for _, o := range p.TransportOptions(km) {
			out = append(out, o.Mode)
		}
		return out
	}
	assert.Equal(t, []string{"ride_hailing"}, modes(15))
	assert.Equal(t, []string{"bus", "ride_hailing"}, modes(65))
	assert.Equal(t, []string{"bus", "train", "ride_hailing"}, modes(150))
	assert.Equal(t, []string{"bus", "train"}, modes(380))

	opts := p.TransportOptions(100.5)
	require.Len(t, opts, 3)
	bus := opts[0]
	assert.Equal(t, int64(301), bus.FarePKR)
	assert.Equal(t, int64(241), bus.FareMinPKR)
	assert.Equal(t, int64(372), bus.FareMaxPKR)
	assert.Equal(t, 1.7, bus.TimeHours)
	assert.Equal(t, domain.TierRecommended, bus.RiskTier)

	long := p.TransportOptions(1045)
	require.NotEmpty(t, long)
	assert.Equal(t, "bus", long[0].Mode)
	assert.Equal(t, domain.TierCaution, long[0].RiskTier)
	for _, o := range long {
		assert.LessOrEqual(t, o.FareMinPKR, o.FarePKR, o.Mode)
		assert.LessOrEqual(t, o.FarePKR, o.FareMaxPKR, o.Mode)
	}
}

func TestEmergencyInfo(t *testing.T) {
	c := MustDefault()

	gb, ok := c.EmergencyInfo("northern-areas")
	require.True(t, ok)
	assert.Equal(t, "northern-areas", gb.Region)
	assert.Equal(t, "+92-5811-457204", gb.Contacts["aga_khan_hospital"])
	assert.Equal(t, "1122", gb.General["rescue"])
	assert.NotEmpty(t, gb.Tips)
	assert.Nil(t, gb.AllRegions)

	sindh, ok := c.EmergencyInfo("sindh")
	require.True(t, ok)
	assert.Empty(t, sindh.Contacts)
	assert.Equal(t, "15", sindh.General["police"])

	all, ok := c.EmergencyInfo("")
	require.True(t, ok)
	assert.Len(t, all.AllRegions, 3)
	assert.Empty(t, all.Region)

	_, ok = c.EmergencyInfo("atlantis")
	assert.False(t, ok)
}

func TestValidateRejectsUnknownEmergencyRegion(t *testing.T) {
	c := MustDefault()
	c.Emergency.Regions["atlantis"] = map[string]string{"police": "15"}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `emergency: unknown region "atlantis"`)
}
