package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombineZones(t *testing.T) {
	cases := []struct {
		kinerja, perilaku, want Zone
	}{
		{ZoneSuccess, ZoneSuccess, ZoneSuccess},
		{ZoneSuccess, ZoneWarning, ZoneSuccess},
		{ZoneWarning, ZoneSuccess, ZoneWarning},
		{ZoneWarning, ZoneCritical, ZoneWarning},
		{ZoneSuccess, ZoneCritical, ZoneCritical},
		{ZoneCritical, ZoneSuccess, ZoneCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, combineZones(tc.kinerja, tc.perilaku), "%s/%s", tc.kinerja, tc.perilaku)
	}
}

func TestZoneFromAverage(t *testing.T) {
	assert.Equal(t, ZoneSuccess, zoneFromAverage(4.0))
	assert.Equal(t, ZoneWarning, zoneFromAverage(3.99))
	assert.Equal(t, ZoneWarning, zoneFromAverage(3.0))
	assert.Equal(t, ZoneCritical, zoneFromAverage(2.99))
	assert.Equal(t, ZoneCritical, ZoneWarning.demote())
	assert.Equal(t, ZoneWarning, ZoneSuccess.demote())
}

func TestPickProfile(t *testing.T) {
	assert.Equal(t, ProfileAtRisk, pickProfile(profileInput{weighted: 4.5, avgGap: -1.2}))
	assert.Equal(t, ProfileLeader, pickProfile(profileInput{weighted: 4.2, avgGap: 0.1, teamSize: 4, coverage: 80}))
	assert.Equal(t, ProfilePerformer, pickProfile(profileInput{weighted: 4.2, avgGap: 0.1, teamSize: 4, coverage: 50}))
	assert.Equal(t, ProfileUnderestimator, pickProfile(profileInput{weighted: 3.0, avgGap: 1.3}))
	assert.Equal(t, ProfileVisionary, pickProfile(profileInput{weighted: 3.0, avgGap: -0.4, leadershipSelf: 4.5}))
	assert.Equal(t, ProfilePerformer, pickProfile(profileInput{weighted: 3.6, avgGap: 0.8}))
	assert.Equal(t, ProfileDeveloping, pickProfile(profileInput{weighted: 2.9}))
}

func TestRatioScore(t *testing.T) {
	assert.InDelta(t, 1.0, ratioScore(0), 1e-9)
	assert.InDelta(t, 4.2, ratioScore(1), 1e-9)
	assert.InDelta(t, 5.0, ratioScore(1.25), 1e-9)
	assert.InDelta(t, 5.0, ratioScore(3), 1e-9)
	assert.InDelta(t, 1.0, ratioScore(-1), 1e-9)
}
