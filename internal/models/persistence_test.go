package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyStorage_Migrate(t *testing.T) {
	raw := `{
		"uninstallRequests": {
			"windows vista": {"id": "u1", "programName": "Windows Vista", "count": 5},
			"edge": {"id": "u2", "programName": "Edge", "count": 2}
		},
		"bosses": {
			"glass joe": {"id": "b1", "name": "Glass Joe", "isBeaten": true, "deathCount": 2, "finalDeathCount": 2},
			"tyson": {"id": "b2", "name": "Tyson", "isBeaten": false, "deathCount": 37, "finalDeathCount": null}
		}
	}`
	var legacy LegacyStorage
	require.NoError(t, json.Unmarshal([]byte(raw), &legacy))

	snap := legacy.Migrate()

	ch := snap.Channels[DefaultChannel]
	require.NotNil(t, ch)
	assert.True(t, ch.IsDefault)

	reqs := snap.UninstallRequests[DefaultChannel]
	require.Len(t, reqs, 2)
	assert.Equal(t, 5, reqs["windows vista"].Count)
	assert.Equal(t, "u1", reqs["windows vista"].ID)
	assert.Less(t, reqs["windows vista"].Seq, reqs["edge"].Seq)

	bosses := snap.Bosses[DefaultChannel]
	require.Len(t, bosses, 2)
	require.NotNil(t, bosses["glass joe"].FinalDeathCount)
	assert.Equal(t, 2, *bosses["glass joe"].FinalDeathCount)
	assert.Nil(t, bosses["tyson"].FinalDeathCount)

	active := snap.ActiveBoss(DefaultChannel)
	require.NotNil(t, active)
	assert.Equal(t, "Tyson", active.Name)
}

func TestLegacyStorage_MigrateEmpty(t *testing.T) {
	var legacy LegacyStorage
	snap := legacy.Migrate()

	assert.Len(t, snap.Channels, 1)
	assert.Empty(t, snap.UninstallRequests[DefaultChannel])
	assert.Empty(t, snap.Bosses[DefaultChannel])
}

func TestLegacyStorage_MigrateNormalizesKeys(t *testing.T) {
	legacy := LegacyStorage{
		UninstallRequests: map[string]*UninstallRequest{
			" Steam ": {ProgramName: "Steam", Count: 1},
		},
	}
	snap := legacy.Migrate()
	assert.Contains(t, snap.UninstallRequests[DefaultChannel], "steam")
}

func TestLegacyStorage_MigrateKeepsDocumentOrder(t *testing.T) {
	raw := `{
		"uninstallRequests": {
			"zoom": {"programName": "Zoom", "count": 1},
			"edge": {"programName": "Edge", "count": 1}
		},
		"bosses": {
			"zelda": {"name": "Zelda", "isBeaten": false, "deathCount": 4},
			"aardvark": {"name": "Aardvark", "isBeaten": false, "deathCount": 1}
		}
	}`
	var legacy LegacyStorage
	require.NoError(t, json.Unmarshal([]byte(raw), &legacy))

	snap := legacy.Migrate()

	active := snap.ActiveBoss(DefaultChannel)
	require.NotNil(t, active)
	assert.Equal(t, "Zelda", active.Name)

	bosses := snap.SortedBosses(DefaultChannel)
	require.Len(t, bosses, 2)
	assert.Equal(t, "Zelda", bosses[0].Name)
	assert.Equal(t, "Aardvark", bosses[1].Name)

	ranked := snap.RankedRequests(DefaultChannel)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Zoom", ranked[0].ProgramName)
	assert.Equal(t, "Edge", ranked[1].ProgramName)
}

func TestLegacyStorage_UnmarshalNullAndMissing(t *testing.T) {
	var legacy LegacyStorage
	require.NoError(t, json.Unmarshal([]byte(`{"bosses": null}`), &legacy))

	assert.Empty(t, legacy.Bosses)
	assert.Empty(t, legacy.UninstallRequests)
}

func TestLegacyStorage_UnmarshalRejectsNonObject(t *testing.T) {
	var legacy LegacyStorage
	assert.Error(t, json.Unmarshal([]byte(`{"bosses": [1, 2]}`), &legacy))
	assert.Error(t, json.Unmarshal([]byte(`{"bosses": {"a": "not a boss"}}`), &legacy))
}
