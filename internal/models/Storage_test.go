package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func sampleSnapshot() *Snapshot {
	s := NewSnapshot()
	s.Channels["default"] = &Channel{ID: "default", DisplayName: "Mango", IsDefault: true, Seq: s.TakeSeq()}
	s.UninstallRequests["default"] = map[string]*UninstallRequest{
		"vista": {ID: "u1", ProgramName: "Vista", Count: 3, Seq: s.TakeSeq()},
	}
	s.Bosses["default"] = map[string]*Boss{
		"glass joe": {ID: "b1", Name: "Glass Joe", IsBeaten: true, DeathCount: 4, FinalDeathCount: intPtr(4), Seq: s.TakeSeq()},
	}
	return s
}

func TestSnapshot_JSONRoundtrip(t *testing.T) {
	original := sampleSnapshot()

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var restored Snapshot
	require.NoError(t, json.Unmarshal(data, &restored))
	restored.Repair()

	assert.Equal(t, original, &restored)
}

func TestSnapshot_EmptyRoundtrip(t *testing.T) {
	data, err := json.Marshal(NewSnapshot())
	require.NoError(t, err)

	var restored Snapshot
	require.NoError(t, json.Unmarshal(data, &restored))
	restored.Repair()

	assert.Equal(t, NewSnapshot(), &restored)
}

func TestSnapshot_RepairFillsNilMaps(t *testing.T) {
	raw := `{"version":1}`
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	s.Repair()

	assert.NotNil(t, s.Channels)
	assert.NotNil(t, s.UninstallRequests)
	assert.NotNil(t, s.Bosses)
}

func TestSnapshot_RepairAdvancesNextSeq(t *testing.T) {
	raw := `{"version":1,"nextSeq":0,"bosses":{"default":{"a":{"name":"A","seq":41}}}}`
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	s.Repair()

	assert.Equal(t, uint64(42), s.NextSeq)
}

func TestSnapshot_RepairDropsNilEntries(t *testing.T) {
	raw := `{"version":1,"channels":{"x":null},"uninstallRequests":{"x":{"a":null}}}`
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	s.Repair()

	assert.Empty(t, s.Channels)
	assert.Empty(t, s.UninstallRequests["x"])
}

func TestSnapshot_RepairFreezesBeatenWithoutFinalCount(t *testing.T) {
	raw := `{"version":1,"bosses":{"default":{
		"glass joe":{"name":"Glass Joe","isBeaten":true,"deathCount":3,"finalDeathCount":null,"seq":1},
		"tyson":{"name":"Tyson","isBeaten":false,"deathCount":5,"finalDeathCount":null,"seq":2}
	}}}`
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	s.Repair()

	joe := s.Bosses["default"]["glass joe"]
	require.NotNil(t, joe.FinalDeathCount)
	assert.Equal(t, 3, *joe.FinalDeathCount)
	assert.Nil(t, s.Bosses["default"]["tyson"].FinalDeathCount)
}

func TestSnapshot_CloneIsDeep(t *testing.T) {
	original := sampleSnapshot()
	clone := original.Clone()

	clone.UninstallRequests["default"]["vista"].Count = 100
	*clone.Bosses["default"]["glass joe"].FinalDeathCount = 100
	clone.Channels["default"].DisplayName = "changed"
	clone.Bosses["other"] = map[string]*Boss{}

	assert.Equal(t, 3, original.UninstallRequests["default"]["vista"].Count)
	assert.Equal(t, 4, *original.Bosses["default"]["glass joe"].FinalDeathCount)
	assert.Equal(t, "Mango", original.Channels["default"].DisplayName)
	assert.NotContains(t, original.Bosses, "other")
}

func TestSnapshot_RankedRequests(t *testing.T) {
	s := NewSnapshot()
	s.UninstallRequests["default"] = map[string]*UninstallRequest{
		"a": {ProgramName: "a", Count: 1, Seq: 1},
		"b": {ProgramName: "b", Count: 5, Seq: 2},
		"c": {ProgramName: "c", Count: 1, Seq: 0},
		"d": {ProgramName: "d", Count: 5, Seq: 3},
	}

	ranked := s.RankedRequests("default")
	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.ProgramName
	}
	assert.Equal(t, []string{"b", "d", "c", "a"}, names)
}

func TestSnapshot_RankedRequestsUnknownChannel(t *testing.T) {
	assert.Empty(t, NewSnapshot().RankedRequests("missing"))
}

func TestSnapshot_ActiveBossLowestSeq(t *testing.T) {
	s := NewSnapshot()
	s.Bosses["default"] = map[string]*Boss{
		"late":   {Name: "Late", Seq: 9},
		"beaten": {Name: "Beaten", IsBeaten: true, Seq: 1},
		"early":  {Name: "Early", Seq: 3},
	}

	active := s.ActiveBoss("default")
	require.NotNil(t, active)
	assert.Equal(t, "Early", active.Name)
}

func TestSnapshot_ActiveBossNone(t *testing.T) {
	s := NewSnapshot()
	s.Bosses["default"] = map[string]*Boss{
		"beaten": {Name: "Beaten", IsBeaten: true},
	}
	assert.Nil(t, s.ActiveBoss("default"))
	assert.Nil(t, s.ActiveBoss("missing"))
}

func TestSnapshot_SortedReturnsCopies(t *testing.T) {
	s := sampleSnapshot()

	bosses := s.SortedBosses("default")
	require.Len(t, bosses, 1)
	bosses[0].DeathCount = 99

	channels := s.SortedChannels()
	require.Len(t, channels, 1)
	channels[0].DisplayName = "changed"

	assert.Equal(t, 4, s.Bosses["default"]["glass joe"].DeathCount)
	assert.Equal(t, "Mango", s.Channels["default"].DisplayName)
}
