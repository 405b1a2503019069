package models

import "sort"

const SnapshotVersion = 1

// Snapshot is the complete persisted state of every channel.
// Request and boss mappings are keyed by channel id, then by normalized name.
type Snapshot struct {
	Version           int                                     `json:"version"`
	NextSeq           uint64                                  `json:"nextSeq"`
	Channels          map[string]*Channel                     `json:"channels"`
	UninstallRequests map[string]map[string]*UninstallRequest `json:"uninstallRequests"`
	Bosses            map[string]map[string]*Boss             `json:"bosses"`
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Version:           SnapshotVersion,
		Channels:          make(map[string]*Channel),
		UninstallRequests: make(map[string]map[string]*UninstallRequest),
		Bosses:            make(map[string]map[string]*Boss),
	}
}

// Repair fills nil mappings and drops nil entries left by a decoded document,
// freezes the final count of beaten bosses that lack one, and moves NextSeq
// past every sequence number in use.
func (s *Snapshot) Repair() {
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	if s.Channels == nil {
		s.Channels = make(map[string]*Channel)
	}
	if s.UninstallRequests == nil {
		s.UninstallRequests = make(map[string]map[string]*UninstallRequest)
	}
	if s.Bosses == nil {
		s.Bosses = make(map[string]map[string]*Boss)
	}

	for id, ch := range s.Channels {
		if ch == nil {
			delete(s.Channels, id)
			continue
		}
		s.bump(ch.Seq)
	}
	for _, reqs := range s.UninstallRequests {
		for key, r := range reqs {
			if r == nil {
				delete(reqs, key)
				continue
			}
			s.bump(r.Seq)
		}
	}
	for _, bosses := range s.Bosses {
		for key, b := range bosses {
			if b == nil {
				delete(bosses, key)
				continue
			}
			if b.IsBeaten && b.FinalDeathCount == nil {
				final := b.DeathCount
				b.FinalDeathCount = &final
			}
			s.bump(b.Seq)
		}
	}
}

func (s *Snapshot) bump(seq uint64) {
	if seq >= s.NextSeq {
		s.NextSeq = seq + 1
	}
}

// TakeSeq returns the next creation sequence number.
func (s *Snapshot) TakeSeq() uint64 {
	seq := s.NextSeq
	s.NextSeq++
	return seq
}

// Clone returns a deep copy that shares nothing with s.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Version:           s.Version,
		NextSeq:           s.NextSeq,
		Channels:          make(map[string]*Channel, len(s.Channels)),
		UninstallRequests: make(map[string]map[string]*UninstallRequest, len(s.UninstallRequests)),
		Bosses:            make(map[string]map[string]*Boss, len(s.Bosses)),
	}
	for id, ch := range s.Channels {
		out.Channels[id] = ch.Copy()
	}
	for id, reqs := range s.UninstallRequests {
		m := make(map[string]*UninstallRequest, len(reqs))
		for key, r := range reqs {
			m[key] = r.Copy()
		}
		out.UninstallRequests[id] = m
	}
	for id, bosses := range s.Bosses {
		m := make(map[string]*Boss, len(bosses))
		for key, b := range bosses {
			m[key] = b.Copy()
		}
		out.Bosses[id] = m
	}
	return out
}

// SortedChannels returns copies of all channels in creation order.
func (s *Snapshot) SortedChannels() []*Channel {
	out := make([]*Channel, 0, len(s.Channels))
	for _, ch := range s.Channels {
		out = append(out, ch.Copy())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Seq < out[j].Seq
	})
	return out
}

// SortedBosses returns copies of the channel's bosses in creation order.
func (s *Snapshot) SortedBosses(channel string) []*Boss {
	bosses := s.Bosses[channel]
	out := make([]*Boss, 0, len(bosses))
	for _, b := range bosses {
		out = append(out, b.Copy())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Seq < out[j].Seq
	})
	return out
}

// RankedRequests returns copies of the channel's uninstall requests,
// highest count first and creation order among equal counts.
func (s *Snapshot) RankedRequests(channel string) []*UninstallRequest {
	reqs := s.UninstallRequests[channel]
	out := make([]*UninstallRequest, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Copy())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// ActiveBoss returns the unbeaten boss with the lowest sequence number.
// The result points into s.
func (s *Snapshot) ActiveBoss(channel string) *Boss {
	var active *Boss
	for _, b := range s.Bosses[channel] {
		if b.IsBeaten {
			continue
		}
		if active == nil || b.Seq < active.Seq {
			active = b
		}
	}
	return active
}
