package models

import (
	"bytes"
	"fmt"
	json "github.com/goccy/go-json"
	"sort"
)

// LegacyStorage is the single-channel document written before channels
// existed. It carries no version field.
type LegacyStorage struct {
	UninstallRequests map[string]*UninstallRequest `json:"uninstallRequests"`
	Bosses            map[string]*Boss             `json:"bosses"`

	requestOrder []string
	bossOrder    []string
}

// UnmarshalJSON also records the order in which keys appear in the
// document; the legacy active boss is the first unbeaten one in that order.
func (l *LegacyStorage) UnmarshalJSON(data []byte) error {
	var doc struct {
		UninstallRequests json.RawMessage `json:"uninstallRequests"`
		Bosses            json.RawMessage `json:"bosses"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	var err error
	if l.UninstallRequests, l.requestOrder, err = decodeOrdered[*UninstallRequest](doc.UninstallRequests); err != nil {
		return fmt.Errorf("uninstallRequests: %w", err)
	}
	if l.Bosses, l.bossOrder, err = decodeOrdered[*Boss](doc.Bosses); err != nil {
		return fmt.Errorf("bosses: %w", err)
	}
	return nil
}

// decodeOrdered decodes a JSON object into a map and returns its keys in
// document order. A missing or null object yields an empty map.
func decodeOrdered[V any](raw json.RawMessage) (map[string]V, []string, error) {
	out := make(map[string]V)
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return out, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	var order []string
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected key, got %v", tok)
		}
		var v V
		if err = dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("%q: %w", key, err)
		}
		if _, seen := out[key]; !seen {
			order = append(order, key)
		}
		out[key] = v
	}
	return out, order, nil
}

// Migrate moves the legacy document into the default channel of a fresh
// snapshot. Sequence numbers follow document order; entries without a
// recorded position come after, in key order.
func (l *LegacyStorage) Migrate() *Snapshot {
	snap := NewSnapshot()
	snap.Channels[DefaultChannel] = &Channel{
		ID:          DefaultChannel,
		DisplayName: DefaultChannel,
		IsDefault:   true,
		Seq:         snap.TakeSeq(),
	}

	reqs := make(map[string]*UninstallRequest, len(l.UninstallRequests))
	for _, key := range orderedKeys(l.requestOrder, l.UninstallRequests) {
		r := l.UninstallRequests[key]
		if r == nil {
			continue
		}
		cp := r.Copy()
		cp.Seq = snap.TakeSeq()
		reqs[NormalizeName(key)] = cp
	}
	snap.UninstallRequests[DefaultChannel] = reqs

	bosses := make(map[string]*Boss, len(l.Bosses))
	for _, key := range orderedKeys(l.bossOrder, l.Bosses) {
		b := l.Bosses[key]
		if b == nil {
			continue
		}
		cp := b.Copy()
		cp.Seq = snap.TakeSeq()
		bosses[NormalizeName(key)] = cp
	}
	snap.Bosses[DefaultChannel] = bosses

	return snap
}

func orderedKeys[V any](order []string, m map[string]V) []string {
	keys := make([]string, 0, len(m))
	placed := make(map[string]struct{}, len(m))
	for _, k := range order {
		if _, ok := m[k]; !ok {
			continue
		}
		if _, dup := placed[k]; dup {
			continue
		}
		placed[k] = struct{}{}
		keys = append(keys, k)
	}

	var rest []string
	for k := range m {
		if _, ok := placed[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
