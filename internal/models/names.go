package models

import "strings"

const DefaultChannel = "default"

// NormalizeName returns the identity key for a program or boss name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DisplayName returns the stored display form of a name.
func DisplayName(name string) string {
	return strings.TrimSpace(name)
}

// ChannelKey maps a caller supplied channel id to its storage key.
// An empty id resolves to DefaultChannel.
func ChannelKey(id string) string {
	key := strings.ToLower(strings.TrimSpace(id))
	if key == "" {
		return DefaultChannel
	}
	return key
}
