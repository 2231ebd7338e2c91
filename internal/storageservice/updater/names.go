package updater

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

const (
	maxProfileNameCharacters = 26
	maxProfileNameBytes      = 128
)

// normalizeProfileName returns the form of a profile name that is stored
// locally, or nil when nothing is left of it.
func normalizeProfileName(s *string) *string {
	if s == nil {
		return nil
	}
	n := norm.NFC.String(*s)
	n = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, n)
	n = strings.TrimSpace(n)
	n = truncateName(n)
	if n == "" {
		return nil
	}
	return &n
}

// truncateName keeps whole grapheme clusters, at most
// maxProfileNameCharacters of them and maxProfileNameBytes in total.
func truncateName(s string) string {
	count, size := 0, 0
	rest, state := s, -1
	for rest != "" {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if count == maxProfileNameCharacters || size+len(cluster) > maxProfileNameBytes {
			return strings.TrimSpace(s[:size])
		}
		count++
		size += len(cluster)
	}
	return s
}
