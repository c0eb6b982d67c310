// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package node

import (
	"strings"
)

// Target is what an external display id resolves to.
type Target string

const (
	TargetLoad      Target = "load"
	TargetDate      Target = "date"
	TargetVariation Target = "variation"
	TargetBox       Target = "box"
)

// Prefixes maps the first letter of an external display id to its target.
var Prefixes = map[byte]Target{
	'L': TargetLoad,
	'D': TargetDate,
	'V': TargetVariation,
	'B': TargetBox,
}

// PrefixOf returns the prefix letter used for kind's external ids, if any.
func PrefixOf(kind Kind) (byte, bool) {
	for prefix, target := range Prefixes {
		if string(target) == string(kind) {
			return prefix, true
		}
	}
	return 0, false
}

// RouteDisplayID normalizes raw (trimmed, upper-cased) and reports which
// table it names. ok is false for an empty id or an unknown prefix.
func RouteDisplayID(raw string) (string, Target, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if len(normalized) < 2 {
		return normalized, "", false
	}

	target, ok := Prefixes[normalized[0]]
	return normalized, target, ok
}
