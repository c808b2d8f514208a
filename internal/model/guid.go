package model

import (
	"strconv"
	"strings"
)

// NormalizeGUID canonicalizes a NodeGUID per §3/§4.3:
//  1. trim whitespace
//  2. empty or na|none|null (case-insensitive) -> ""
//  3. "0x..." (any case) with hex remainder -> lower hex, 0x-prefixed, no
//     leading zeros
//  4. else all-hex -> same canonical form
//  5. else all-decimal -> parsed and re-emitted as hex
//  6. else -> lowercased input, unchanged
func NormalizeGUID(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	low := strings.ToLower(s)
	switch low {
	case "na", "none", "null":
		return ""
	}

	if len(low) > 2 && low[:2] == "0x" {
		rest := low[2:]
		if v, ok := parseHexDigits(rest); ok {
			return canonicalHex(v)
		}
		return low
	}
	if v, ok := parseHexDigits(low); ok {
		return canonicalHex(v)
	}
	if v, err := strconv.ParseUint(low, 10, 64); err == nil {
		return canonicalHex(v)
	}
	return low
}

func canonicalHex(v uint64) string {
	return "0x" + strconv.FormatUint(v, 16)
}

func parseHexDigits(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NormalizePort coerces a raw PortNumber cell via int(float(value)); empty
// or NaN becomes (0, false) — callers treat a not-ok port as node-scope
// (port 0), per §4.4.
func NormalizePort(c Cell) (int, bool) {
	f, ok := c.AsFloat()
	if !ok {
		return 0, false
	}
	return int(f), true
}
