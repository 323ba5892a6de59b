package token

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Version is the tokenVersion claim. Decoding never fails: an absent,
// negative, non-numeric or unparseable value becomes 0.
type Version int64

func (v *Version) UnmarshalJSON(data []byte) error {
	*v = 0

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil
	}

	switch x := raw.(type) {
	case json.Number:
		*v = parseVersion(x.String())
	case string:
		*v = parseVersion(strings.TrimSpace(x))
	}
	return nil
}

func parseVersion(s string) Version {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0
		}
		return Version(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0
	}
	return Version(f)
}
