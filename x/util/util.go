package util

import (
	"encoding/json"
	"time"
)

func ResetTimer(t *time.Timer, d time.Duration) {
	if d < 0 {
		d = 0
	}
	if !t.Stop() {
		DrainTimer(t)
	}
	t.Reset(d)
}

func DrainTimer(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}

// Decode converts a bus payload into T. A T or *T is used as-is; raw JSON
// ([]byte or string) is unmarshalled; anything else (typically a
// map[string]any from a config document) is round-tripped through JSON.
func Decode[T any](src any) (T, error) {
	var dst T
	switch v := src.(type) {
	case nil:
		return dst, nil
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
		return dst, nil
	case []byte:
		err := json.Unmarshal(v, &dst)
		return dst, err
	case string:
		err := json.Unmarshal([]byte(v), &dst)
		return dst, err
	}
	b, err := json.Marshal(src)
	if err != nil {
		return dst, err
	}
	err = json.Unmarshal(b, &dst)
	return dst, err
}
