package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// FlexTime wraps time.Time so we can control both JSON un/marshaling and
// SQL driver encoding. Mobile clients submit timestamps in several shapes
// (RFC3339, millisecond and microsecond local forms), all of which must
// round-trip through the API.
type FlexTime time.Time

// flexLayouts are tried in order after the RFC3339 variants.
var flexLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseFlexTime parses any of the accepted timestamp shapes.
func ParseFlexTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range flexLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}

func (ft *FlexTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	t, err := ParseFlexTime(s)
	if err != nil {
		return fmt.Errorf("FlexTime.UnmarshalJSON: %w", err)
	}
	*ft = FlexTime(t)
	return nil
}

// MarshalJSON always emits full RFC3339.
func (ft FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(ft).Format(time.RFC3339))
}

// Value implements driver.Valuer so GORM/pgx can turn FlexTime into a SQL
// TIMESTAMPTZ parameter.
func (ft FlexTime) Value() (driver.Value, error) {
	return time.Time(ft), nil
}

// Scan implements sql.Scanner so GORM can read TIMESTAMPTZ back into
// FlexTime when querying.
func (ft *FlexTime) Scan(src interface{}) error {
	if src == nil {
		*ft = FlexTime(time.Time{})
		return nil
	}

	switch v := src.(type) {
	case time.Time:
		*ft = FlexTime(v)
		return nil
	case []byte:
		t, err := ParseFlexTime(string(v))
		if err != nil {
			return fmt.Errorf("FlexTime.Scan: %w", err)
		}
		*ft = FlexTime(t)
		return nil
	case string:
		t, err := ParseFlexTime(v)
		if err != nil {
			return fmt.Errorf("FlexTime.Scan: %w", err)
		}
		*ft = FlexTime(t)
		return nil
	default:
		return fmt.Errorf("FlexTime.Scan: unsupported type %T", src)
	}
}

func (ft FlexTime) Time() time.Time { return time.Time(ft) }
