package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Layouts SQLite hands back for TIMESTAMP columns written as text.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999 -0700 MST",
}

type timeDest struct {
	t    *time.Time
	null **time.Time
}

// Time scans a non-null timestamp regardless of whether the driver reports it as time.Time or text.
func Time(dst *time.Time) sql.Scanner { return &timeDest{t: dst} }

// NullTime scans a nullable timestamp into *dst, leaving nil for NULL.
func NullTime(dst **time.Time) sql.Scanner { return &timeDest{null: dst} }

func (d *timeDest) Scan(src any) error {
	var (
		v   time.Time
		err error
	)
	switch s := src.(type) {
	case nil:
		if d.null != nil {
			*d.null = nil
			return nil
		}
		return fmt.Errorf("store: NULL scanned into non-null timestamp")
	case time.Time:
		v = s
	case string:
		v, err = parseTime(s)
	case []byte:
		v, err = parseTime(string(s))
	default:
		return fmt.Errorf("store: cannot scan %T into timestamp", src)
	}
	if err != nil {
		return err
	}
	v = v.UTC()
	if d.null != nil {
		*d.null = &v
		return nil
	}
	*d.t = v
	return nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("store: unrecognised timestamp %q", s)
}
