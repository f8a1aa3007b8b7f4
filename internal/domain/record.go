package domain

import (
	"context"
	"time"
)

// RawCrashRow represents the flat JSON structure produced by the upstream ETL,
// one object per FARS accident row. All values are strings as they appear in
// the source CSV; parsing and normalization happen in ParseRawRow.
type RawCrashRow struct {
	CaseID      string `json:"ST_CASE"`
	Date        string `json:"DATE"` // YYYY-MM-DD
	Time        string `json:"TIME"` // HHMM 24-hour, "UNK" when FARS hour/minute is 99
	State       string `json:"STATE"`
	County      string `json:"COUNTY"`
	Lat         string `json:"LATITUDE"`
	Lon         string `json:"LONGITUD"`
	Fatalities  string `json:"FATALS"`
	DrunkDrv    string `json:"DRUNK_DR"`
	Pedestrians string `json:"PEDS"`
	Persons     string `json:"PERSONS"`
}

// RawMessage represents an unprocessed message from the crash-records topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
// The zero value marks missing coordinates.
type Geo struct {
	Lat float64 `json:"lat,omitempty"`
	Lon float64 `json:"lon,omitempty"`
}

// IsZero reports whether the coordinates are missing.
func (g Geo) IsZero() bool {
	return g.Lat == 0 && g.Lon == 0
}

// Season is the two-bucket seasonal classification of a crash month.
type Season string

const (
	SeasonSummer Season = "summer" // May through October
	SeasonWinter Season = "winter" // November through April
)

// CrashRecord is the domain-rich representation of one fatal crash.
// Records are immutable once built; every visualization consumes a
// read-only snapshot of the loaded set.
type CrashRecord struct {
	ID          string     `json:"id"`
	CaseID      string     `json:"case_id"`
	CrashTime   time.Time  `json:"crash_time"`
	Year        int        `json:"year"`
	Month       time.Month `json:"month"`
	Season      Season     `json:"season"`
	Geo         Geo        `json:"geo,omitempty"`
	State       string     `json:"state"`
	County      string     `json:"county,omitempty"`
	Fatalities  int        `json:"fatalities"`
	DrunkDrv    int        `json:"drunk_drivers"`
	Pedestrians int        `json:"pedestrians"`
	Persons     int        `json:"persons"`

	ProcessedAt time.Time `json:"processed_at"`
}
