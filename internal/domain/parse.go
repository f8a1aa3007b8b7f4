package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseRawRow converts a flat ETL row into a CrashRecord. The crash date is
// required; a row without a parseable date is a schema mismatch and fails the
// load. Everything else degrades to zero values, matching how FARS encodes
// unknowns.
func ParseRawRow(row RawCrashRow) (CrashRecord, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(row.Date))
	if err != nil {
		return CrashRecord{}, fmt.Errorf("parse crash date %q: %w", row.Date, err)
	}

	geo := normalizeCoordinates(parseFloatOrZero(row.Lat), parseFloatOrZero(row.Lon))
	crashTime := parseHHMM(date, row.Time)

	rec := CrashRecord{
		ID:          generateID(row.State, row.County, geo.Lat, geo.Lon, row.Date, row.Time),
		CaseID:      strings.TrimSpace(row.CaseID),
		CrashTime:   crashTime,
		Geo:         geo,
		State:       strings.TrimSpace(row.State),
		County:      strings.TrimSpace(row.County),
		Fatalities:  parseIntOrZero(row.Fatalities),
		DrunkDrv:    parseIntOrZero(row.DrunkDrv),
		Pedestrians: parseIntOrZero(row.Pedestrians),
		Persons:     parseIntOrZero(row.Persons),
	}

	return DeriveCalendar(rec), nil
}

// DeriveCalendar fills the derived calendar fields (year, month, season) from
// the crash time and stamps the record. Idempotent: re-deriving an already
// derived record yields the same values.
func DeriveCalendar(rec CrashRecord) CrashRecord {
	rec.Year = rec.CrashTime.Year()
	rec.Month = rec.CrashTime.Month()
	rec.Season = SeasonOf(rec.Month)
	rec.ProcessedAt = clock.Now()
	return rec
}

// SeasonOf maps a month to its season bucket: May through October (5-10
// inclusive) is summer, everything else winter. Total over all twelve months.
func SeasonOf(m time.Month) Season {
	if m >= time.May && m <= time.October {
		return SeasonSummer
	}
	return SeasonWinter
}

// FilterYear returns the subset of records whose derived year equals year.
// Input order is preserved; the input slice is not modified.
func FilterYear(records []CrashRecord, year int) []CrashRecord {
	out := make([]CrashRecord, 0, len(records))
	for _, rec := range records {
		if rec.Year == year {
			out = append(out, rec)
		}
	}
	return out
}

// normalizeCoordinates clears FARS missing-coordinate sentinels. Latitude
// sentinels are 77.7777, 88.8888, 99.9999; longitude uses the same digits
// with an extra leading 7/8/9 (777.7777 etc.) and may be negated.
func normalizeCoordinates(lat, lon float64) Geo {
	switch lat {
	case 77.7777, 88.8888, 99.9999:
		return Geo{}
	}
	switch lon {
	case 777.7777, 888.8888, 999.9999, -777.7777, -888.8888, -999.9999:
		return Geo{}
	}
	return Geo{Lat: lat, Lon: lon}
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseIntOrZero parses a string as int, returning 0 on failure or "UNK".
func parseIntOrZero(s string) int {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "UNK") {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

// parseHHMM combines a base date with an HHMM time string (e.g. "1510" is 15:10).
// "UNK", empty, and malformed values fall back to midnight on the base date.
func parseHHMM(baseDate time.Time, hhmm string) time.Time {
	hhmm = strings.TrimSpace(hhmm)
	if len(hhmm) < 3 || strings.EqualFold(hhmm, "UNK") {
		return baseDate
	}
	if len(hhmm) == 3 {
		hhmm = "0" + hhmm
	}

	hour, errH := strconv.Atoi(hhmm[:2])
	mins, errM := strconv.Atoi(hhmm[2:])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || mins < 0 || mins > 59 {
		return baseDate
	}

	return time.Date(
		baseDate.Year(), baseDate.Month(), baseDate.Day(),
		hour, mins, 0, 0, time.UTC,
	)
}

// generateID produces a deterministic ID from the record's key fields.
// Re-ingesting the same raw row produces the same ID, so topic replays and
// dataset rebuilds stay idempotent.
func generateID(state, county string, lat, lon float64, date, timeStr string) string {
	input := fmt.Sprintf("%s|%s|%.4f|%.4f|%s|%s", state, county, lat, lon, date, timeStr)
	hash := sha256.Sum256([]byte(input))
	return "crash-" + hex.EncodeToString(hash[:8])
}
