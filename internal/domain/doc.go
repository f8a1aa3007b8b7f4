// Package domain models NHTSA Fatality Analysis Reporting System (FARS) crash data.
//
// # Data Source
//
// Crash records originate from the FARS accident files published by the
// National Highway Traffic Safety Administration at
// https://www.nhtsa.gov/file-downloads?p=nhtsa/downloads/FARS/. An upstream
// ETL service parses the yearly accident CSVs, normalizes the columns listed
// below, and publishes each row as flat JSON, either to the crash-records
// Kafka topic (drained by cmd/ingest) or to a local JSON fixture file.
//
// # FARS Data Conventions
//
// Date and time:
//
//	DATE is "YYYY-MM-DD". TIME is HHMM in 24-hour notation, e.g. "1510" = 15:10.
//	Three-digit values are zero-padded: "930" becomes "0930". FARS encodes unknown
//	hour/minute as 99; the ETL emits those as "UNK", which maps to midnight.
//	All times are treated as UTC for bucketing purposes.
//
// Coordinates:
//
//	LATITUDE/LONGITUD are WGS-84 decimal degrees. FARS sentinel values for
//	missing coordinates (77.7777 not reported, 88.8888 not available,
//	99.9999 unknown, and the 7/8/9-prefixed longitude equivalents) are
//	normalized to the zero value. A record with zero coordinates is kept for
//	count aggregations but excluded from point and heat layers.
//
// Counts:
//
//	FATALS   is the number of fatalities in the crash (at least 1 in FARS).
//	DRUNK_DR is the number of drinking drivers involved.
//	PEDS     is the number of persons not in a motor vehicle.
//	PERSONS  is the total persons involved.
//	Empty or unparseable values are treated as zero.
//
// Season bucketing:
//
//	Months May through October (5-10) map to "summer", the remaining months
//	to "winter". The two-bucket split follows the riding-season convention
//	used in motorcycle-safety analyses; it is total over all twelve months.
//
// # ID Generation
//
// Record IDs are deterministic SHA-256 hashes of state|county|lat|lon|date|time.
// Re-ingesting the same row produces the same ID, so dataset files can be
// rebuilt from the topic at any time without duplicating records. See [generateID].
package domain
