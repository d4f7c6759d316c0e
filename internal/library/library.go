// Package library tracks the TV series directories themes are downloaded into.
package library

import "time"

// Series is one show directory under a library root.
type Series struct {
	ID        int64
	Title     string
	Year      int    // 0 when unknown
	TVDBID    *int64 // nil until the series is tagged or resolved
	RootPath  string // the series directory itself
	AddedAt   time.Time
	UpdatedAt time.Time
}

// SeriesFilter specifies criteria for listing series.
type SeriesFilter struct {
	TVDBID    *int64
	HasTVDBID *bool
	Title     *string
	Limit     int // 0 = no limit
	Offset    int
}
