// Package tvdb provides a client for the series search of the TVDB API v4.
package tvdb

// SearchResult represents a series search result.
type SearchResult struct {
	ID      int64  `json:"tvdb_id"`
	Name    string `json:"name"`
	Year    int    `json:"year"`
	Network string `json:"network,omitempty"`
	// Aliases are alternative titles, e.g. translations.
	Aliases []string `json:"aliases,omitempty"`
}

type envelope[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
}

type loginData struct {
	Token string `json:"token"`
}

type searchItem struct {
	ObjectID string   `json:"objectID"`
	Name     string   `json:"name"`
	Year     string   `json:"year"`
	Network  string   `json:"network"`
	TVDBID   string   `json:"tvdb_id"`
	Aliases  []string `json:"aliases"`
}
