package library

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// {tvdb-73739}, [tvdbid-73739], [tvdb=73739]
	tvdbTagRegex = regexp.MustCompile(`(?i)[\[{]\s*tvdb(?:id)?\s*[-=:]\s*(\d+)\s*[\]}]`)
	// any other bracketed id tag, e.g. {imdb-tt0411008}
	otherTagRegex = regexp.MustCompile(`[\[{][^\]}]*[\]}]`)
	// trailing (2004)
	yearRegex = regexp.MustCompile(`\((\d{4})\)\s*$`)
)

// DirName is what can be read from a series directory name.
type DirName struct {
	Title  string
	Year   int
	TVDBID int64 // 0 when the name carries no tag
}

// ParseDirName extracts title, year and TVDB tag from a directory name such as
// "Lost (2004) {tvdb-73739}".
func ParseDirName(name string) DirName {
	var d DirName

	if m := tvdbTagRegex.FindStringSubmatch(name); m != nil {
		d.TVDBID, _ = strconv.ParseInt(m[1], 10, 64)
	}

	rest := otherTagRegex.ReplaceAllString(name, " ")
	rest = strings.TrimSpace(rest)

	if m := yearRegex.FindStringSubmatchIndex(rest); m != nil {
		year, _ := strconv.Atoi(rest[m[2]:m[3]])
		if year >= 1900 && year <= 2200 {
			d.Year = year
			rest = rest[:m[0]]
		}
	}

	d.Title = strings.Join(strings.Fields(rest), " ")
	if d.Title == "" {
		d.Title = strings.TrimSpace(name)
	}
	return d
}
