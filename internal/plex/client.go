// Package plex reads TV libraries from a Plex Media Server and asks it to
// rescan series directories.
package plex

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrNoSection is returned when no library section contains a path.
var ErrNoSection = errors.New("no library section for path")

// Client talks to the Plex Media Server HTTP API.
type Client struct {
	baseURL    string
	token      string
	localPath  string // path prefix on this machine
	remotePath string // the same prefix as Plex sees it
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithPathMapping translates between local paths and the paths Plex reports,
// e.g. when Plex runs in a container.
func WithPathMapping(localPath, remotePath string) Option {
	return func(c *Client) {
		c.localPath = strings.TrimSuffix(localPath, "/")
		c.remotePath = strings.TrimSuffix(remotePath, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "plex")
	}
}

// NewClient creates a Plex client.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToLocal converts a path reported by Plex to the local path.
func (c *Client) ToLocal(p string) string {
	return swapPrefix(p, c.remotePath, c.localPath)
}

// ToRemote converts a local path to the path Plex expects.
func (c *Client) ToRemote(p string) string {
	return swapPrefix(p, c.localPath, c.remotePath)
}

func swapPrefix(p, from, to string) string {
	if from == "" || to == "" {
		return p
	}
	if p == from {
		return to
	}
	if strings.HasPrefix(p, from+"/") {
		return to + p[len(from):]
	}
	return p
}

// Section is a Plex library section.
type Section struct {
	Key       string     `xml:"key,attr"`
	Title     string     `xml:"title,attr"`
	Type      string     `xml:"type,attr"` // "show", "movie", "artist"
	Locations []Location `xml:"Location"`
}

// Location is a folder a section is built from.
type Location struct {
	Path string `xml:"path,attr"`
}

type sectionsResponse struct {
	XMLName  xml.Name  `xml:"MediaContainer"`
	Sections []Section `xml:"Directory"`
}

// Show is a TV show in a Plex library.
type Show struct {
	RatingKey string     `xml:"ratingKey,attr"`
	Title     string     `xml:"title,attr"`
	Year      int        `xml:"year,attr"`
	GUID      string     `xml:"guid,attr"` // agent guid, e.g. com.plexapp.agents.thetvdb://73739?lang=en
	GUIDs     []GUID     `xml:"Guid"`      // new agent ids, e.g. tvdb://73739
	Locations []Location `xml:"Location"`
}

// GUID is an external id attached to a show by the Plex agent.
type GUID struct {
	ID string `xml:"id,attr"`
}

type showsResponse struct {
	XMLName xml.Name `xml:"MediaContainer"`
	Shows   []Show   `xml:"Directory"`
}

var legacyTVDBRegex = regexp.MustCompile(`^com\.plexapp\.agents\.thetvdb://(\d+)`)

// TVDBID returns the show's TVDB id, or 0 when it has none.
func (s Show) TVDBID() int64 {
	for _, g := range s.GUIDs {
		if rest, ok := strings.CutPrefix(g.ID, "tvdb://"); ok {
			if id, err := strconv.ParseInt(rest, 10, 64); err == nil && id > 0 {
				return id
			}
		}
	}
	if m := legacyTVDBRegex.FindStringSubmatch(s.GUID); m != nil {
		id, _ := strconv.ParseInt(m[1], 10, 64)
		return id
	}
	return 0
}

// Identity holds Plex server identity information.
type Identity struct {
	Name    string `xml:"friendlyName,attr"`
	Version string `xml:"version,attr"`
}

func (c *Client) request(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("plex %s: unexpected status: %d", endpoint, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Identity returns the Plex server name and version.
func (c *Client) Identity(ctx context.Context) (*Identity, error) {
	var id Identity
	if err := c.request(ctx, "/", &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// Sections returns all library sections.
func (c *Client) Sections(ctx context.Context) ([]Section, error) {
	var result sectionsResponse
	if err := c.request(ctx, "/library/sections", &result); err != nil {
		return nil, err
	}
	return result.Sections, nil
}

// Shows returns the shows of a section, including their external ids.
func (c *Client) Shows(ctx context.Context, sectionKey string) ([]Show, error) {
	var result showsResponse
	endpoint := "/library/sections/" + url.PathEscape(sectionKey) + "/all?type=2&includeGuids=1"
	if err := c.request(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	return result.Shows, nil
}

// ScanPath asks Plex to rescan a local directory, e.g. after a theme was added.
func (c *Client) ScanPath(ctx context.Context, dir string) error {
	remote := c.ToRemote(dir)

	sections, err := c.Sections(ctx)
	if err != nil {
		return fmt.Errorf("get sections: %w", err)
	}

	var key string
	for _, sec := range sections {
		for _, loc := range sec.Locations {
			if remote == loc.Path || strings.HasPrefix(remote, strings.TrimSuffix(loc.Path, "/")+"/") {
				key = sec.Key
				break
			}
		}
		if key != "" {
			break
		}
	}
	if key == "" {
		return fmt.Errorf("%w: %s (plex path %s)", ErrNoSection, dir, remote)
	}

	start := time.Now()
	endpoint := "/library/sections/" + url.PathEscape(key) + "/refresh?path=" + url.QueryEscape(path.Clean(remote))
	if err := c.request(ctx, endpoint, nil); err != nil {
		return fmt.Errorf("scan %s: %w", remote, err)
	}

	c.log.Debug("scan triggered", "section", key, "path", remote, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
