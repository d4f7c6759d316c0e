package plex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sectionsXML = `<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer size="2">
  <Directory key="1" title="Movies" type="movie">
    <Location id="1" path="/data/movies"/>
  </Directory>
  <Directory key="2" title="TV Shows" type="show">
    <Location id="2" path="/data/tv"/>
  </Directory>
</MediaContainer>`

const showsXML = `<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer size="3">
  <Directory ratingKey="101" title="Lost" year="2004" guid="plex://show/5d9c086c">
    <Guid id="imdb://tt0411008"/>
    <Guid id="tvdb://73739"/>
    <Location path="/data/tv/Lost (2004)"/>
  </Directory>
  <Directory ratingKey="102" title="Firefly" year="2002" guid="com.plexapp.agents.thetvdb://78874?lang=en">
    <Location path="/data/tv/Firefly"/>
  </Directory>
  <Directory ratingKey="103" title="Home Videos" guid="local://103">
    <Location path="/data/tv/Home Videos"/>
  </Directory>
</MediaContainer>`

func plexServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Plex-Token") != "test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if h, ok := handlers[r.URL.Path]; ok {
			h(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func xmlBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(body))
	}
}

func TestClient_Identity(t *testing.T) {
	srv := plexServer(t, map[string]http.HandlerFunc{
		"/": xmlBody(`<MediaContainer friendlyName="media" version="1.40.0"/>`),
	})

	id, err := NewClient(srv.URL, "test-token").Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "media", id.Name)
	assert.Equal(t, "1.40.0", id.Version)
}

func TestClient_Unauthorized(t *testing.T) {
	srv := plexServer(t, nil)

	_, err := NewClient(srv.URL, "bad-token").Sections(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_Sections(t *testing.T) {
	srv := plexServer(t, map[string]http.HandlerFunc{
		"/library/sections": xmlBody(sectionsXML),
	})

	sections, err := NewClient(srv.URL+"/", "test-token").Sections(context.Background())
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "2", sections[1].Key)
	assert.Equal(t, "show", sections[1].Type)
	require.Len(t, sections[1].Locations, 1)
	assert.Equal(t, "/data/tv", sections[1].Locations[0].Path)
}

func TestClient_Shows(t *testing.T) {
	srv := plexServer(t, map[string]http.HandlerFunc{
		"/library/sections/2/all": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1", r.URL.Query().Get("includeGuids"))
			xmlBody(showsXML)(w, r)
		},
	})

	shows, err := NewClient(srv.URL, "test-token").Shows(context.Background(), "2")
	require.NoError(t, err)
	require.Len(t, shows, 3)

	assert.Equal(t, "Lost", shows[0].Title)
	assert.Equal(t, 2004, shows[0].Year)
	assert.Equal(t, int64(73739), shows[0].TVDBID())
	assert.Equal(t, int64(78874), shows[1].TVDBID(), "legacy agent guid")
	assert.Zero(t, shows[2].TVDBID())
}

func TestShow_TVDBID(t *testing.T) {
	tests := []struct {
		name string
		show Show
		want int64
	}{
		{"guid element", Show{GUIDs: []GUID{{ID: "tvdb://81189"}}}, 81189},
		{"legacy agent", Show{GUID: "com.plexapp.agents.thetvdb://81189?lang=en"}, 81189},
		{"prefers guid element", Show{GUID: "com.plexapp.agents.thetvdb://1", GUIDs: []GUID{{ID: "tvdb://2"}}}, 2},
		{"other agents only", Show{GUID: "com.plexapp.agents.themoviedb://1396", GUIDs: []GUID{{ID: "tmdb://1396"}}}, 0},
		{"malformed", Show{GUIDs: []GUID{{ID: "tvdb://abc"}}}, 0},
		{"zero", Show{GUIDs: []GUID{{ID: "tvdb://0"}}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.show.TVDBID())
		})
	}
}

func TestClient_PathMapping(t *testing.T) {
	c := NewClient("http://plex", "t", WithPathMapping("/mnt/media/", "/data"))

	assert.Equal(t, "/data/tv/Lost", c.ToRemote("/mnt/media/tv/Lost"))
	assert.Equal(t, "/mnt/media/tv/Lost", c.ToLocal("/data/tv/Lost"))
	assert.Equal(t, "/data", c.ToRemote("/mnt/media"))
	assert.Equal(t, "/mnt/mediaextra/x", c.ToRemote("/mnt/mediaextra/x"), "prefix must end at a path boundary")
	assert.Equal(t, "/elsewhere", c.ToLocal("/elsewhere"))

	plain := NewClient("http://plex", "t")
	assert.Equal(t, "/mnt/media/tv", plain.ToRemote("/mnt/media/tv"))
}

func TestClient_ScanPath(t *testing.T) {
	var gotPath string
	srv := plexServer(t, map[string]http.HandlerFunc{
		"/library/sections": xmlBody(sectionsXML),
		"/library/sections/2/refresh": func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Query().Get("path")
			w.WriteHeader(http.StatusOK)
		},
	})

	c := NewClient(srv.URL, "test-token", WithPathMapping("/srv/tv", "/data/tv"))
	require.NoError(t, c.ScanPath(context.Background(), "/srv/tv/Lost (2004)"))
	assert.Equal(t, "/data/tv/Lost (2004)", gotPath)
}

func TestClient_ScanPath_NoSection(t *testing.T) {
	srv := plexServer(t, map[string]http.HandlerFunc{
		"/library/sections": xmlBody(sectionsXML),
	})

	err := NewClient(srv.URL, "test-token").ScanPath(context.Background(), "/data/tvshows/Lost")
	require.ErrorIs(t, err, ErrNoSection)
}

func TestClient_ScanPath_RefreshFails(t *testing.T) {
	srv := plexServer(t, map[string]http.HandlerFunc{
		"/library/sections": xmlBody(sectionsXML),
		"/library/sections/2/refresh": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	})

	err := NewClient(srv.URL, "test-token").ScanPath(context.Background(), "/data/tv/Lost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
