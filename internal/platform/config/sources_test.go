package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pscheid92/headlinepulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSources(t *testing.T) {
	data := []byte(`
sources:
  - name: New York Times
    url: nytimes.com
    alignment: left
    feeds:
      - https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml
  - name: Wall Street Journal
    url: wsj.com
    alignment: right
    feeds:
      - https://feeds.a.dj.com/rss/RSSMarketsMain.xml
      - https://feeds.a.dj.com/rss/RSSWorldNews.xml
`)

	sources, err := ParseSources(data)

	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, domain.Source{
		Name:      "New York Times",
		URL:       "nytimes.com",
		Alignment: "left",
		FeedURLs:  []string{"https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml"},
	}, sources[0])
	assert.Len(t, sources[1].FeedURLs, 2)
}

func TestParseSources_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "sources: [unterminated"},
		{"missing name", "sources:\n  - url: example.com\n"},
		{"duplicate", "sources:\n  - name: A\n  - name: A\n"},
		{"bad feed", "sources:\n  - name: A\n    feeds: [\"ftp://example.com/feed\"]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSources([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadSources_RepositoryFile(t *testing.T) {
	sources, err := LoadSources(filepath.Join("..", "..", "..", "sources.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, sources)
}

func TestLoadSources_MissingFile(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
