package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/pscheid92/headlinepulse/internal/domain"
	"gopkg.in/yaml.v3"
)

// SourcesFile is the seed list of news outlets and their RSS feeds.
type SourcesFile struct {
	Sources []SourceConfig `yaml:"sources"`
}

type SourceConfig struct {
	Name      string   `yaml:"name"`
	URL       string   `yaml:"url"`
	Alignment string   `yaml:"alignment"`
	Feeds     []string `yaml:"feeds"`
}

// LoadSources reads and validates a sources YAML file.
func LoadSources(path string) ([]domain.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}
	return ParseSources(data)
}

func ParseSources(data []byte) ([]domain.Source, error) {
	var file SourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Sources))
	sources := make([]domain.Source, 0, len(file.Sources))
	for i, sc := range file.Sources {
		name := strings.TrimSpace(sc.Name)
		if name == "" {
			return nil, fmt.Errorf("source %d: name is required", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("source %q is listed twice", name)
		}
		seen[name] = struct{}{}

		for _, feed := range sc.Feeds {
			u, err := url.Parse(feed)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return nil, fmt.Errorf("source %q: invalid feed URL %q", name, feed)
			}
		}

		sources = append(sources, domain.Source{
			Name:      name,
			URL:       strings.TrimSpace(sc.URL),
			Alignment: strings.TrimSpace(sc.Alignment),
			FeedURLs:  sc.Feeds,
		})
	}
	return sources, nil
}
