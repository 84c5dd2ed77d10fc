package feed

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed describes one feed to register at startup.
type Seed struct {
	URL      string `yaml:"url"`
	MaxPosts int    `yaml:"max_posts"`
}

type seedsFile struct {
	Feeds []Seed `yaml:"feeds"`
}

// LoadSeeds reads the seeds file. A missing file is not an error;
// seeding is optional.
func LoadSeeds(path string) ([]Seed, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read seeds file: %w", err)
	}

	var parsed seedsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse seeds file: %w", err)
	}

	seeds := make([]Seed, 0, len(parsed.Feeds))
	for i, seed := range parsed.Feeds {
		if seed.URL == "" {
			return nil, fmt.Errorf("seed %d has no url", i)
		}
		seeds = append(seeds, seed)
	}

	return seeds, nil
}

// RegisterSeeds creates or updates a feed per seed. Failures are
// logged and skipped so one unreachable source does not block startup.
func (m *Manager) RegisterSeeds(ctx context.Context, seeds []Seed) int {
	registered := 0
	for _, seed := range seeds {
		record, created, err := m.CreateOrUpdate(ctx, seed.URL, seed.MaxPosts)
		if err != nil {
			slog.Warn("Failed to register seed feed", "url", seed.URL, "error", err)
			continue
		}
		slog.Info("Registered seed feed", "id", record.ID, "url", seed.URL, "created", created)
		registered++
	}
	return registered
}
