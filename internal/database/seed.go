package database

import (
	"context"
	"fmt"
	"os"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

// Seed is the optional initial data for an empty database.
type Seed struct {
	Users []SeedUser `yaml:"users"`
}

type SeedUser struct {
	Name  string     `yaml:"name"`
	Email string     `yaml:"email"`
	Items []SeedItem `yaml:"items"`
}

type SeedItem struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Available   bool   `yaml:"available"`
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &seed, nil
}

// ApplySeed inserts the seed only when there are no users yet.
// Returns the number of users created.
func (db *DB) ApplySeed(ctx context.Context, seed *Seed, logger *zerolog.Logger) (int, error) {
	existing, err := db.GetAllUsers(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		logger.Debug().Int("users", len(existing)).Msg("database not empty, seed skipped")
		return 0, nil
	}

	created := 0
	for _, su := range seed.Users {
		user := &models.User{Name: su.Name, Email: su.Email}
		if err := db.CreateUser(ctx, user); err != nil {
			return created, fmt.Errorf("seed user %s: %w", su.Email, err)
		}
		created++
		for _, si := range su.Items {
			item := &models.Item{Name: si.Name, Description: si.Description, Available: si.Available, OwnerID: user.ID}
			if err := db.CreateItem(ctx, item); err != nil {
				return created, fmt.Errorf("seed item %s: %w", si.Name, err)
			}
		}
	}
	logger.Info().Int("users", created).Msg("seed applied")
	return created, nil
}
