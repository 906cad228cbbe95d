package store

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/giygas/medication-catalog/entities"
	"gopkg.in/yaml.v3"
)

//go:embed schema.sql
var defaultSchema string

//go:embed seed.yaml
var defaultSeed []byte

// seedFile mirrors seed.yaml.
type seedFile struct {
	Categories         []seedReference              `yaml:"categories"`
	DrugTypes          []seedReference              `yaml:"drug_types"`
	Manufacturers      []seedManufacturer           `yaml:"manufacturers"`
	AgeWeightEstimates []entities.AgeWeightEstimate `yaml:"age_weight_estimates"`
}

type seedReference struct {
	Name        string  `yaml:"name"`
	NameAr      *string `yaml:"name_ar"`
	Description *string `yaml:"description"`
}

type seedManufacturer struct {
	Name    string  `yaml:"name"`
	NameAr  *string `yaml:"name_ar"`
	Country *string `yaml:"country"`
}

// bootstrap runs the schema verbatim and loads the seed data. It only runs
// for a freshly created database file.
func (s *SQLiteStore) bootstrap(ctx context.Context, cfg Config) error {
	schema, err := loadSchema(cfg.SchemaPath)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	seed, err := loadSeed(cfg.SeedPath)
	if err != nil {
		return err
	}
	return s.applySeed(ctx, seed)
}

func loadSchema(path string) (string, error) {
	if path == "" {
		return defaultSchema, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read schema %s: %w", path, err)
	}
	return string(b), nil
}

func loadSeed(path string) (*seedFile, error) {
	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", path, err)
		}
		raw = b
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("unmarshal seed: %w", err)
	}
	return &seed, nil
}

func (s *SQLiteStore) applySeed(ctx context.Context, seed *seedFile) error {
	for _, c := range seed.Categories {
		if _, err := s.CreateCategory(ctx, &entities.Category{Name: c.Name, NameAr: c.NameAr, Description: c.Description}); err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
	}
	for _, d := range seed.DrugTypes {
		if _, err := s.CreateDrugType(ctx, &entities.DrugType{Name: d.Name, NameAr: d.NameAr, Description: d.Description}); err != nil {
			return fmt.Errorf("seed drug type %q: %w", d.Name, err)
		}
	}
	for _, m := range seed.Manufacturers {
		if _, err := s.CreateManufacturer(ctx, &entities.Manufacturer{Name: m.Name, NameAr: m.NameAr, Country: m.Country}); err != nil {
			return fmt.Errorf("seed manufacturer %q: %w", m.Name, err)
		}
	}

	for _, e := range seed.AgeWeightEstimates {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO age_weight_estimates (age_group, age_months, age_text, estimated_weight_kg) VALUES (?, ?, ?, ?)`,
			e.AgeGroup, e.AgeMonths, e.AgeText, e.EstimatedWeightKg,
		)
		if err != nil {
			return fmt.Errorf("seed age/weight estimate %q: %w", e.AgeText, err)
		}
	}

	return nil
}
