package areas

import (
	"errors"
	"fmt"
	"os"
	"parcel-booking-service/internal/domain"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is an immutable, in-memory list of covered districts.
type Catalog struct {
	areas     []domain.ServiceArea
	districts map[string]struct{}
}

func NewCatalog(areas []domain.ServiceArea) *Catalog {
	c := &Catalog{
		areas:     areas,
		districts: make(map[string]struct{}, len(areas)),
	}
	for _, a := range areas {
		c.districts[a.District] = struct{}{}
	}
	return c
}

// LoadYAML reads a coverage file. A missing file yields an empty catalog,
// which covers every district.
func LoadYAML(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewCatalog(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load service areas: read %q: %w", path, err)
	}

	var doc struct {
		Areas []domain.ServiceArea `yaml:"areas"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("load service areas: parse %q: %w", path, err)
	}

	for i, a := range doc.Areas {
		if strings.TrimSpace(a.District) == "" || strings.TrimSpace(a.Region) == "" {
			return nil, fmt.Errorf("load service areas: entry %d: region and district are required", i+1)
		}
	}

	return NewCatalog(doc.Areas), nil
}

func (c *Catalog) Areas() []domain.ServiceArea {
	out := make([]domain.ServiceArea, len(c.areas))
	copy(out, c.areas)
	return out
}

func (c *Catalog) Covers(district string) bool {
	if len(c.districts) == 0 {
		return true
	}
	_, ok := c.districts[district]
	return ok
}
