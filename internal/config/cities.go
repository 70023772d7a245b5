package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed cities.yaml
var builtinCities []byte

// City is a selectable birth place.
type City struct {
	Name      string   `yaml:"name" json:"name"`
	Aliases   []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Longitude float64  `yaml:"longitude" json:"longitude"`
	Latitude  float64  `yaml:"latitude" json:"latitude"`
	UTCOffset string   `yaml:"utc_offset" json:"utc_offset"`
}

// Offset parses UTCOffset.
func (c City) Offset() (time.Duration, error) {
	return ParseUTCOffset(c.UTCOffset)
}

// cityFile mirrors the YAML document layout.
type cityFile struct {
	Cities []City `yaml:"cities"`
}

// CityTable resolves city names and aliases to places. It is read-only
// once loaded and safe for concurrent use.
type CityTable struct {
	cities []City
	index  map[string]int
}

// LoadCities builds the table from the embedded list, then applies the
// optional overlay file. Overlay entries with a known name replace the
// built-in entry; others are appended.
func LoadCities(overlayPath string) (*CityTable, error) {
	base, err := ParseCities(builtinCities)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrCitiesLoad, err)
	}
	t := newCityTable(base)

	if overlayPath != "" {
		data, err := os.ReadFile(overlayPath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrCitiesLoad, err)
		}
		extra, err := ParseCities(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", ErrCitiesLoad, overlayPath, err)
		}
		for _, c := range extra {
			t.put(c)
		}
	}

	slog.Debug(MsgCitiesLoaded,
		LogKeyComponent, CompConfig,
		LogKeyCount, len(t.cities),
		LogKeyFile, overlayPath,
	)
	return t, nil
}

// ParseCities decodes and validates a city YAML document.
func ParseCities(data []byte) ([]City, error) {
	var f cityFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for i, c := range f.Cities {
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("%s #%d: %w", ErrCityInvalid, i+1, err)
		}
	}
	return f.Cities, nil
}

// validate checks the name, the coordinate ranges and the offset string.
func (c City) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name is empty")
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%s: longitude %v out of range", c.Name, c.Longitude)
	}
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%s: latitude %v out of range", c.Name, c.Latitude)
	}
	if _, err := c.Offset(); err != nil {
		return fmt.Errorf("%s: %w", c.Name, err)
	}
	return nil
}

func newCityTable(cities []City) *CityTable {
	t := &CityTable{index: make(map[string]int, len(cities)*2)}
	for _, c := range cities {
		t.put(c)
	}
	return t
}

// put adds c, or replaces the entry of the same name in place; its aliases
// are indexed either way.
func (t *CityTable) put(c City) {
	key := normalizeCity(c.Name)
	i, ok := t.index[key]
	if ok {
		t.cities[i] = c
	} else {
		i = len(t.cities)
		t.cities = append(t.cities, c)
		t.index[key] = i
	}
	for _, a := range c.Aliases {
		t.index[normalizeCity(a)] = i
	}
}

// Lookup finds a city by name or alias, ignoring case and surrounding space.
func (t *CityTable) Lookup(name string) (City, bool) {
	i, ok := t.index[normalizeCity(name)]
	if !ok {
		return City{}, false
	}
	return t.cities[i], true
}

// All returns the cities in file order.
func (t *CityTable) All() []City {
	out := make([]City, len(t.cities))
	copy(out, t.cities)
	return out
}

func normalizeCity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseUTCOffset accepts "+08:00", "-0530", "+8", "UTC+08:00" and "Z".
func ParseUTCOffset(s string) (time.Duration, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimPrefix(strings.TrimPrefix(v, "UTC"), "GMT")
	if v == "" || v == "Z" {
		return 0, nil
	}

	sign := time.Duration(1)
	switch v[0] {
	case '+':
		v = v[1:]
	case '-':
		sign, v = -1, v[1:]
	default:
		return 0, fmt.Errorf("%s: %q", ErrTZParse, s)
	}

	var hh, mm int
	var err error
	switch {
	case strings.Contains(v, ":"):
		_, err = fmt.Sscanf(v, "%d:%d", &hh, &mm)
	case len(v) == 4:
		_, err = fmt.Sscanf(v, "%2d%2d", &hh, &mm)
	default:
		_, err = fmt.Sscanf(v, "%d", &hh)
	}
	if err != nil || hh < 0 || hh > 14 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("%s: %q", ErrTZParse, s)
	}
	return sign * (time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute), nil
}
