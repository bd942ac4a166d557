package external

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stadium is a KBO ballpark and the city used to query its weather.
type Stadium struct {
	Team    string `yaml:"team" json:"team"`
	Name    string `yaml:"name" json:"name"`
	Address string `yaml:"address" json:"address"`
	City    string `yaml:"city" json:"city"`
}

//go:embed stadiums.yml
var stadiumsYAML []byte

// Stadiums parses the embedded catalog.
func Stadiums() ([]Stadium, error) {
	var out []Stadium
	if err := yaml.Unmarshal(stadiumsYAML, &out); err != nil {
		return nil, fmt.Errorf("parse stadium catalog: %w", err)
	}
	return out, nil
}

// FindStadium returns the first stadium in city, compared case-insensitively.
func FindStadium(stadiums []Stadium, city string) (Stadium, bool) {
	for _, s := range stadiums {
		if strings.EqualFold(s.City, city) {
			return s, true
		}
	}
	return Stadium{}, false
}
