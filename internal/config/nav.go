package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NavItem is one header or mobile-menu link. Path is relative to the base
// path. Key is matched against the page's active nav key.
type NavItem struct {
	Label string `yaml:"label"`
	Path  string `yaml:"path"`
	Key   string `yaml:"key"`
}

// Nav holds the links for each layout that shows a header.
type Nav struct {
	Public     []NavItem `yaml:"public"`
	Admin      []NavItem `yaml:"admin"`
	Auctioneer []NavItem `yaml:"auctioneer"`
}

// DefaultNav is used when no NAV_FILE is configured.
func DefaultNav() Nav {
	return Nav{
		Public: []NavItem{
			{Label: "Home", Path: "/", Key: "home"},
			{Label: "Display", Path: "/display", Key: "display"},
		},
		Admin: []NavItem{
			{Label: "Dashboard", Path: "/admin", Key: "dashboard"},
			{Label: "Auctioneer", Path: "/auctioneer", Key: "auctioneer"},
			{Label: "Display", Path: "/display", Key: "display"},
		},
		Auctioneer: []NavItem{
			{Label: "Lots", Path: "/auctioneer", Key: "lots"},
			{Label: "Display", Path: "/display", Key: "display"},
		},
	}
}

// LoadNav reads a YAML nav file over the defaults. A layout missing from the
// file keeps its default links. An empty path returns the defaults.
func LoadNav(path string) (Nav, error) {
	nav := DefaultNav()
	if path == "" {
		return nav, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Nav{}, fmt.Errorf("read nav file: %w", err)
	}
	if err := yaml.Unmarshal(data, &nav); err != nil {
		return Nav{}, fmt.Errorf("parse nav file %s: %w", path, err)
	}
	for layout, items := range map[string][]NavItem{"public": nav.Public, "admin": nav.Admin, "auctioneer": nav.Auctioneer} {
		for i, it := range items {
			if it.Label == "" || it.Path == "" {
				return Nav{}, fmt.Errorf("nav file %s: %s item %d needs label and path", path, layout, i)
			}
		}
	}
	return nav, nil
}
