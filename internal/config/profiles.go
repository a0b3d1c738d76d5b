// internal/config/profiles.go
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// GetProfile retrieves a profile by name
func (c *Config) GetProfile(name string) (*Profile, error) {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}
	return nil, fmt.Errorf("profile not found: %s", name)
}

// ActiveProfile resolves name, falling back to the default profile
func (c *Config) ActiveProfile(name string) (*Profile, error) {
	if name == "" {
		name = c.DefaultProfile
	}
	p, err := c.GetProfile(name)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// AddProfile adds a new profile to the config
func (c *Config) AddProfile(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	for _, existing := range c.Profiles {
		if existing.Name == p.Name {
			return fmt.Errorf("profile already exists: %s", p.Name)
		}
	}
	c.Profiles = append(c.Profiles, p)
	return c.Save()
}

// UpdateProfile updates an existing profile
func (c *Config) UpdateProfile(name string, p Profile) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles[i] = p
			return c.Save()
		}
	}
	return fmt.Errorf("profile not found: %s", name)
}

// ListProfiles returns all profile names
func (c *Config) ListProfiles() []string {
	names := make([]string, len(c.Profiles))
	for i, p := range c.Profiles {
		names[i] = p.Name
	}
	return names
}

// Validate checks that the profile points at an http(s) backend
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return fmt.Errorf("profile %s: invalid base_url: %w", p.Name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("profile %s: base_url must be an http(s) URL, got %q", p.Name, p.BaseURL)
	}
	return nil
}

// Display returns a short host label for the status bar
func (p *Profile) Display() string {
	u, err := url.Parse(p.BaseURL)
	if err != nil || u.Host == "" {
		return p.BaseURL
	}
	return strings.TrimPrefix(u.Host, "www.")
}
