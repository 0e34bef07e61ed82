package gesture

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultProfile = "default"

// Profile holds the thresholds for one card layout. Distances are in pixels,
// velocities in pixels per second, rotation in degrees.
type Profile struct {
	Name              string  `yaml:"name" json:"name"`
	SwipeThreshold    float64 `yaml:"swipe_threshold" json:"swipe_threshold"`
	VelocityThreshold float64 `yaml:"velocity_threshold" json:"velocity_threshold"`
	FeedbackThreshold float64 `yaml:"feedback_threshold" json:"feedback_threshold"`
	MaxRotation       float64 `yaml:"max_rotation" json:"max_rotation"`
	RotationRange     float64 `yaml:"rotation_range" json:"rotation_range"`
	ViewportWidth     float64 `yaml:"viewport_width" json:"viewport_width"`
	ExitMargin        float64 `yaml:"exit_margin" json:"exit_margin"`
	Stiffness         float64 `yaml:"stiffness" json:"stiffness"`
	Damping           float64 `yaml:"damping" json:"damping"`
}

type Profiles map[string]Profile

var baseProfile = Profile{
	Name:              DefaultProfile,
	SwipeThreshold:    100,
	VelocityThreshold: 500,
	FeedbackThreshold: 60,
	MaxRotation:       25,
	RotationRange:     200,
	ViewportWidth:     480,
	ExitMargin:        200,
	Stiffness:         300,
	Damping:           30,
}

// DefaultProfiles returns the built-in card layouts: the full-screen deck,
// the stacked deck (harder to fling) and the compact list cards.
func DefaultProfiles() Profiles {
	stack := baseProfile
	stack.Name = "stack"
	stack.VelocityThreshold = 800

	compact := baseProfile
	compact.Name = "compact"
	compact.VelocityThreshold = 50
	compact.ViewportWidth = 360

	return Profiles{
		DefaultProfile: baseProfile,
		stack.Name:     stack,
		compact.Name:   compact,
	}
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadProfiles reads a YAML file of profiles and layers it over the
// defaults. Fields left at zero inherit from the default profile.
func LoadProfiles(path string) (Profiles, error) {
	profiles := DefaultProfiles()
	if path == "" {
		return profiles, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gesture profiles: %w", err)
	}
	return parseProfiles(data, profiles)
}

func parseProfiles(data []byte, profiles Profiles) (Profiles, error) {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse gesture profiles: %w", err)
	}

	for _, p := range file.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("gesture profile without a name")
		}
		base, ok := profiles[p.Name]
		if !ok {
			base = profiles[DefaultProfile]
		}
		profiles[p.Name] = p.inherit(base)
		log.Printf("Loaded gesture profile %s (velocity threshold %.0f)", p.Name, profiles[p.Name].VelocityThreshold)
	}
	return profiles, nil
}

func (p Profile) inherit(base Profile) Profile {
	fill := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&p.SwipeThreshold, base.SwipeThreshold)
	fill(&p.VelocityThreshold, base.VelocityThreshold)
	fill(&p.FeedbackThreshold, base.FeedbackThreshold)
	fill(&p.MaxRotation, base.MaxRotation)
	fill(&p.RotationRange, base.RotationRange)
	fill(&p.ViewportWidth, base.ViewportWidth)
	fill(&p.ExitMargin, base.ExitMargin)
	fill(&p.Stiffness, base.Stiffness)
	fill(&p.Damping, base.Damping)
	return p
}

// Get returns the named profile, or the default one for unknown names.
func (ps Profiles) Get(name string) Profile {
	if p, ok := ps[name]; ok {
		return p
	}
	if p, ok := ps[DefaultProfile]; ok {
		return p
	}
	return baseProfile
}
