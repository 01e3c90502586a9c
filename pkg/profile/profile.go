// Package profile holds the static per-user wellness profiles the coach is
// personalized with. Profiles are loaded once at startup and never mutated.
package profile

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var defaultProfilesYAML []byte

// UserProfile is the full static profile of one user. Every field is embedded
// verbatim into the system prompt, so none of them may be empty.
type UserProfile struct {
	ID                string `yaml:"id"`
	Name              string `yaml:"name"`
	Age               int    `yaml:"age"`
	Gender            string `yaml:"gender"`
	Height            string `yaml:"height"`
	Weight            string `yaml:"weight"`
	MovementLevel     string `yaml:"movement_level"`
	ExerciseFrequency string `yaml:"exercise_frequency"`
	SleepSchedule     string `yaml:"sleep_schedule"`
	Diet              string `yaml:"diet"`
	TargetAge         string `yaml:"target_age"`
	Tone              string `yaml:"tone"`
}

// DefaultTone is used when a profile does not carry a tone preference.
const DefaultTone = "friendly"

func (p *UserProfile) validate() error {
	if p.ID == "" {
		return errors.New("profile is missing an id")
	}
	required := map[string]string{
		"name":               p.Name,
		"gender":             p.Gender,
		"height":             p.Height,
		"weight":             p.Weight,
		"movement_level":     p.MovementLevel,
		"exercise_frequency": p.ExerciseFrequency,
		"sleep_schedule":     p.SleepSchedule,
		"diet":               p.Diet,
		"target_age":         p.TargetAge,
	}
	for field, value := range required {
		if value == "" {
			return errors.Errorf("profile %q is missing field %s", p.ID, field)
		}
	}
	if p.Age <= 0 {
		return errors.Errorf("profile %q has invalid age %d", p.ID, p.Age)
	}
	return nil
}

// NotFoundError is returned when a user id has no registered profile.
type NotFoundError struct {
	UserID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// Registry is a read-only lookup of user profiles keyed by id.
type Registry struct {
	profiles map[string]UserProfile
}

// NewRegistry loads profiles from the YAML file at path, or from the embedded
// defaults when path is empty. Every profile is validated up front so nothing
// downstream has to re-check fields.
func NewRegistry(path string) (*Registry, error) {
	data := defaultProfilesYAML
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading profiles file %s", path)
		}
		data = fileData
	}

	var doc struct {
		Profiles []UserProfile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing profiles yaml")
	}
	if len(doc.Profiles) == 0 {
		return nil, errors.New("no profiles defined")
	}

	profiles := make(map[string]UserProfile, len(doc.Profiles))
	for i := range doc.Profiles {
		p := doc.Profiles[i]
		if err := p.validate(); err != nil {
			return nil, err
		}
		if p.Tone == "" {
			p.Tone = DefaultTone
		}
		if _, exists := profiles[p.ID]; exists {
			return nil, errors.Errorf("duplicate profile id %q", p.ID)
		}
		profiles[p.ID] = p
	}

	return &Registry{profiles: profiles}, nil
}

// Lookup returns the profile for userID or a *NotFoundError.
func (r *Registry) Lookup(userID string) (UserProfile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return UserProfile{}, &NotFoundError{UserID: userID}
	}
	return p, nil
}

// IDs returns every registered user id.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	return ids
}
