package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryEmbeddedDefaults(t *testing.T) {
	registry, err := NewRegistry("")
	require.NoError(t, err)

	sara, err := registry.Lookup("sara")
	require.NoError(t, err)
	assert.Equal(t, "Sara", sara.Name)
	assert.Equal(t, 32, sara.Age)
	assert.Equal(t, "female", sara.Gender)
	assert.Equal(t, "witty", sara.Tone)

	alas, err := registry.Lookup("alas")
	require.NoError(t, err)
	assert.Equal(t, "cheeky", alas.Tone)

	assert.ElementsMatch(t, []string{"alas", "sara"}, registry.IDs())
}

func TestLookupUnknownUser(t *testing.T) {
	registry, err := NewRegistry("")
	require.NoError(t, err)

	_, err = registry.Lookup("unknown")
	require.Error(t, err)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "unknown", notFound.UserID)
}

func TestNewRegistryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := `profiles:
  - id: kim
    name: Kim
    age: 41
    gender: female
    height: 5'7"
    weight: 65kg
    movement_level: low
    exercise_frequency: rare
    sleep_schedule: irregular
    diet: vegetarian
    target_age: "35"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	registry, err := NewRegistry(path)
	require.NoError(t, err)

	kim, err := registry.Lookup("kim")
	require.NoError(t, err)
	assert.Equal(t, "Kim", kim.Name)
	// No tone in the file, the default applies.
	assert.Equal(t, DefaultTone, kim.Tone)
}

func TestNewRegistryRejectsIncompleteProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := `profiles:
  - id: broken
    name: Broken
    age: 30
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := NewRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestNewRegistryRejectsDuplicateIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := `profiles:
  - id: dup
    name: One
    age: 30
    gender: male
    height: 6ft
    weight: 80kg
    movement_level: average
    exercise_frequency: low
    sleep_schedule: good
    diet: mixed
    target_age: "25"
  - id: dup
    name: Two
    age: 31
    gender: male
    height: 6ft
    weight: 80kg
    movement_level: average
    exercise_frequency: low
    sleep_schedule: good
    diet: mixed
    target_age: "25"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := NewRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}
