package manifest

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Reads and validates a recipe from a YAML file.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecipeRead, err)
	}
	return Parse(data)
}

// Decodes and validates a recipe from YAML bytes.
//
// Unknown fields are rejected so that typos in recipe files surface as
// errors instead of silently dropped instructions.
func Parse(data []byte) (*Recipe, error) {
	var recipe Recipe

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&recipe); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
	}

	if err := recipe.Validate(); err != nil {
		return nil, err
	}

	return &recipe, nil
}
