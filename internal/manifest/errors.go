package manifest

import "errors"

var (
	ErrInvalidRecipe = errors.New("invalid recipe")
	ErrRecipeRead    = errors.New("failed to read recipe")
)
