package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceRef_Quality(t *testing.T) {
	t.Run("Defaults to 0.5 when unset", func(t *testing.T) {
		resource := &ResourceRef{}
		assert.Equal(t, 0.5, resource.Quality())
	})

	t.Run("Returns stored quality score", func(t *testing.T) {
		score := 0.9
		resource := &ResourceRef{QualityScore: &score}
		assert.Equal(t, 0.9, resource.Quality())
	})
}
