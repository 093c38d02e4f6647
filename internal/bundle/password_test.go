package bundle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitbundle/internal/bundle"
)

func TestRandomPasswordGeneratorLength(t *testing.T) {
	generator := bundle.RandomPasswordGenerator{}

	for _, requestedLength := range []int{1, 16, 32, 33} {
		generatedPassword, generationError := generator.Generate(requestedLength)
		require.NoError(t, generationError)
		require.Len(t, generatedPassword, requestedLength)
	}
}

func TestRandomPasswordGeneratorDefaultsLength(t *testing.T) {
	generator := bundle.RandomPasswordGenerator{}
	generatedPassword, generationError := generator.Generate(0)
	require.NoError(t, generationError)
	require.Len(t, generatedPassword, 32)
}

func TestRandomPasswordGeneratorProducesDistinctPasswords(t *testing.T) {
	generator := bundle.RandomPasswordGenerator{}
	firstPassword, firstError := generator.Generate(32)
	require.NoError(t, firstError)
	secondPassword, secondError := generator.Generate(32)
	require.NoError(t, secondError)
	require.NotEqual(t, firstPassword, secondPassword)
}
