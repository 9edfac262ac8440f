package stream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashFields(t *testing.T) {
	t.Run("permutations digest identically", func(t *testing.T) {
		a := HashFields([]string{"JP|2", "KR|1", "TH|3"})
		b := HashFields([]string{"TH|3", "JP|2", "KR|1"})
		require.Equal(t, a, b)
	})

	t.Run("field change digests differently", func(t *testing.T) {
		a := HashFields([]string{"JP|2", "KR|1"})
		b := HashFields([]string{"JP|2", "KR|4"})
		require.NotEqual(t, a, b)
	})

	t.Run("empty input is stable", func(t *testing.T) {
		require.Equal(t, HashFields(nil), HashFields([]string{}))
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		lines := []string{"b", "a"}
		HashFields(lines)
		require.Equal(t, []string{"b", "a"}, lines)
	})
}
