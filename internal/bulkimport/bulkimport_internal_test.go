package bulkimport

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCycles(t *testing.T) {
	t.Run("no cycle", func(t *testing.T) {
		assert.Empty(t, detectCycles(map[string]string{"a": "b", "b": "c"}))
	})

	t.Run("two disjoint cycles and a tail", func(t *testing.T) {
		cycles := detectCycles(map[string]string{
			"a": "b", "b": "a",
			"c": "d", "d": "e", "e": "c",
			"t": "c",
		})
		assert.Equal(t, [][]string{{"a", "b", "a"}, {"c", "d", "e", "c"}}, cycles)
	})

	t.Run("long chain stays linear", func(t *testing.T) {
		m := make(map[string]string, 5000)
		for i := 0; i < 5000; i++ {
			m[fmt.Sprintf("n%05d", i)] = fmt.Sprintf("n%05d", i+1)
		}
		m["n05000"] = "n00000"

		cycles := detectCycles(m)
		assert.Len(t, cycles, 1)
		assert.Len(t, cycles[0], 5002)
	})
}
