package receiptno

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Next(t *testing.T) {
	gen, err := NewGenerator(1)
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		number, err := gen.Next()
		require.NoError(t, err)

		assert.Len(t, number, 11)
		assert.True(t, strings.HasPrefix(number, "REC"))
		suffix := number[3:]
		assert.Equal(t, strings.ToUpper(suffix), suffix)
		for _, c := range suffix {
			assert.True(t, (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z'), "unexpected character %q in %s", c, number)
		}

		_, dup := seen[number]
		assert.False(t, dup, "generator repeated %s", number)
		seen[number] = struct{}{}
	}
}

func TestFormat(t *testing.T) {
	t.Run("PadsShortIDs", func(t *testing.T) {
		assert.Equal(t, "REC00000000", Format(0))
		assert.Equal(t, "REC0000000A", Format(10))
	})

	t.Run("KeepsLowCharactersOfLongIDs", func(t *testing.T) {
		// 36^8 encodes to "100000000"; only the low 8 characters survive
		id := uint64(36 * 36 * 36 * 36 * 36 * 36 * 36 * 36)
		assert.Equal(t, "REC00000000", Format(id))
		assert.Equal(t, "REC00000001", Format(id+1))
	})
}
