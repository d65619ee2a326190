package clickhouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashDescriptionNormalizes(t *testing.T) {
	base := HashDescription("merge sort over a linked list")

	assert.Equal(t, base, HashDescription("Merge  Sort over a\tlinked list"))
	assert.Equal(t, base, HashDescription("  merge sort over a linked list\n"))
	assert.NotEqual(t, base, HashDescription("merge sort over an array"))
	assert.Len(t, base, 64)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "complexity", cfg.Database)
}
