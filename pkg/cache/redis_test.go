package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "sma-coverage:coverage:2024-09-02", Key("coverage", " ", "2024-09-02"))
	assert.Equal(t, "sma-coverage", Key())
}
