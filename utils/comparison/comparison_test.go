package comparison

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMinMax(t *testing.T) {
	assert.Equal(t, 1, Min(1, 2))
	assert.Equal(t, 2, Max(1, 2))
	assert.Equal(t, "a", Min("b", "a"))
	assert.Equal(t, time.Second, Max(time.Millisecond, time.Second))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(7, 1, 5))
	assert.Equal(t, 1, Clamp(-3, 1, 5))
	assert.Equal(t, 3, Clamp(3, 1, 5))
}

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, int64(0), CeilDiv(int64(0), 100))
	assert.Equal(t, int64(1), CeilDiv(int64(1), 100))
	assert.Equal(t, int64(1), CeilDiv(int64(100), 100))
	assert.Equal(t, int64(2), CeilDiv(int64(101), 100))
	assert.Equal(t, 0, CeilDiv(-5, 3))
}
