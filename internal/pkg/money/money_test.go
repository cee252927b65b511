package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundKHR(t *testing.T) {
	assert.Equal(t, int64(55813), RoundKHR(55812.5))
	assert.Equal(t, int64(0), RoundKHR(0))
	assert.Equal(t, int64(1200), RoundKHR(1200))
	assert.Equal(t, int64(0), RoundKHR(math.NaN()))
	assert.Equal(t, int64(0), RoundKHR(math.Inf(1)))
}

func TestFormatKHR(t *testing.T) {
	assert.Equal(t, "55,813 KHR", FormatKHR(55812.5))
	assert.Equal(t, "0 KHR", FormatKHR(0))
	assert.Equal(t, "600 KHR", FormatKHR(600))
	assert.Equal(t, "3,600 KHR", FormatKHR(3600))
	assert.Equal(t, "1,234,568 KHR", FormatKHR(1234567.6))
	assert.Equal(t, "-4,500 KHR", FormatKHR(-4500))
}
