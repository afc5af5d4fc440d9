package strutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSpaces(t *testing.T) {
	assert.Equal(t, "Apple iPhone 15", NormalizeSpaces("  Apple  iPhone\n 15  "))
	assert.Equal(t, "", NormalizeSpaces(" \t\n "))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "***", Mask("abc"))
	assert.Equal(t, "abcd***", Mask("abcdefgh"))
	assert.Equal(t, "1234***WXYZ", Mask("1234567890:ABCDEFGHWXYZ"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Цена", Truncate("Цена", 4))
	assert.Equal(t, "Це...", Truncate("Цена", 2))
	assert.Equal(t, "", Truncate("Цена", 0))
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitAndTrim("a, , b,c", ","))
	assert.Nil(t, SplitAndTrim(" , ", ","))
}
