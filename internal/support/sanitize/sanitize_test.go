package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "", Text("   "))
	assert.Equal(t, "今天 很顺利", Text("<b>今天</b><script>alert(1)</script> 很顺利"))
	assert.Equal(t, "a & b", Text("a &amp; b"))
	assert.Equal(t, "one two", Text("one\n\n  two"))

	long := strings.Repeat("便", MaxTextLength+10)
	assert.Equal(t, MaxTextLength, len([]rune(Text(long))))
}
