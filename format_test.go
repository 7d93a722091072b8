package xbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat_Positional(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a and b", Format("{} and {}", "a", "b"))
	assert.Equal(t, "no placeholders", Format("no placeholders"))
	assert.Equal(t, "x=1 y=2.5 ok=true", Format("x={} y={} ok={}", 1, 2.5, true))
}

func TestFormat_ExtraArguments(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"a and b <diagnostic: 1 extra argument>",
		Format("{} and {}", "a", "b", "c"))
	assert.Equal(t,
		"a <diagnostic: 2 extra arguments>",
		Format("{}", "a", "b", "c"))
	// Excess arguments annotate, never fail and never emit separately.
	assert.Equal(t,
		"plain <diagnostic: 1 extra argument>",
		Format("plain", "b"))
}

func TestFormat_MissingArguments(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a and <unresolved>", Format("{} and {}", "a"))
	assert.Equal(t, "<unresolved> and <unresolved>", Format("{} and {}"))
}

func TestFormat_SingleSequenceExpansion(t *testing.T) {
	t.Parallel()

	// One slice argument expands element-wise, identical to passing the
	// elements individually.
	assert.Equal(t,
		Format("{} {} {}", "x", "y", "z"),
		Format("{} {} {}", []string{"x", "y", "z"}))
	assert.Equal(t,
		"1 2 3",
		Format("{} {} {}", []int{1, 2, 3}))
	assert.Equal(t,
		"x and y <diagnostic: 1 extra argument>",
		Format("{} and {}", []any{"x", "y", "z"}))
}

func TestFormat_ScalarsNotExpanded(t *testing.T) {
	t.Parallel()

	// Strings and raw bytes are scalar, not sequences.
	assert.Equal(t, "abc", Format("{}", "abc"))
	assert.Equal(t, "[1 2]", Format("{}", []byte{1, 2}))
}

func TestFormat_NilArgument(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<nil>", Format("{}", nil))
}
