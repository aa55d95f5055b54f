package commands

import (
	"errors"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	args, ok := Parse("select robot1")
	require.True(t, ok)
	assert.Equal(t, []string{"select", "robot1"}, args)

	_, ok = Parse("   ")
	assert.False(t, ok)
}

func TestExecute(t *testing.T) {
	reg := NewRegistry()

	fs := flag.NewFlagSet("jog", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "")
	var got []string
	reg.Register("jog", fs, func(args []string) error {
		got = args
		return nil
	})

	require.NoError(t, reg.Execute([]string{"jog", "-v", "j1", "cw"}))
	assert.True(t, *verbose)
	assert.Equal(t, []string{"j1", "cw"}, got)
}

func TestExecuteErrors(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.Execute(nil))
	assert.Error(t, reg.Execute([]string{"nope"}))

	sentinel := errors.New("boom")
	reg.Register("fail", flag.NewFlagSet("fail", flag.ContinueOnError), func([]string) error {
		return sentinel
	})
	assert.ErrorIs(t, reg.Execute([]string{"fail"}), sentinel)
}

func TestNamesInRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"grid", "fps", "select"} {
		reg.Register(name, flag.NewFlagSet(name, flag.ContinueOnError), func([]string) error { return nil })
	}
	assert.Equal(t, []string{"grid", "fps", "select"}, reg.Names())
}
