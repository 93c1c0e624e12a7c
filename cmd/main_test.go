package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"serve", "migrate", "seed-developer", "deactivate-developer", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.RunE, "root runs serve by default")
}

func TestDeactivateDeveloper_RequiresUsername(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"deactivate-developer"})
	root.SilenceErrors = true

	assert.Error(t, root.Execute())
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "a", firstNonEmpty(" a "))
	assert.Equal(t, "", firstNonEmpty("", " "))
}
