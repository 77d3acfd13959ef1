package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoleAcceptsClosedSet(t *testing.T) {
	for _, name := range []string{RoleReporter, RoleCollector, RoleAdmin} {
		parsed, err := ParseRole(name)
		require.NoError(t, err)
		assert.Equal(t, name, parsed)
	}
}

func TestParseRoleRejectsUnknown(t *testing.T) {
	for _, name := range []string{"", "reporter", "SuperAdmin", "Moderator"} {
		_, err := ParseRole(name)
		assert.Errorf(t, err, "role %q should be rejected", name)
	}
}
