package mailingservices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitUsesConfiguredSender(t *testing.T) {
	m := &Mailgun{}
	m.Init("mg.greenloop.example", "key-test", "hello@greenloop.example")

	require.NotNil(t, m.Client)
	assert.Equal(t, "hello@greenloop.example", m.From)
}

func TestInitFallsBackToDomainSender(t *testing.T) {
	m := &Mailgun{}
	m.Init("mg.greenloop.example", "key-test", "")

	assert.Equal(t, "no-reply@mg.greenloop.example", m.From)
}
