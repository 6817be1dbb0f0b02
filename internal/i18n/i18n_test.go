package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mktbedugroup/ditalentweb-sub001/internal/domain"
)

func TestResolve(t *testing.T) {
	ms := domain.MultilingualString{ES: "Hola", EN: "Hello"}

	assert.Equal(t, "Hello", Resolve(ms, "en"))
	assert.Equal(t, "Hola", Resolve(ms, "es"))
	assert.Equal(t, "Hola", Resolve(ms, "fr"), "missing translation falls back to es")
	assert.Equal(t, "Hola", Resolve(ms, "de"), "unknown locale falls back to es")
	assert.Equal(t, "Hello", Resolve(ms, " EN "), "locale is trimmed and case-insensitive")
}

func TestResolve_AllLocales(t *testing.T) {
	ms := domain.MultilingualString{ES: "Hola", EN: "Hello", FR: "Bonjour"}
	assert.Equal(t, "Bonjour", Resolve(ms, "fr"))
}
