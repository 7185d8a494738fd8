package segment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/whats-middleware/internal/domain"
	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
	"github.com/tu-usuario/whats-middleware/internal/domain/segment"
)

func TestClassify_SegmentosConhecidos(t *testing.T) {
	start, err := segment.Classify(entity.LicenseStart)
	require.NoError(t, err)
	assert.Equal(t, "welcome_start", start.ID)
	assert.Contains(t, start.Welcome, "Start")

	hub, err := segment.Classify(entity.LicenseHub)
	require.NoError(t, err)
	assert.Equal(t, "welcome_hub", hub.ID)
	assert.Contains(t, hub.Welcome, "Hub")

	assert.NotEqual(t, start.Welcome, hub.Welcome)
	assert.NotEqual(t, start.Mass, hub.Mass)
}

func TestClassify_TipoDesconhecidoEhFalhaInterna(t *testing.T) {
	_, err := segment.Classify(entity.LicenseType("Enterprise"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownSegment)
}

func TestPersonalize(t *testing.T) {
	tpl := "Olá {name}, novidades para a {company}!"

	out := segment.Personalize(tpl, segment.PersonalizationData{Name: "João Silva", Company: "Acme"})
	assert.Equal(t, "Olá João Silva, novidades para a Acme!", out)

	// Sem dados, o template sai intacto
	assert.Equal(t, tpl, segment.Personalize(tpl, segment.PersonalizationData{}))
}
