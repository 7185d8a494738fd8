package segment

import (
	"fmt"
	"strings"

	"github.com/tu-usuario/whats-middleware/internal/domain"
	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
)

// Segment agrupa os templates de mensagem de um tipo de licença.
type Segment struct {
	ID      string // identificador do template junto ao provedor
	Welcome string // mensagem de boas-vindas
	Mass    string // mensagem de disparo em massa
}

var segments = map[entity.LicenseType]Segment{
	entity.LicenseStart: {
		ID: "welcome_start",
		Welcome: "🎉 Bem-vindo ao *Start*!\n\n" +
			"Sua licença Start foi ativada com sucesso. " +
			"Você já tem acesso aos recursos essenciais para começar.\n\n" +
			"Estamos aqui para ajudar você a ter sucesso! 🚀",
		Mass: "Olá! 👋\n\n" +
			"Temos novidades importantes para você que usa o plano *Start*.\n\n" +
			"Fique atento às atualizações e aproveite ao máximo os recursos disponíveis!",
	},
	entity.LicenseHub: {
		ID: "welcome_hub",
		Welcome: "🎉 Bem-vindo ao *Hub*!\n\n" +
			"Sua licença Hub foi ativada com sucesso. " +
			"Você já tem acesso a todos os recursos avançados e ao suporte prioritário.\n\n" +
			"Nosso time está pronto para ajudar você a alcançar seus objetivos! 🚀",
		Mass: "Olá! 👋\n\n" +
			"Temos novidades exclusivas para você que usa o plano *Hub*.\n\n" +
			"Aproveite todos os recursos premium e nosso suporte prioritário!",
	},
}

// Classify devolve o segmento do tipo de licença.
// Um tipo fora de {Start, Hub} já deveria ter sido barrado pela validação;
// aqui é falha interna (domain.ErrUnknownSegment), nunca erro de usuário.
func Classify(licenseType entity.LicenseType) (Segment, error) {
	s, ok := segments[licenseType]
	if !ok {
		return Segment{}, fmt.Errorf("%w: %q", domain.ErrUnknownSegment, licenseType)
	}
	return s, nil
}

// PersonalizationData dados do cliente para personalização de templates.
type PersonalizationData struct {
	Name    string
	Company string
}

// Personalize substitui os placeholders {name} e {company} no template.
func Personalize(template string, data PersonalizationData) string {
	msg := template
	if data.Name != "" {
		msg = strings.ReplaceAll(msg, "{name}", data.Name)
	}
	if data.Company != "" {
		msg = strings.ReplaceAll(msg, "{company}", data.Company)
	}
	return msg
}
