package domain

import "errors"

// Erros de domínio (sem dependências externas).
var (
	ErrNotFound     = errors.New("recurso não encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")

	// ErrUnknownSegment indica um tipo de licença fora de {Start, Hub} chegando
	// onde já deveria ter sido barrado pela validação. Falha interna, não de usuário.
	ErrUnknownSegment = errors.New("tipo de licença sem segmento conhecido")

	// ErrInvalidTransition indica uma transição de estado não prevista na máquina
	// de estados da mensagem.
	ErrInvalidTransition = errors.New("transição de estado inválida")
)
