package messaging

import "time"

// maxBackoff teto do atraso entre tentativas.
const maxBackoff = 30 * time.Second

// Backoff devolve o atraso antes da próxima tentativa após a falha de número
// attempt (1-based): base * 2^(attempt-1), limitado a maxBackoff. Função pura,
// testável sem rede.
func Backoff(attempt int, base time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
