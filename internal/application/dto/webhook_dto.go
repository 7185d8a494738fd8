package dto

// ── Portal de Licenças ────────────────────────────────────────────────────────

// LicenseCreatedPayload corpo do POST /api/webhooks/license-created.
// portal_id identifica o evento; reentregas do mesmo id são no-op.
type LicenseCreatedPayload struct {
	Event         string `json:"event"` // "license.created"
	PortalID      string `json:"portal_id"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	LicenseType   string `json:"license_type"` // Start|Hub (aliases aceitos)
}

// LicenseCreatedResponse ack imediato; o processamento corre fora da requisição.
type LicenseCreatedResponse struct {
	Status   string `json:"status"` // accepted|duplicate|deferred
	PortalID string `json:"portal_id"`
}

// ── WhatsApp Cloud API ────────────────────────────────────────────────────────
//
// Formato de notificação da Cloud API: entry[].changes[].value.statuses[].
// Só os recibos de status interessam; mensagens recebidas são ignoradas.

// WhatsAppNotification corpo do POST /api/webhooks/whatsapp.
type WhatsAppNotification struct {
	Object string          `json:"object"` // "whatsapp_business_account"
	Entry  []WhatsAppEntry `json:"entry"`
}

// WhatsAppEntry uma conta com suas mudanças.
type WhatsAppEntry struct {
	ID      string           `json:"id"`
	Changes []WhatsAppChange `json:"changes"`
}

// WhatsAppChange uma mudança dentro da entrada.
type WhatsAppChange struct {
	Field string        `json:"field"` // "messages"
	Value WhatsAppValue `json:"value"`
}

// WhatsAppValue carga útil da mudança; Statuses traz os recibos.
type WhatsAppValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Statuses         []WhatsAppStatus `json:"statuses"`
}

// WhatsAppStatus recibo de uma mensagem enviada. ID é o wamid devolvido
// na submissão; Status é sent, delivered, read ou failed.
type WhatsAppStatus struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Recipient string `json:"recipient_id"`
}
