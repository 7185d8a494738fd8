package entity

import "time"

// LicenseType tipo de licença contratada. Conjunto fechado: Start ou Hub.
type LicenseType string

const (
	LicenseStart LicenseType = "Start"
	LicenseHub   LicenseType = "Hub"
)

// Valid informa se o tipo pertence ao conjunto fechado.
func (t LicenseType) Valid() bool {
	return t == LicenseStart || t == LicenseHub
}

// Customer representa um cliente final que recebe mensagens via WhatsApp.
// Phone é sempre armazenado na forma canônica (somente dígitos, com DDI).
// Duplicidade de telefone em reimportações de CSV é aceita — comportamento
// documentado, não defeito.
type Customer struct {
	ID          string
	CompanyID   string // vazio = sem empresa associada
	Name        string
	Email       string
	Phone       string
	LicenseType LicenseType
	Company     string // nome livre vindo do CSV/webhook
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
