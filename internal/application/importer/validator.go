package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
)

// FieldError erro de validação de um campo de uma linha.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Record linha totalmente normalizada, pronta para persistência.
// Nunca existe parcialmente: ou todos os campos validam, ou só há erros.
type Record struct {
	Name        string
	Email       string
	Phone       string
	LicenseType entity.LicenseType
	Company     string
}

// RowValidator valida e normaliza os campos de uma linha, de forma independente
// por campo: coleta todos os erros da linha em vez de parar no primeiro, para
// que o relatório devolva o diagnóstico completo.
type RowValidator struct {
	CountryCode string // DDI aplicado a telefones sem prefixo de país
}

// localpart@dominio com ao menos um ponto no domínio.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s.]+(\.[^@\s.]+)+$`)

// Validate valida a linha já mapeada em campos canônicos. Devolve o registro
// normalizado ou a lista completa de erros de campo (nunca ambos).
func (v RowValidator) Validate(fields map[string]string) (*Record, []FieldError) {
	var errs []FieldError

	name := strings.TrimSpace(fields[ColName])
	if name == "" {
		errs = append(errs, FieldError{Field: ColName, Message: "nome não pode ser vazio"})
	} else if len(strings.Fields(name)) < 2 {
		errs = append(errs, FieldError{Field: ColName, Message: "nome completo requer ao menos duas palavras"})
	}

	email := strings.TrimSpace(fields[ColEmail])
	if email != "" && !emailPattern.MatchString(email) {
		errs = append(errs, FieldError{Field: ColEmail, Message: fmt.Sprintf("email inválido (valor: %q)", email)})
	}

	phone, err := NormalizePhone(fields[ColPhone], v.CountryCode)
	if err != nil {
		errs = append(errs, FieldError{Field: ColPhone, Message: err.Error()})
	}

	licenseType, err := ResolveLicenseType(fields[ColLicenseType])
	if err != nil {
		errs = append(errs, FieldError{Field: ColLicenseType, Message: err.Error()})
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &Record{
		Name:        name,
		Email:       email,
		Phone:       phone,
		LicenseType: licenseType,
		Company:     strings.TrimSpace(fields[ColCompany]), // passthrough, sem validação
	}, nil
}

// NormalizePhone normaliza um telefone para a forma canônica: somente dígitos,
// com DDI. Regras:
//   - separadores e demais não-dígitos são descartados;
//   - mínimo de 10 dígitos;
//   - sem o DDI e com 10 ou 11 dígitos (fixo/celular com DDD), o DDI padrão é
//     prefixado exatamente uma vez — renormalizar um telefone já canônico não
//     duplica o prefixo.
func NormalizePhone(raw, countryCode string) (string, error) {
	digits := onlyDigits(raw)
	if len(digits) < 10 {
		return "", fmt.Errorf("telefone inválido ou ausente (valor: %q)", strings.TrimSpace(raw))
	}
	if !strings.HasPrefix(digits, countryCode) && (len(digits) == 10 || len(digits) == 11) {
		digits = countryCode + digits
	}
	return digits, nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Aliases aceitos para o tipo de licença (case-insensitive).
var licenseAliases = map[string]entity.LicenseType{
	"s":       entity.LicenseStart,
	"start":   entity.LicenseStart,
	"starter": entity.LicenseStart,
	"basic":   entity.LicenseStart,
	"h":       entity.LicenseHub,
	"hub":     entity.LicenseHub,
}

// ResolveLicenseType mapeia o texto livre do CSV para o conjunto fechado {Start, Hub}.
func ResolveLicenseType(raw string) (entity.LicenseType, error) {
	lt, ok := licenseAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("tipo de licença inválido (valor: %q, esperado 'Start' ou 'Hub')", strings.TrimSpace(raw))
	}
	return lt, nil
}
