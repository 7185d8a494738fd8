package importer

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Colunas canônicas do CSV de clientes.
const (
	ColName        = "name"
	ColEmail       = "email"
	ColPhone       = "phone"
	ColLicenseType = "license_type"
	ColCompany     = "company"
)

// Tabela de aliases aceitos (português/inglês). Qualquer cabeçalho fora dela
// derruba o lote inteiro: uma coluna com nome errado corrompe silenciosamente
// todas as linhas.
var columnAliases = map[string]string{
	"nome":         ColName,
	"name":         ColName,
	"email":        ColEmail,
	"telefone":     ColPhone,
	"phone":        ColPhone,
	"tipo_licenca": ColLicenseType,
	"license_type": ColLicenseType,
	"empresa":      ColCompany,
	"company":      ColCompany,
}

// requiredColumns colunas obrigatórias após a normalização.
var requiredColumns = []string{ColName, ColPhone, ColLicenseType}

// StructuralError erro estrutural do lote: cabeçalho desconhecido ou coluna
// obrigatória ausente. Nenhuma linha é processada quando ocorre.
type StructuralError struct {
	Column string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("erro estrutural na coluna %q: %s", e.Column, e.Reason)
}

// ColumnMap mapeia coluna canônica -> índice na linha de origem.
type ColumnMap map[string]int

// Has informa se a coluna canônica existe no CSV.
func (m ColumnMap) Has(canonical string) bool {
	_, ok := m[canonical]
	return ok
}

// Value extrai o campo canônico de uma linha crua (vazio se a coluna não existe).
func (m ColumnMap) Value(row []string, canonical string) string {
	idx, ok := m[canonical]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// NormalizeHeader resolve o cabeçalho cru para o mapa de colunas canônicas.
// Comparação é case-insensitive, com trim e sem acentos (tipo_licença casa
// com tipo_licenca). Falha rápida no primeiro cabeçalho desconhecido e na
// primeira coluna obrigatória ausente.
func NormalizeHeader(header []string) (ColumnMap, error) {
	cols := make(ColumnMap, len(header))
	for i, raw := range header {
		canonical, ok := columnAliases[foldHeader(raw)]
		if !ok {
			return nil, &StructuralError{Column: raw, Reason: "coluna não reconhecida"}
		}
		if _, dup := cols[canonical]; dup {
			return nil, &StructuralError{Column: raw, Reason: "coluna duplicada"}
		}
		cols[canonical] = i
	}
	for _, req := range requiredColumns {
		if !cols.Has(req) {
			return nil, &StructuralError{Column: req, Reason: "coluna obrigatória ausente"}
		}
	}
	return cols, nil
}

// foldTransformer remove marcas diacríticas (NFD -> drop Mn -> NFC).
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return folded
}
