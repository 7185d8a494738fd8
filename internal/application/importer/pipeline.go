package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
	"github.com/tu-usuario/whats-middleware/internal/domain/repository"
	"github.com/tu-usuario/whats-middleware/pkg/logger"
)

// WelcomeEnqueuer agenda a mensagem de boas-vindas de um cliente recém-criado.
// Implementado pelo caso de uso de mensageria; a importação não fala com o
// provedor diretamente.
type WelcomeEnqueuer interface {
	EnqueueWelcome(ctx context.Context, customer *entity.Customer) error
}

// RowFailure linha rejeitada do lote, com número 1-based e todos os erros de campo.
type RowFailure struct {
	RowNumber int          `json:"row_number"`
	Raw       []string     `json:"raw,omitempty"`
	Errors    []FieldError `json:"errors"`
}

// Report relatório completo de um lote importado, na ordem das linhas de entrada.
type Report struct {
	TotalRows int          `json:"total_rows"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Failures  []RowFailure `json:"failures,omitempty"`
	Customers []string     `json:"customer_ids,omitempty"` // ids criados, em ordem
}

// Pipeline orquestra parse → normalização → validação → persistência de um
// lote CSV. A persistência é tentada linha a linha: a falha de uma linha não
// desfaz as demais — sucesso parcial é o resultado projetado.
//
// Reimportar o mesmo CSV cria clientes duplicados: não há chave de idempotência
// de importação. Comportamento documentado, não defeito.
type Pipeline struct {
	customers repository.CustomerRepository
	validator RowValidator
	welcome   WelcomeEnqueuer // opcional
	log       *logger.Logger
}

// NewPipeline constrói o pipeline de importação. welcome pode ser nil (sem
// disparo de boas-vindas pós-importação).
func NewPipeline(customers repository.CustomerRepository, validator RowValidator, welcome WelcomeEnqueuer, log *logger.Logger) *Pipeline {
	return &Pipeline{
		customers: customers,
		validator: validator,
		welcome:   welcome,
		log:       log,
	}
}

// Import processa um CSV UTF-8 separado por vírgula com cabeçalho obrigatório.
// Erros estruturais (cabeçalho desconhecido, coluna obrigatória ausente,
// CSV malformado) abortam o lote antes de qualquer linha; erros de validação
// derrubam apenas a própria linha. Devolve sempre o relatório completo.
func (p *Pipeline) Import(ctx context.Context, r io.Reader, sendWelcome bool) (*Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // linhas curtas viram erro de campo, não parse fatal

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("ler cabeçalho do CSV: %w", err)
	}
	cols, err := NormalizeHeader(header)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for rowNum := 1; ; rowNum++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ler linha %d do CSV: %w", rowNum, err)
		}
		report.TotalRows++

		fields := map[string]string{
			ColName:        cols.Value(row, ColName),
			ColEmail:       cols.Value(row, ColEmail),
			ColPhone:       cols.Value(row, ColPhone),
			ColLicenseType: cols.Value(row, ColLicenseType),
			ColCompany:     cols.Value(row, ColCompany),
		}

		record, fieldErrs := p.validator.Validate(fields)
		if len(fieldErrs) > 0 {
			report.Failed++
			report.Failures = append(report.Failures, RowFailure{RowNumber: rowNum, Raw: row, Errors: fieldErrs})
			p.log.Warn().Int("row", rowNum).Interface("errors", fieldErrs).Msg("linha de CSV rejeitada")
			continue
		}

		customer, err := p.persist(record)
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, RowFailure{
				RowNumber: rowNum,
				Raw:       row,
				Errors:    []FieldError{{Field: "persistencia", Message: err.Error()}},
			})
			p.log.Error().Err(err).Int("row", rowNum).Msg("falha ao persistir cliente do CSV")
			continue
		}

		report.Succeeded++
		report.Customers = append(report.Customers, customer.ID)

		if sendWelcome && p.welcome != nil {
			if err := p.welcome.EnqueueWelcome(ctx, customer); err != nil {
				// Cliente persistido; só o agendamento falhou. Não derruba a linha.
				p.log.Error().Err(err).Str("customer_id", customer.ID).Msg("falha ao agendar boas-vindas pós-importação")
			}
		}
	}

	p.log.Info().
		Int("total", report.TotalRows).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Msg("importação de CSV concluída")

	return report, nil
}

func (p *Pipeline) persist(record *Record) (*entity.Customer, error) {
	now := time.Now()
	customer := &entity.Customer{
		ID:          uuid.New().String(),
		Name:        record.Name,
		Email:       record.Email,
		Phone:       record.Phone,
		LicenseType: record.LicenseType,
		Company:     record.Company,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.customers.Create(customer); err != nil {
		return nil, err
	}
	return customer, nil
}
