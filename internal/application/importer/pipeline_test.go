package importer_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/whats-middleware/internal/application/importer"
	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
	"github.com/tu-usuario/whats-middleware/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

// fakeCustomerRepo repositório em memória; failOn derruba a persistência de
// telefones específicos para exercitar o sucesso parcial.
type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers []*entity.Customer
	failOn    map[string]bool
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{failOn: map[string]bool{}}
}

func (r *fakeCustomerRepo) Create(c *entity.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn[c.Phone] {
		return fmt.Errorf("insert customer: conexão recusada")
	}
	r.customers = append(r.customers, c)
	return nil
}

func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) FindByPhone(phone string) (*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.Phone == phone {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) FindByEmail(email string) (*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) ListByLicenseType(lt entity.LicenseType, onlyActive bool) ([]*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Customer
	for _, c := range r.customers {
		if c.LicenseType == lt && (!onlyActive || c.Active) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCustomerRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Customer, error) {
	return nil, nil
}

func (r *fakeCustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.Customer(nil), r.customers...), nil
}

func (r *fakeCustomerRepo) Update(c *entity.Customer) error { return nil }

func (r *fakeCustomerRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.customers)
}

// fakeWelcome registra os clientes cujo welcome foi agendado.
type fakeWelcome struct {
	mu       sync.Mutex
	enqueued []string
}

func (w *fakeWelcome) EnqueueWelcome(_ context.Context, c *entity.Customer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.enqueued = append(w.enqueued, c.ID)
	return nil
}

func newPipeline(repo *fakeCustomerRepo, welcome importer.WelcomeEnqueuer) *importer.Pipeline {
	return importer.NewPipeline(repo, importer.RowValidator{CountryCode: ddiBrasil}, welcome, logger.Nop())
}

// ──────────────────────────────────────────────────────────────────────────────
// Testes
// ──────────────────────────────────────────────────────────────────────────────

func TestImport_ExemploJoaoSilva(t *testing.T) {
	repo := newFakeCustomerRepo()
	p := newPipeline(repo, nil)

	csv := "nome,telefone,tipo_licenca\n\"João Silva\",\"11999999999\",\"S\"\n"
	report, err := p.Import(context.Background(), strings.NewReader(csv), false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalRows)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 0, report.Failed)

	require.Equal(t, 1, repo.len())
	c := repo.customers[0]
	assert.Equal(t, "João Silva", c.Name)
	assert.Equal(t, "5511999999999", c.Phone, "DDI 55 prefixado na normalização")
	assert.Equal(t, entity.LicenseStart, c.LicenseType)
	assert.True(t, c.Active)
	assert.NotEmpty(t, c.ID)
}

func TestImport_CabecalhoDesconhecidoAbortaAntesDasLinhas(t *testing.T) {
	repo := newFakeCustomerRepo()
	p := newPipeline(repo, nil)

	csv := "cliente,telefone,tipo_licenca\n\"João Silva\",\"11999999999\",\"S\"\n"
	report, err := p.Import(context.Background(), strings.NewReader(csv), false)
	require.Error(t, err)
	assert.Nil(t, report)

	var structural *importer.StructuralError
	require.ErrorAs(t, err, &structural)
	assert.Equal(t, "cliente", structural.Column)
	assert.Equal(t, 0, repo.len(), "nenhuma linha processada em erro estrutural")
}

func TestImport_LinhaInvalidaNaoDerrubaOLote(t *testing.T) {
	repo := newFakeCustomerRepo()
	p := newPipeline(repo, nil)

	// 5 linhas, a terceira com tipo de licença inválido
	var b strings.Builder
	b.WriteString("nome,telefone,tipo_licenca\n")
	for i := 1; i <= 5; i++ {
		lt := "Hub"
		if i == 3 {
			lt = "Gold"
		}
		fmt.Fprintf(&b, "Cliente Num%d,1199999%04d,%s\n", i, i, lt)
	}

	report, err := p.Import(context.Background(), strings.NewReader(b.String()), false)
	require.NoError(t, err)

	assert.Equal(t, 5, report.TotalRows)
	assert.Equal(t, 4, report.Succeeded)
	assert.Equal(t, 1, report.Failed)

	require.Len(t, report.Failures, 1)
	failure := report.Failures[0]
	assert.Equal(t, 3, failure.RowNumber)
	require.Len(t, failure.Errors, 1)
	assert.Equal(t, importer.ColLicenseType, failure.Errors[0].Field)
}

func TestImport_FalhaDePersistenciaEhSucessoParcial(t *testing.T) {
	repo := newFakeCustomerRepo()
	repo.failOn["5511999990002"] = true
	p := newPipeline(repo, nil)

	csv := "nome,telefone,tipo_licenca\n" +
		"Cliente Um,11999990001,Start\n" +
		"Cliente Dois,11999990002,Start\n" +
		"Cliente Tres,11999990003,Start\n"

	report, err := p.Import(context.Background(), strings.NewReader(csv), false)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 2, report.Failures[0].RowNumber)
	assert.Equal(t, "persistencia", report.Failures[0].Errors[0].Field)
	assert.Equal(t, 2, repo.len(), "as demais linhas persistem normalmente")
}

func TestImport_ReimportacaoCriaDuplicados(t *testing.T) {
	repo := newFakeCustomerRepo()
	p := newPipeline(repo, nil)

	csv := "nome,telefone,tipo_licenca\nMaria Souza,11988887777,Hub\n"
	for i := 0; i < 2; i++ {
		report, err := p.Import(context.Background(), strings.NewReader(csv), false)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Succeeded)
	}

	// Sem chave de idempotência de importação: duplicado aceito por contrato
	assert.Equal(t, 2, repo.len())
	assert.NotEqual(t, repo.customers[0].ID, repo.customers[1].ID)
}

func TestImport_AgendaBoasVindasPorLinhaPersistida(t *testing.T) {
	repo := newFakeCustomerRepo()
	welcome := &fakeWelcome{}
	p := newPipeline(repo, welcome)

	csv := "nome,telefone,tipo_licenca\n" +
		"Cliente Um,11999990001,Start\n" +
		"Cliente Errado,123,Start\n" +
		"Cliente Dois,11999990003,Hub\n"

	report, err := p.Import(context.Background(), strings.NewReader(csv), true)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)

	assert.ElementsMatch(t, report.Customers, welcome.enqueued,
		"exatamente um welcome por cliente persistido")
}

func TestImport_SemFlagNaoAgendaBoasVindas(t *testing.T) {
	repo := newFakeCustomerRepo()
	welcome := &fakeWelcome{}
	p := newPipeline(repo, welcome)

	csv := "nome,telefone,tipo_licenca\nCliente Um,11999990001,Start\n"
	_, err := p.Import(context.Background(), strings.NewReader(csv), false)
	require.NoError(t, err)
	assert.Empty(t, welcome.enqueued)
}

func TestImport_OrdemDoRelatorioSegueAEntrada(t *testing.T) {
	repo := newFakeCustomerRepo()
	p := newPipeline(repo, nil)

	csv := "nome,telefone,tipo_licenca\n" +
		"Errado Um,123,Start\n" +
		"Cliente Ok,11999990001,Start\n" +
		"Errado Dois,456,Hub\n"

	report, err := p.Import(context.Background(), strings.NewReader(csv), false)
	require.NoError(t, err)

	require.Len(t, report.Failures, 2)
	assert.Equal(t, 1, report.Failures[0].RowNumber)
	assert.Equal(t, 3, report.Failures[1].RowNumber)
}
