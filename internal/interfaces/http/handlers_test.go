package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/whats-middleware/internal/application/importer"
	"github.com/tu-usuario/whats-middleware/internal/application/messaging"
	"github.com/tu-usuario/whats-middleware/internal/application/webhook"
	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
	httpiface "github.com/tu-usuario/whats-middleware/internal/interfaces/http"
	"github.com/tu-usuario/whats-middleware/internal/infrastructure/dedup"
	"github.com/tu-usuario/whats-middleware/internal/infrastructure/whatsapp"
	"github.com/tu-usuario/whats-middleware/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes mínimos de persistência
// ──────────────────────────────────────────────────────────────────────────────

type customerRepoStub struct {
	customers []*entity.Customer
}

func (r *customerRepoStub) Create(c *entity.Customer) error { r.customers = append(r.customers, c); return nil }
func (r *customerRepoStub) GetByID(id string) (*entity.Customer, error) {
	for _, c := range r.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}
func (r *customerRepoStub) FindByPhone(phone string) (*entity.Customer, error) {
	for _, c := range r.customers {
		if c.Phone == phone {
			return c, nil
		}
	}
	return nil, nil
}
func (r *customerRepoStub) FindByEmail(string) (*entity.Customer, error) { return nil, nil }
func (r *customerRepoStub) ListByLicenseType(lt entity.LicenseType, _ bool) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range r.customers {
		if c.LicenseType == lt {
			out = append(out, c)
		}
	}
	return out, nil
}
func (r *customerRepoStub) ListByCompany(string, int, int) ([]*entity.Customer, error) {
	return nil, nil
}
func (r *customerRepoStub) List(int, int) ([]*entity.Customer, error) { return r.customers, nil }
func (r *customerRepoStub) Update(*entity.Customer) error             { return nil }

type messageRepoStub struct {
	messages []*entity.Message
}

func (r *messageRepoStub) Create(m *entity.Message) error { r.messages = append(r.messages, m); return nil }
func (r *messageRepoStub) GetByID(string) (*entity.Message, error) { return nil, nil }
func (r *messageRepoStub) GetByWhatsAppID(wamid string) (*entity.Message, error) {
	for _, m := range r.messages {
		if m.WhatsAppMessageID == wamid {
			return m, nil
		}
	}
	return nil, nil
}
func (r *messageRepoStub) ListByCustomer(string, int, int) ([]*entity.Message, error) {
	return r.messages, nil
}
func (r *messageRepoStub) List(int, int) ([]*entity.Message, error) { return r.messages, nil }
func (r *messageRepoStub) Update(*entity.Message) error             { return nil }

type licenseRepoStub struct {
	licenses []*entity.License
}

func (r *licenseRepoStub) Create(l *entity.License) error { r.licenses = append(r.licenses, l); return nil }
func (r *licenseRepoStub) GetByID(string) (*entity.License, error)       { return nil, nil }
func (r *licenseRepoStub) FindByPortalID(string) (*entity.License, error) { return nil, nil }
func (r *licenseRepoStub) ListByCustomer(string) ([]*entity.License, error) {
	return nil, nil
}

type companyRepoStub struct {
	companies []*entity.Company
}

func (r *companyRepoStub) Create(c *entity.Company) error { r.companies = append(r.companies, c); return nil }
func (r *companyRepoStub) GetByID(string) (*entity.Company, error) { return nil, nil }
func (r *companyRepoStub) FindByName(name string) (*entity.Company, error) {
	for _, c := range r.companies {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}
func (r *companyRepoStub) List(int, int) ([]*entity.Company, error) { return r.companies, nil }

type transportStub struct{}

func (transportStub) SendText(_ context.Context, _, _ string) (string, error) {
	return "wamid.STUB", nil
}
func (transportStub) SendTemplate(_ context.Context, _, _ string, _ []string) (string, error) {
	return "wamid.STUB", nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Montagem do app de teste
// ──────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	app       *fiber.App
	customers *customerRepoStub
	messages  *messageRepoStub
	tracker   *messaging.StatusTracker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Nop()

	customers := &customerRepoStub{}
	messages := &messageRepoStub{}
	licenses := &licenseRepoStub{}
	companies := &companyRepoStub{}
	tracker := messaging.NewStatusTracker(messages, log)

	// Não chama Start: as mensagens ficam na fila, suficiente para os handlers.
	dispatcher := messaging.NewDispatcher(messaging.DispatcherConfig{}, transportStub{}, tracker, log)
	uc := messaging.NewMessageUseCase(customers, messages, dispatcher, log)
	deferred := webhook.NewDeferredQueue(log)
	receiver := webhook.NewReceiver(dedup.NewMemoryStore(time.Hour), customers, licenses, uc, deferred, "55", log)

	pipeline := importer.NewPipeline(customers, importer.RowValidator{CountryCode: "55"}, nil, log)

	wa := whatsapp.NewClient(whatsapp.Config{
		APIURL: "http://localhost", PhoneNumberID: "1", AccessToken: "t", VerifyToken: "segredo",
	}, log)

	app := fiber.New()
	httpiface.Router(app, httpiface.RouterDeps{
		ImportPipeline: pipeline,
		MessageUC:      uc,
		Tracker:        tracker,
		Receiver:       receiver,
		WhatsApp:       wa,
		Customers:      customers,
		Companies:      companies,
		Log:            log,
	})
	return &testEnv{app: app, customers: customers, messages: messages, tracker: tracker}
}

func decodeBody(t *testing.T, resp *nethttp.Response, out any) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out))
}

// ──────────────────────────────────────────────────────────────────────────────
// Testes
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestCSVUpload_LoteValido(t *testing.T) {
	env := newTestEnv(t)

	csv := "nome,telefone,tipo_licenca\nJoão Silva,11999999999,Start\nMaria Souza,11888888888,Hub\n"
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "clientes.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/csv/upload?send_welcome=false", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var report importer.Report
	decodeBody(t, resp, &report)
	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Len(t, env.customers.customers, 2)
}

func TestCSVUpload_ErroEstruturalDevolve400(t *testing.T) {
	env := newTestEnv(t)

	csv := "cliente,telefone,tipo_licenca\nJoão Silva,11999999999,Start\n"
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, _ := w.CreateFormFile("file", "clientes.csv")
	_, _ = part.Write([]byte(csv))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/csv/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestCSVUpload_SemArquivoDevolve400(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest("POST", "/api/csv/upload", strings.NewReader(""))
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestCustomersList_FiltroPorLicenca(t *testing.T) {
	env := newTestEnv(t)
	env.customers.customers = []*entity.Customer{
		{ID: "c1", Name: "João", Phone: "5511999999999", LicenseType: entity.LicenseStart, Active: true},
		{ID: "c2", Name: "Maria", Phone: "5511888888888", LicenseType: entity.LicenseHub, Active: true},
	}

	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/customers/?license_type=Hub", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var out struct {
		Customers []map[string]any `json:"customers"`
	}
	decodeBody(t, resp, &out)
	require.Len(t, out.Customers, 1)
	assert.Equal(t, "Maria", out.Customers[0]["name"])
}

func TestCustomerGetByID(t *testing.T) {
	env := newTestEnv(t)
	env.customers.customers = []*entity.Customer{
		{ID: "c1", Name: "João", Phone: "5511999999999", LicenseType: entity.LicenseStart},
	}

	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/customers/c1", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest("GET", "/api/customers/inexistente", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestCompanies_CreateEListagem(t *testing.T) {
	env := newTestEnv(t)

	body := `{"name":"Acme Ltda","email":"contato@acme.com.br"}`
	req := httptest.NewRequest("POST", "/api/companies/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	// Nome duplicado
	req = httptest.NewRequest("POST", "/api/companies/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest("GET", "/api/companies/", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var out []map[string]any
	decodeBody(t, resp, &out)
	require.Len(t, out, 1)
	assert.Equal(t, "Acme Ltda", out[0]["name"])
	assert.Equal(t, "active", out[0]["status"])
}

func TestCustomersList_LicencaInvalidaDevolve400(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/customers/?license_type=Gold", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestWebhookLicenseCreated_AceitaEAdia(t *testing.T) {
	env := newTestEnv(t)

	body := `{"event":"license.created","portal_id":"LIC-1","customer_phone":"11999999999","license_type":"Starter"}`
	req := httptest.NewRequest("POST", "/api/webhooks/license-created", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var out map[string]any
	decodeBody(t, resp, &out)
	// Cliente desconhecido: aceito e adiado para reprocessamento
	assert.Equal(t, "deferred", out["status"])
}

func TestWebhookLicenseCreated_ReentregaDuplicada(t *testing.T) {
	env := newTestEnv(t)
	env.customers.customers = []*entity.Customer{
		{ID: "c1", Name: "João", Phone: "5511999999999", LicenseType: entity.LicenseStart, Active: true},
	}

	body := `{"portal_id":"LIC-2","customer_phone":"5511999999999","license_type":"Hub"}`
	for i, want := range []string{"accepted", "duplicate"} {
		req := httptest.NewRequest("POST", "/api/webhooks/license-created", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode, "entrega %d", i)

		var out map[string]any
		decodeBody(t, resp, &out)
		assert.Equal(t, want, out["status"], "entrega %d", i)
	}
}

func TestWebhookLicenseCreated_TipoInvalidoDevolve400(t *testing.T) {
	env := newTestEnv(t)
	body := `{"portal_id":"LIC-3","customer_phone":"5511999999999","license_type":"Gold"}`
	req := httptest.NewRequest("POST", "/api/webhooks/license-created", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestWhatsAppVerify(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.app.Test(httptest.NewRequest("GET",
		"/api/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=segredo&hub.challenge=42", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "42", string(body))

	resp, err = env.app.Test(httptest.NewRequest("GET",
		"/api/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=errado&hub.challenge=42", nil))
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestWhatsAppStatus_AplicaRecibos(t *testing.T) {
	env := newTestEnv(t)

	msg := &entity.Message{
		ID: "m1", CustomerID: "c1", Phone: "5511999999999",
		Type: entity.MessageText, Status: entity.StatusPending,
	}
	require.NoError(t, env.messages.Create(msg))
	require.NoError(t, env.tracker.MarkSubmitted(msg, "wamid.ABC"))
	require.NoError(t, env.tracker.MarkSent(msg))

	body := `{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{"statuses":[{"id":"wamid.ABC","status":"delivered"}]}}]}]}`
	req := httptest.NewRequest("POST", "/api/webhooks/whatsapp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var out map[string]any
	decodeBody(t, resp, &out)
	assert.Equal(t, float64(1), out["applied"])
	assert.Equal(t, entity.StatusDelivered, msg.Status)
}
