// Package whatsapp adapta a WhatsApp Cloud API ao transporte de envio.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tu-usuario/whats-middleware/pkg/logger"
)

const defaultTimeout = 30 * time.Second

// Config credenciais e endpoint da Cloud API.
type Config struct {
	APIURL        string // ex.: https://graph.facebook.com/v18.0
	PhoneNumberID string
	AccessToken   string
	VerifyToken   string
}

// Client envia mensagens via POST {APIURL}/{PhoneNumberID}/messages.
// O wamid devolvido na submissão correlaciona os recibos de status.
type Client struct {
	baseURL     string
	accessToken string
	verifyToken string
	httpClient  *http.Client
	log         *logger.Logger
}

// NewClient constrói o cliente da Cloud API.
func NewClient(cfg Config, log *logger.Logger) *Client {
	return &Client{
		baseURL:     fmt.Sprintf("%s/%s", strings.TrimRight(cfg.APIURL, "/"), cfg.PhoneNumberID),
		accessToken: cfg.AccessToken,
		verifyToken: cfg.VerifyToken,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		log:         log,
	}
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

type templatePayload struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Template         templateData `json:"template"`
}

type templateData struct {
	Name       string              `json:"name"`
	Language   templateLanguage    `json:"language"`
	Components []templateComponent `json:"components,omitempty"`
}

type templateLanguage struct {
	Code string `json:"code"`
}

type templateComponent struct {
	Type       string              `json:"type"`
	Parameters []templateParameter `json:"parameters"`
}

type templateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendText envia uma mensagem de texto livre. Devolve o wamid atribuído.
func (c *Client) SendText(ctx context.Context, phone, body string) (string, error) {
	payload := textPayload{
		MessagingProduct: "whatsapp",
		To:               onlyDigits(phone),
		Type:             "text",
		Text:             textBody{Body: body},
	}
	return c.post(ctx, payload)
}

// SendTemplate envia um template HSM aprovado na Meta, com os parâmetros
// injetados no corpo. Idioma fixo pt_BR.
func (c *Client) SendTemplate(ctx context.Context, phone, template string, params []string) (string, error) {
	data := templateData{
		Name:     template,
		Language: templateLanguage{Code: "pt_BR"},
	}
	if len(params) > 0 {
		comp := templateComponent{Type: "body"}
		for _, p := range params {
			comp.Parameters = append(comp.Parameters, templateParameter{Type: "text", Text: p})
		}
		data.Components = []templateComponent{comp}
	}
	payload := templatePayload{
		MessagingProduct: "whatsapp",
		To:               onlyDigits(phone),
		Type:             "template",
		Template:         data,
	}
	return c.post(ctx, payload)
}

// VerifyWebhook valida o handshake de assinatura do webhook da Cloud API
// (GET com hub.mode/hub.verify_token). Devolve o challenge a ecoar.
func (c *Client) VerifyWebhook(mode, token, challenge string) (string, bool) {
	if mode == "subscribe" && token == c.verifyToken {
		return challenge, true
	}
	return "", false
}

func (c *Client) post(ctx context.Context, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("serializar payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("montar requisição: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chamar cloud api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("ler resposta: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error().Int("status", resp.StatusCode).Str("body", string(raw)).
			Msg("cloud api recusou o envio")
		return "", fmt.Errorf("cloud api respondeu %d: %s", resp.StatusCode, string(raw))
	}

	var parsed sendResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decodificar resposta: %w", err)
	}
	if len(parsed.Messages) == 0 || parsed.Messages[0].ID == "" {
		return "", fmt.Errorf("resposta sem message id")
	}

	c.log.Debug().Str("wamid", parsed.Messages[0].ID).Msg("mensagem aceita pela cloud api")
	return parsed.Messages[0].ID, nil
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
