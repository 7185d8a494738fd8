package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/whats-middleware/internal/application/dto"
	"github.com/tu-usuario/whats-middleware/internal/application/importer"
)

// CSVHandler trata o upload de lotes de clientes em CSV.
type CSVHandler struct {
	pipeline *importer.Pipeline
}

// NewCSVHandler constrói o handler.
func NewCSVHandler(pipeline *importer.Pipeline) *CSVHandler {
	return &CSVHandler{pipeline: pipeline}
}

// Upload POST /api/csv/upload?send_welcome=true
//
// Multipart com o campo "file". A resposta traz o relatório completo do lote:
// sucesso parcial é 200 com as linhas rejeitadas discriminadas no corpo.
func (h *CSVHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "envie o CSV no campo multipart \"file\""})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: "não foi possível abrir o arquivo"})
	}
	defer file.Close()

	sendWelcome := c.QueryBool("send_welcome", true)

	report, err := h.pipeline.Import(c.UserContext(), file, sendWelcome)
	if err != nil {
		var structural *importer.StructuralError
		if errors.As(err, &structural) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_CSV", Message: structural.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(report)
}
