package api

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/insightdelivered/payment-summary-toolkit/internal/extractor"
	"github.com/insightdelivered/payment-summary-toolkit/internal/models"
	"github.com/insightdelivered/payment-summary-toolkit/internal/paysummary"
	"github.com/insightdelivered/payment-summary-toolkit/internal/writer"
)

const apiVersion = "1.1.0"

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success   bool                   `json:"success"`
	Error     string                 `json:"error,omitempty"`
	Metadata  *models.Metadata       `json:"metadata,omitempty"`
	GroupRows []models.CategoryRow   `json:"groupRows"`
	Providers []models.ProviderEntry `json:"providers"`
	CSV       string                 `json:"csv,omitempty"`
	Count     int                    `json:"count"`
	Version   string                 `json:"version,omitempty"`
}

// Handler holds the HTTP handlers for the API. The upload path uses the
// decoded text layer only; OCR is too slow for a synchronous endpoint.
type Handler struct {
	Acquirer *extractor.Acquirer
	Logger   *slog.Logger
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// App builds the fiber application with routes registered.
func (h *Handler) App() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             32 << 20,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/convert", h.HandleConvert)
	return app
}

// HandleHealth reports service liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": apiVersion,
	})
}

// HandleConvert accepts a multipart PDF upload, parses it from the decoded
// text layer, and returns the report as JSON with an inline CSV rendition
// of the group categories.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		return writeError(c, fiber.StatusBadRequest, "Only PDF files are supported.")
	}

	src, err := fh.Open()
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to read uploaded file.")
	}
	defer src.Close()

	tmpPath := filepath.Join(os.TempDir(), "summary-"+uuid.NewString()+".pdf")
	dst, err := os.Create(tmpPath)
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to create temp file.")
	}
	defer os.Remove(tmpPath)
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return writeError(c, fiber.StatusInternalServerError, "Failed to save uploaded file.")
	}
	dst.Close()

	layout := c.FormValue("layout", "raw")
	if layout != "raw" && layout != "layout" {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown layout: %q. Use raw or layout.", layout))
	}

	text, err := h.Acquirer.DecodedText(c.UserContext(), tmpPath, layout)
	if err != nil {
		h.logger().Error("text extraction failed", "file", fh.Filename, "err", err)
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF extraction failed: %v", err))
	}
	pages := extractor.SplitPages(text)
	if len(pages) == 0 {
		return writeError(c, fiber.StatusUnprocessableEntity, "No pages found in extracted text.")
	}

	parser := &paysummary.Parser{Logger: h.logger()}
	rep := parser.BuildReport(pages)

	var csvBuf bytes.Buffer
	cw := &writer.CSVWriter{}
	if err := cw.WriteGroupCategories(&csvBuf, rep.GroupRows); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	// nil slices marshal to JSON null, not [].
	groupRows := rep.GroupRows
	if groupRows == nil {
		groupRows = []models.CategoryRow{}
	}
	providers := rep.Providers
	if providers == nil {
		providers = []models.ProviderEntry{}
	}

	return c.JSON(ConvertResponse{
		Success:   true,
		Metadata:  &rep.Meta,
		GroupRows: groupRows,
		Providers: providers,
		CSV:       csvBuf.String(),
		Count:     len(providers),
		Version:   apiVersion,
	})
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success: false,
		Error:   msg,
	})
}
