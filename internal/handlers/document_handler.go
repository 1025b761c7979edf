package handlers

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-optimizer/internal/services"
)

const defaultPreviewWidth = 800

type DocumentHandler struct {
	loader      services.DocumentLoader
	workspace   *services.Workspace
	rasterizer  services.PageRasterizer
	maxFileSize int64
}

func NewDocumentHandler(
	loader services.DocumentLoader,
	workspace *services.Workspace,
	rasterizer services.PageRasterizer,
	maxFileSize int64,
) *DocumentHandler {
	return &DocumentHandler{
		loader:      loader,
		workspace:   workspace,
		rasterizer:  rasterizer,
		maxFileSize: maxFileSize,
	}
}

func (h *DocumentHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing 'file' in multipart form")
	}

	if h.maxFileSize > 0 && file.Size > h.maxFileSize {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("file too large. Max size: %d bytes", h.maxFileSize))
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("failed to read uploaded file: %w", err)
	}

	doc, err := h.loader.Load(c.UserContext(), file.Filename, file.Header.Get("Content-Type"), content)
	if err != nil {
		return err
	}
	h.workspace.Open(doc)

	return c.Status(fiber.StatusCreated).JSON(doc.ToResponse())
}

func (h *DocumentHandler) HandleCurrent(c *fiber.Ctx) error {
	doc, err := h.workspace.Current()
	if err != nil {
		return err
	}
	return c.JSON(doc.ToResponse())
}

// HandlePreview renders one page of the active document as PNG.
func (h *DocumentHandler) HandlePreview(c *fiber.Ctx) error {
	doc, err := h.workspace.Current()
	if err != nil {
		return err
	}

	page, err := c.ParamsInt("page")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid page number")
	}
	width := c.QueryInt("width", defaultPreviewWidth)
	if width <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "width must be positive")
	}

	if err := doc.CheckPage(page); err != nil {
		return err
	}

	ctx := c.UserContext()
	scale, err := h.rasterizer.FitWidthScale(ctx, doc, page, width)
	if err != nil {
		return err
	}
	buf, err := h.rasterizer.Render(ctx, doc, page, scale)
	if err != nil {
		return err
	}
	img, err := buf.PNG()
	if err != nil {
		return err
	}

	c.Type("png")
	return c.Send(img)
}
