package handler

import (
	"strconv"

	"github.com/filedepot/filedepot/internal/domain"
	"github.com/filedepot/filedepot/internal/middleware"
	"github.com/filedepot/filedepot/internal/service"
	"github.com/gofiber/fiber/v2"
)

// FilesHandler handles HTTP requests for file operations
type FilesHandler struct {
	files *service.FileService
	auth  *service.AuthService
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(files *service.FileService, auth *service.AuthService) *FilesHandler {
	return &FilesHandler{
		files: files,
		auth:  auth,
	}
}

type createFileRequest struct {
	Name     string           `json:"name"`
	Type     string           `json:"type"`
	ParentID domain.ParentRef `json:"parentId"`
	IsPublic bool             `json:"isPublic"`
	Data     string           `json:"data"`
}

// PostUpload handles POST /files
func (h *FilesHandler) PostUpload(c *fiber.Ctx) error {
	var req createFileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	file, err := h.files.Create(c.Context(), service.CreateFileInput{
		UserID:   middleware.GetUserID(c),
		Name:     req.Name,
		Type:     req.Type,
		Parent:   req.ParentID,
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(file)
}

// GetShow handles GET /files/:id
func (h *FilesHandler) GetShow(c *fiber.Ctx) error {
	file, err := h.files.Get(c.Context(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(file)
}

// GetIndex handles GET /files?parentId=&page=
func (h *FilesHandler) GetIndex(c *fiber.Ctx) error {
	parent := domain.ParentRefFromString(c.Query("parentId", "0"))
	page := c.QueryInt("page", 0)

	files, err := h.files.List(c.Context(), middleware.GetUserID(c), parent, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(files)
}

// PutPublish handles PUT /files/:id/publish
func (h *FilesHandler) PutPublish(c *fiber.Ctx) error {
	return h.setVisibility(c, true)
}

// PutUnpublish handles PUT /files/:id/unpublish
func (h *FilesHandler) PutUnpublish(c *fiber.Ctx) error {
	return h.setVisibility(c, false)
}

func (h *FilesHandler) setVisibility(c *fiber.Ctx, public bool) error {
	file, err := h.files.SetVisibility(c.Context(), middleware.GetUserID(c), c.Params("id"), public)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(file)
}

// GetFile handles GET /files/:id/data. Authentication is optional here:
// public files are served to anonymous callers, and a bad token is treated
// the same as no token.
func (h *FilesHandler) GetFile(c *fiber.Ctx) error {
	callerID, _ := h.auth.Authenticate(c.Context(), c.Get(middleware.TokenHeader))

	size := 0
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return respondError(c, domain.ErrInvalidSize)
		}
		size = n
	}

	reader, contentType, err := h.files.Content(c.Context(), callerID, c.Params("id"), size)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.SendStream(reader)
}
