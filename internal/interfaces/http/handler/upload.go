package handler

import (
	"context"
	"io"
	"path"
	"time"

	apinvoiceapp "github.com/freightdesk/backend/internal/application/apinvoice"
	"github.com/freightdesk/backend/internal/domain/apinvoice"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/interfaces/http/dto"
	"github.com/freightdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentUploader stores uploaded invoice documents
type DocumentUploader interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
}

// UploadProcessor runs the extraction pipeline for an upload
type UploadProcessor interface {
	ProcessUpload(ctx context.Context, uploadID uuid.UUID) (*apinvoiceapp.ProcessResult, error)
}

// UploadHandler manages uploaded carrier invoice documents
type UploadHandler struct {
	BaseHandler
	uploads   apinvoice.UploadRepository
	documents DocumentUploader
	processor UploadProcessor
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploads apinvoice.UploadRepository, documents DocumentUploader, processor UploadProcessor) *UploadHandler {
	return &UploadHandler{
		uploads:   uploads,
		documents: documents,
		processor: processor,
	}
}

// UploadResponse is the API view of an upload record
// @name HandlerUploadResponse
type UploadResponse struct {
	ID             string                        `json:"id"`
	FileName       string                        `json:"file_name"`
	ContentType    string                        `json:"content_type"`
	Status         string                        `json:"status"`
	Classification *apinvoice.PageClassification `json:"classification,omitempty"`
	FailureReason  string                        `json:"failure_reason,omitempty"`
	ProcessedAt    *time.Time                    `json:"processed_at,omitempty"`
	CreatedAt      time.Time                     `json:"created_at"`
	UpdatedAt      time.Time                     `json:"updated_at"`
}

func toUploadResponse(u *apinvoice.UploadRecord) UploadResponse {
	return UploadResponse{
		ID:             u.ID.String(),
		FileName:       u.FileName,
		ContentType:    u.ContentType,
		Status:         u.Status.String(),
		Classification: u.Classification,
		FailureReason:  u.FailureReason,
		ProcessedAt:    u.ProcessedAt,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// Create godoc
// @ID           createUpload
// @Summary      Upload a carrier invoice document
// @Description  Stores the document and registers an upload record for processing
// @Tags         ap-uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Invoice document"
// @Success      201 {object} APIResponse[UploadResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /ap/uploads [post]
func (h *UploadHandler) Create(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A document file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	storageKey := path.Join("ap-invoices", uuid.New().String(), fileHeader.Filename)
	if err := h.documents.Upload(c.Request.Context(), storageKey, data, contentType); err != nil {
		h.ErrorWithCode(c, dto.ErrCodeExternalService, "Failed to store uploaded document")
		return
	}

	upload, err := apinvoice.NewUploadRecord(fileHeader.Filename, contentType, storageKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.uploads.Save(c.Request.Context(), upload); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toUploadResponse(upload))
}

// Get godoc
// @ID           getUpload
// @Summary      Get an upload record
// @Tags         ap-uploads
// @Produce      json
// @Param        id path string true "Upload ID"
// @Success      200 {object} APIResponse[UploadResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /ap/uploads/{id} [get]
func (h *UploadHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid upload ID")
		return
	}

	upload, err := h.uploads.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toUploadResponse(upload))
}

// List godoc
// @ID           listUploads
// @Summary      List upload records
// @Tags         ap-uploads
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]UploadResponse]
// @Router       /ap/uploads [get]
func (h *UploadHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}

	uploads, err := h.uploads.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]UploadResponse, 0, len(uploads))
	for _, u := range uploads {
		responses = append(responses, toUploadResponse(u))
	}

	h.Success(c, responses)
}

// Process godoc
// @ID           processUpload
// @Summary      Process an upload
// @Description  Runs page classification, structured extraction and shipment matching
// @Tags         ap-uploads
// @Produce      json
// @Param        id path string true "Upload ID"
// @Success      200 {object} APIResponse[apinvoiceapp.ProcessResult]
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /ap/uploads/{id}/process [post]
func (h *UploadHandler) Process(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid upload ID")
		return
	}

	result, err := h.processor.ProcessUpload(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
