package handler

import (
	"io"
	"net/http"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/api/response"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/service"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/upload"
	"github.com/rs/zerolog/log"
)

const previewLimit = 500

// UploadHandler handles file upload endpoints
type UploadHandler struct {
	processor   *upload.Processor
	chatService *service.ChatService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(processor *upload.Processor, chatService *service.ChatService) *UploadHandler {
	return &UploadHandler{processor: processor, chatService: chatService}
}

type uploadResponse struct {
	Success        bool   `json:"success"`
	Filename       string `json:"filename"`
	FileID         string `json:"file_id"`
	ContentPreview string `json:"content_preview"`
	Error          string `json:"error,omitempty"`
}

// Upload stores a file and records it in the session when one is given
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.processor.MaxBytes()+(1<<20))
	if err := r.ParseMultipartForm(h.processor.MaxBytes()); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "failed to read file")
		return
	}
	if int64(len(content)) > h.processor.MaxBytes() {
		response.Error(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 10MB.")
		return
	}

	if !h.processor.IsSupported(header.Filename) {
		response.Error(w, http.StatusBadRequest, "File type not supported.")
		return
	}

	info, err := h.processor.Save(content, header.Filename)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("failed to save upload")
		response.JSON(w, http.StatusOK, uploadResponse{
			Success:  false,
			Filename: header.Filename,
			Error:    err.Error(),
		})
		return
	}

	preview := h.processor.Preview(info)

	// An accompanying session id means the upload becomes part of the
	// conversation record.
	if sessionID := r.FormValue("session_id"); sessionID != "" {
		if err := h.chatService.AttachUpload(r.Context(), sessionID, header.Filename, preview); err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("failed to attach upload to session")
		}
	}

	if len(preview) > previewLimit {
		preview = preview[:previewLimit] + "..."
	}

	response.JSON(w, http.StatusOK, uploadResponse{
		Success:        true,
		Filename:       info.Filename,
		FileID:         info.Filename,
		ContentPreview: preview,
	})
}
