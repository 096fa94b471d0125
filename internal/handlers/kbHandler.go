package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nkodali/KBaseAPI/internal/adapter"
	"github.com/nkodali/KBaseAPI/internal/adapter/utils"
	"github.com/nkodali/KBaseAPI/internal/api"
	"github.com/nkodali/KBaseAPI/internal/config"
	"github.com/nkodali/KBaseAPI/internal/domain/kbError"
	"github.com/nkodali/KBaseAPI/internal/domain/kbModel"
	"github.com/nkodali/KBaseAPI/internal/rag"
	"github.com/nkodali/KBaseAPI/internal/rag/ingest"
	"github.com/nkodali/KBaseAPI/pkg/logger_i"
)

var (
	handlerInstance *KBHandler //private singleton
	once            sync.Once
	logKB           *logger_i.Logger
)

type KBHandler struct {
	service rag.Service
}

func InitKBHandler(kbService rag.Service) {
	once.Do(func() {
		handlerInstance = &KBHandler{service: kbService}

		logKB = logger_i.NewLogger("KBHandler")
		logKB.Info("Starting knowledge base handler")
	})
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// SearchHandler godoc
// @Summary      Search the knowledge base
// @Description  Embeds the query, retrieves the most similar chunks, and returns a synthesized answer with sources and a confidence score.
// @Tags         Search
// @Accept       json
// @Produce      json
// @Param        request  body      api.SearchRequest   true  "Query and optional top_k (defaults to 5)"
// @Success      200      {object}  api.SearchResponse  "Answer with sources"
// @Failure      400      {object}  api.ErrorResponse   "Empty query or non-positive top_k"
// @Failure      409      {object}  api.ErrorResponse   "No documents indexed yet"
// @Failure      502      {object}  api.ErrorResponse   "Embedding service unavailable"
// @Router       /api/search [post]
func SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logKB.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	var requestData api.SearchRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logKB.Error("Couldn't close the search request reader :", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		logKB.Warn("Bad search request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, kbError.KindValidation, "request body must be valid JSON")
		return
	}

	if requestData.TopK == 0 {
		requestData.TopK = config.DefaultTopK
	}

	result, err := handlerInstance.service.Search(r.Context(), requestData.Query, requestData.TopK)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToSearchResponse(result))
}

// UploadHandler godoc
// @Summary      Upload documents
// @Description  Receives one or more files via multipart/form-data, extracts their text, and indexes them. Returns per-file results; 207 when only some files succeeded.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        files  formData  file  true  "PDF, DOCX, TXT, RTF or ODT files to index"
// @Success      200    {object}  api.UploadResponse  "All files indexed"
// @Success      207    {object}  api.UploadResponse  "Some files indexed, some failed"
// @Failure      400    {object}  api.UploadResponse  "No file indexed"
// @Failure      500    {object}  api.ErrorResponse   "Storage error"
// @Router       /api/upload [post]
func UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logKB.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logKB.Error("Couldn't get target directory :", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, kbError.KindConfiguration, errString)
		return
	}

	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, kbError.KindValidation, "File too large or bad request")
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, kbError.KindValidation, "no files in request, use the 'files' form field")
		return
	}

	response := api.UploadResponse{Uploaded: []api.DocumentSummary{}}
	for _, header := range fileHeaders {
		doc, err := handlerInstance.ingestUploadedFile(r, targetDir, header)
		if err != nil {
			logKB.Warn("File rejected", "filename", header.Filename, "error", err)
			response.Errors = append(response.Errors, api.UploadError{
				Filename: header.Filename,
				Message:  kbError.MessageOf(err),
			})
			continue
		}
		response.Uploaded = append(response.Uploaded, adapter.ToDocumentSummary(doc))
	}
	response.TotalDocuments = len(handlerInstance.service.ListDocuments(r.Context()))

	status := http.StatusOK
	switch {
	case len(response.Uploaded) == 0:
		status = http.StatusBadRequest
	case len(response.Errors) > 0:
		status = http.StatusMultiStatus
	}
	writeJsonResponse(w, status, response)
}

// ListDocumentsHandler godoc
// @Summary      List indexed documents
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.ListDocumentsResponse
// @Router       /api/documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logKB.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	docs := handlerInstance.service.ListDocuments(r.Context())
	writeJsonResponse(w, http.StatusOK, adapter.ToListDocumentsResponse(docs))
}

// DeleteDocumentHandler godoc
// @Summary      Remove a document
// @Description  Removes the document and all of its indexed chunks. Subsequent searches will not surface its content.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      204  "Document removed"
// @Failure      404  {object}  api.ErrorResponse  "Unknown document ID"
// @Router       /api/documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logKB.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	docID := utils.GetChiURLParam(r, "id")
	if err := handlerInstance.service.RemoveDocument(r.Context(), docID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearHandler godoc
// @Summary      Clear the knowledge base
// @Description  Removes every document and chunk. The knowledge base returns to its initial empty state.
// @Tags         Documents
// @Produce      json
// @Success      204  "Knowledge base cleared"
// @Router       /api/clear [post]
func ClearHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logKB.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	if err := handlerInstance.service.ClearAll(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthHandler godoc
// @Summary      Service health
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /api/health [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, adapter.ToHealthResponse(handlerInstance.service.Health(r.Context())))
}

// private methods

// ingestUploadedFile stages the upload on disk long enough to run text
// extraction, then indexes the text under the original filename. The
// staged copy is always removed, indexed or not.
func (h *KBHandler) ingestUploadedFile(r *http.Request, targetDir string, header *multipart.FileHeader) (doc kbModel.Document, err error) {
	if ingest.GetDocType(header.Filename) == ingest.ERR {
		return doc, kbError.New(kbError.KindValidation,
			fmt.Sprintf("unsupported file type: %s", filepath.Ext(header.Filename)))
	}

	fileReader, err := header.Open()
	if err != nil {
		return doc, kbError.Wrap(kbError.KindValidation, "could not read uploaded file", err)
	}
	defer fileReader.Close()

	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(header.Filename))
	tempFilePath := filepath.Join(targetDir, filename)
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		return doc, kbError.Wrap(kbError.KindConfiguration, "storage error", err)
	}
	defer os.Remove(tempFilePath)

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		destinationFileWriter.Close()
		return doc, kbError.Wrap(kbError.KindConfiguration, "write error", err)
	}
	destinationFileWriter.Close()

	text, err := ingest.ExtractText(tempFilePath)
	if err != nil {
		return doc, err
	}

	return h.service.AddDocument(r.Context(), header.Filename, text, header.Size)
}
