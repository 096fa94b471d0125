package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/nkodali/KBaseAPI/internal/adapter"
	"github.com/nkodali/KBaseAPI/internal/config"
	"github.com/nkodali/KBaseAPI/internal/domain/kbError"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logKB.Error("Error encoding response: %v", err)
	}
}

func validateContext(ctx context.Context) bool {
	logKB.With("traceId:", ctx.Value(config.TRACE_ID_KEY).(string))
	if ctx.Err() != nil {
		logKB.Warn("context error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logKB.Warn("context cancelled")
		return false
	default:
		return true

	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, kind kbError.Kind, message string) {
	writeJsonResponse(w, httpCode, adapter.ToErrorResponse(kind, message))
}

// writeDomainError picks the HTTP status from the error's kind so handlers
// never have to switch on kinds themselves.
func writeDomainError(w http.ResponseWriter, err error) {
	kind := kbError.KindOf(err)
	WriteErrorResponse(w, adapter.HttpStatusFor(kind), kind, kbError.MessageOf(err))
}

func getTargetDirectory() (string, string) {
	root, err := os.Getwd()
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(root, config.UploadDirectory)
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}
