package httpadapter

import (
	"net/http"
	"time"
)

const maxUploadBytes = 64 << 20

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingestor.Upload(
		r.Context(),
		projectID,
		callerID(r),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) analyzeDocument(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentID")

	started := time.Now()
	result, reused, err := rt.analyzer.RequestAnalysis(r.Context(), documentID, callerID(r))
	if rt.analysisObserver != nil {
		rt.analysisObserver.FinishAnalysis(time.Since(started), err)
	}
	if err != nil {
		rt.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"result": result,
		"reused": reused,
	})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentID")

	doc, err := rt.docs.GetByID(r.Context(), documentID)
	if err != nil {
		rt.writeError(w, err)
		return
	}

	response := map[string]any{"document": doc}
	if result, err := rt.results.GetByDocumentID(r.Context(), documentID); err == nil {
		response["result"] = result
	}
	writeJSON(w, http.StatusOK, response)
}
