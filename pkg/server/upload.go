package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/chazu/mindscape/pkg/mindmap"
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
)

// uploadRequest is the body of POST /api/mindmap, as sent by the upload
// dialog: the file as a data URL plus its MIME type and name.
type uploadRequest struct {
	FileData string `json:"fileData"`
	FileType string `json:"fileType"`
	FileName string `json:"fileName"`
}

// uploadResponse is the reply envelope. Problems lists validation errors
// when a map is rejected; Warnings lists advisory findings on success.
type uploadResponse struct {
	Success  bool         `json:"success"`
	MindMap  *mindmap.Map `json:"mindMap,omitempty"`
	Error    string       `json:"error,omitempty"`
	Problems []string     `json:"problems,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

func setCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Debug("writing response failed")
	}
}

func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	m := s.Map()
	if m == nil {
		writeJSON(w, http.StatusNotFound, uploadResponse{Error: "No mind map loaded"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="mindmap.json"`)
	if err := mindmap.Encode(w, m); err != nil {
		log.WithError(err).Warn("exporting mind map failed")
	}
}

// handleUpload ingests an uploaded mind map. JSON files are decoded and
// validated; a valid map replaces the shared one. Image extraction is not
// available and anything else is rejected.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	status, resp, outcome := s.ingest(w, r)
	s.metrics.uploads.WithLabelValues(outcome).Inc()
	writeJSON(w, status, resp)
}

func (s *Server) ingest(w http.ResponseWriter, r *http.Request) (int, uploadResponse, string) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge,
				uploadResponse{Error: "File too large"}, outcomeTooLarge
		}
		return http.StatusBadRequest,
			uploadResponse{Error: "Invalid request body"}, outcomeBadRequest
	}

	logger := log.WithFields(log.Fields{"file": req.FileName, "type": req.FileType})
	logger.Info("processing upload")

	switch {
	case req.FileType == "application/json":
		m, err := mindmap.DecodeDataURL(req.FileData)
		if err != nil {
			logger.WithError(err).Warn("upload is not a valid mind-map JSON")
			return http.StatusBadRequest,
				uploadResponse{Error: "Invalid JSON format"}, outcomeInvalidJSON
		}
		vr := mindmap.ValidateAll(m)
		if !vr.OK() {
			resp := uploadResponse{Error: "Invalid mind map"}
			for _, e := range vr.Errors {
				resp.Problems = append(resp.Problems, e.Error())
			}
			return http.StatusUnprocessableEntity, resp, outcomeInvalidMap
		}
		resp := uploadResponse{Success: true, MindMap: m}
		for _, wn := range vr.Warnings {
			resp.Warnings = append(resp.Warnings, wn.NodeID+": "+wn.Message)
		}
		s.SetMap(m)
		return http.StatusOK, resp, outcomeOK

	case strings.HasPrefix(req.FileType, "image/"):
		return http.StatusNotImplemented,
			uploadResponse{Error: "Extracting mind maps from images is not supported"}, outcomeNotImplemented

	default:
		return http.StatusBadRequest,
			uploadResponse{Error: "Unsupported file type"}, outcomeUnsupported
	}
}
