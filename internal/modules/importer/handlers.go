package importer

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// maxUploadBytes caps how much of an upload batch is held in memory
// (32 MB); larger uploads spill to disk
const maxUploadBytes = 32 << 20

// Handlers contains HTTP handlers for the import API
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new import handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "import").Logger(),
	}
}

// HandlePreview previews one or more uploaded broker CSV files without
// committing anything.
// POST /api/import/preview (multipart: files, platform, account_type)
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	files, platform, _, cleanup, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	preview, err := h.service.PreviewBatch(files, platform)
	if err != nil {
		h.log.Error().Err(err).Str("platform", platform).Msg("Preview failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, preview)
}

// HandleImport commits an upload batch.
// POST /api/import (multipart: files, platform, account_type, skip_duplicates)
func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	files, platform, accountType, cleanup, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	skipDuplicates := true
	if raw := r.FormValue("skip_duplicates"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			skipDuplicates = parsed
		}
	}

	result, err := h.service.Commit(files, platform, accountType, skipDuplicates)
	if err != nil {
		h.log.Error().Err(err).Str("platform", platform).Msg("Import failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, result)
}

// parseUpload extracts the uploaded files and form fields shared by both
// endpoints. The files are returned open — uploads beyond the memory cap
// are disk-backed and unreadable once closed — and the caller must call
// cleanup after the service is done with them. On failure it writes the
// error response, closes anything already opened, and returns ok=false.
func (h *Handlers) parseUpload(w http.ResponseWriter, r *http.Request) (files []NamedFile, platform, accountType string, cleanup func(), ok bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart upload", http.StatusBadRequest)
		return nil, "", "", nil, false
	}

	platform = r.FormValue("platform")
	if _, err := GetParser(platform); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, "", "", nil, false
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		http.Error(w, "No files uploaded", http.StatusBadRequest)
		return nil, "", "", nil, false
	}

	var opened []io.Closer
	closeAll := func() {
		for _, c := range opened {
			_ = c.Close()
		}
	}

	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			h.log.Error().Err(err).Str("file", header.Filename).Msg("Failed to open upload")
			http.Error(w, "Failed to read uploaded file", http.StatusBadRequest)
			closeAll()
			return nil, "", "", nil, false
		}
		opened = append(opened, f)
		files = append(files, NamedFile{Name: header.Filename, Reader: f})
	}

	return files, platform, r.FormValue("account_type"), closeAll, true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
