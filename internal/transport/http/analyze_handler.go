package http

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tabcast/internal/config"
	apierrors "tabcast/internal/errors"
	"tabcast/internal/ingest"
	"tabcast/internal/services"
	"tabcast/internal/validation"
)

// AnalyzeHandler handles file analysis uploads.
type AnalyzeHandler struct {
	service   *services.AnalysisService
	validator *validation.Validator
	upload    config.UploadConfig
	logger    *slog.Logger
}

// NewAnalyzeHandler creates the upload handler.
func NewAnalyzeHandler(service *services.AnalysisService, upload config.UploadConfig, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		service:   service,
		validator: validation.New(),
		upload:    upload,
		logger:    logger.With(slog.String("handler", "analyze")),
	}
}

// Routes returns the analysis routes.
func (h *AnalyzeHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/", h.Analyze)
	r.Post("/batch", h.AnalyzeBatch)
	return r
}

// Analyze handles POST /api/analyze: one multipart file in the "file"
// field, optional price_column and date_column form overrides.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	upload, opts, apiErr := h.readUpload(r)
	if apiErr != nil {
		apierrors.WriteError(w, apiErr)
		return
	}

	result, err := h.service.Analyze(r.Context(), upload.Data, upload.Name, opts)
	if err != nil {
		h.writeAnalyzeError(w, r, upload.Name, err)
		return
	}

	render.JSON(w, r, result)
}

// AnalyzeBatch handles POST /api/analyze/batch: every multipart file in
// the request is analyzed; per-file failures are reported in place and
// never fail the batch.
func (h *AnalyzeHandler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.upload.MaxBytes); err != nil {
		apierrors.WriteError(w, h.multipartError(err))
		return
	}

	opts, apiErr := h.readOptions(r)
	if apiErr != nil {
		apierrors.WriteError(w, apiErr)
		return
	}

	var files []services.UploadFile
	for _, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			if len(files) == h.upload.MaxBatchFiles {
				apierrors.WriteError(w, apierrors.ErrValidation("files",
					"Too many files in one batch"))
				return
			}
			data, name, apiErr := readPart(fh, h.upload.MaxBytes)
			if apiErr != nil {
				apierrors.WriteError(w, apiErr)
				return
			}
			files = append(files, services.UploadFile{Name: name, Data: data})
		}
	}
	if len(files) == 0 {
		apierrors.WriteError(w, apierrors.ErrMissingFile)
		return
	}

	items := h.service.AnalyzeBatch(r.Context(), files, opts)

	render.JSON(w, r, map[string]any{
		"count": len(items),
		"items": items,
	})
}

type uploadPart struct {
	Name string
	Data []byte
}

// readUpload extracts the single "file" part and the analysis options.
func (h *AnalyzeHandler) readUpload(r *http.Request) (*uploadPart, services.AnalyzeOptions, *apierrors.APIError) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.upload.MaxBytes)
	if err := r.ParseMultipartForm(h.upload.MaxBytes); err != nil {
		return nil, services.AnalyzeOptions{}, h.multipartError(err)
	}

	opts, apiErr := h.readOptions(r)
	if apiErr != nil {
		return nil, services.AnalyzeOptions{}, apiErr
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, services.AnalyzeOptions{}, apierrors.ErrMissingFile
	}
	defer file.Close()

	if !h.upload.ExtensionAllowed(ingest.Extension(header.Filename)) {
		return nil, services.AnalyzeOptions{}, apierrors.ErrValidation("file",
			"File extension is not allowed")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, services.AnalyzeOptions{}, apierrors.ErrInvalidRequest
	}

	return &uploadPart{Name: header.Filename, Data: data}, opts, nil
}

func (h *AnalyzeHandler) readOptions(r *http.Request) (services.AnalyzeOptions, *apierrors.APIError) {
	opts := services.AnalyzeOptions{
		PriceColumn: r.FormValue("price_column"),
		DateColumn:  r.FormValue("date_column"),
	}
	if apiErr := h.validator.Struct(opts); apiErr != nil {
		return services.AnalyzeOptions{}, apiErr
	}
	return opts, nil
}

func (h *AnalyzeHandler) multipartError(err error) *apierrors.APIError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apierrors.ErrFileTooLarge
	}
	return apierrors.ErrInvalidRequest
}

// writeAnalyzeError maps service failures onto the API error shape.
func (h *AnalyzeHandler) writeAnalyzeError(w http.ResponseWriter, r *http.Request, filename string, err error) {
	var unknown *services.UnknownColumnError
	if errors.As(err, &unknown) {
		apierrors.WriteError(w, apierrors.ErrValidation(unknown.Role+"_column", unknown.Error()))
		return
	}

	apiErr := apierrors.FromIngest(err)
	h.logger.WarnContext(r.Context(), "analysis failed",
		slog.String("filename", filename),
		slog.String("error_code", apiErr.ErrorCode),
		slog.Int("status", apiErr.StatusCode))
	apierrors.WriteError(w, apiErr)
}

func readPart(fh *multipart.FileHeader, maxBytes int64) ([]byte, string, *apierrors.APIError) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", apierrors.ErrInvalidRequest
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, "", apierrors.ErrInvalidRequest
	}
	if int64(len(data)) > maxBytes {
		return nil, "", apierrors.ErrFileTooLarge
	}
	return data, fh.Filename, nil
}
