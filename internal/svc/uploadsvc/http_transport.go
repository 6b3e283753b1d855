package uploadsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/rglek0/Metadata-Editor/internal/domain"
	context_ "github.com/rglek0/Metadata-Editor/internal/infra/context"
	"github.com/rglek0/Metadata-Editor/internal/infra/logging"
	http_ "github.com/rglek0/Metadata-Editor/internal/infra/transport/http"
)

// ErrNoUploadFile is returned when the multipart form carries no image file.
var ErrNoUploadFile = errors.New("no upload file")

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig

	// MultipartFileName is the form field name for the uploaded image.
	// Default is "image".
	MultipartFileName string `env:"MULTIPART_FILE_NAME" default:"image"`

	// MultipartFormMaxMemory is the maximum allowed memory for multipart form uploads.
	// Default is 10MB.
	MultipartFormMaxMemory int64 `env:"MULTIPART_FORM_MAX_SIZE" default:"10485760"`

	// CookieName is the name of the session cookie.
	CookieName string `env:"COOKIE_NAME" default:"metasvc_session"`
}

// HTTPTransport handles HTTP requests for the upload service.
// It provides endpoints for uploading images, previewing embedded metadata
// and predicting stored filenames.
type HTTPTransport struct {
	uploadSvc  UploadService
	authorizer http_.SessionAuthorizer
	log        logging.Logger
	cfg        HTTPTransportConfig
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
// It requires an UploadService for handling business logic and a SessionAuthorizer
// for authentication.
func NewHTTPTransport(
	uploadSvc UploadService,
	authorizer http_.SessionAuthorizer,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	return &HTTPTransport{
		uploadSvc:  uploadSvc,
		authorizer: authorizer,
		log:        logging.GetLogger("svc.uploadsvc.http_transport"),
		cfg:        cfg,
	}
}

// ServeHTTP implements http.Handler and sets up routes for the upload service endpoints:
// - POST /upload: Commit an image with its metadata
// - POST /metadata: Read the metadata embedded in an image
// - GET /filename: Predict the stored name for a desired filename
// Routes are protected by session middleware.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", ht.HandleUpload)
	mux.HandleFunc("POST /metadata", ht.HandleMetadata)
	mux.HandleFunc("GET /filename", ht.HandleFilename)

	handler := http.Handler(mux)
	handler = http_.SessionMiddleware(handler, ht.authorizer, ht.cfg.CookieName, ht.log)

	handler.ServeHTTP(w, r)
}

// HandleUpload processes image upload requests.
// Expects a multipart form with the image file plus the metadata fields
// dateTaken, latitude, longitude, repair and useXmp.
// Returns the stored name and size as JSON.
func (ht *HTTPTransport) HandleUpload(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleUpload(w, r)
}

func (ht *HTTPTransport) handleUpload(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "upload failed", "error", err)
		} else {
			log.DebugContext(ctx, "upload succeeded")
		}
	}(r.Context())

	if principal, ok := context_.PrincipalFromContext(r.Context()); ok {
		log = log.With(logging.Group("user", "username", principal.Username))
	}

	file, header, err := ht.formFile(w, r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return err
	}
	defer file.Close()

	tags, err := parseTagSet(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return err
	}

	result, err := ht.uploadSvc.Store(r.Context(), header.Filename, file, tags)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFileTypeNotSupported):
			http.Error(w, http.StatusText(http.StatusUnsupportedMediaType), http.StatusUnsupportedMediaType)
		default:
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}

		return fmt.Errorf("store upload: %w", err)
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// HandleMetadata processes metadata preview requests.
// Expects a multipart form with the image file and returns the tags embedded
// in it as a JSON object.
func (ht *HTTPTransport) HandleMetadata(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleMetadata(w, r)
}

func (ht *HTTPTransport) handleMetadata(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "metadata preview failed", "error", err)
		} else {
			log.DebugContext(ctx, "metadata previewed")
		}
	}(r.Context())

	file, header, err := ht.formFile(w, r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return err
	}
	defer file.Close()

	tags, err := ht.uploadSvc.Preview(r.Context(), header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFileTypeNotSupported):
			http.Error(w, http.StatusText(http.StatusUnsupportedMediaType), http.StatusUnsupportedMediaType)
		default:
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}

		return fmt.Errorf("preview upload: %w", err)
	}

	if err := json.NewEncoder(w).Encode(tags); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// HandleFilename predicts the stored name for a desired filename.
// Expects the desired name in the "name" query parameter.
func (ht *HTTPTransport) HandleFilename(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleFilename(w, r)
}

func (ht *HTTPTransport) handleFilename(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "filename prediction failed", "error", err)
		} else {
			log.DebugContext(ctx, "filename predicted")
		}
	}(r.Context())

	desired := r.URL.Query().Get("name")

	predicted := ht.uploadSvc.PredictStoredName(r.Context(), desired)

	if err := json.NewEncoder(w).Encode(map[string]string{"storedName": predicted}); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

func (ht *HTTPTransport) formFile(
	w http.ResponseWriter,
	r *http.Request,
) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, ht.uploadSvc.MaxSize())

	if err := r.ParseMultipartForm(ht.cfg.MultipartFormMaxMemory); err != nil {
		return nil, nil, fmt.Errorf("parse multipart form: %w", err)
	}

	file, header, err := r.FormFile(ht.cfg.MultipartFileName)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNoUploadFile, err)
	}

	return file, header, nil
}

// parseTagSet reads the metadata form fields accompanying an upload.
// dateTaken is passed through as entered; latitude and longitude must parse
// as decimal degrees when present.
func parseTagSet(r *http.Request) (domain.TagSet, error) {
	tags := domain.TagSet{
		DateTaken:         r.FormValue("dateTaken"),
		RepairBeforeWrite: parseFormBool(r.FormValue("repair")),
		PreferAlternate:   parseFormBool(r.FormValue("useXmp")),
	}

	if raw := r.FormValue("latitude"); raw != "" {
		lat, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.TagSet{}, fmt.Errorf("%w: latitude: %w", domain.ErrValidation, err)
		}

		tags.Latitude = lat
	}

	if raw := r.FormValue("longitude"); raw != "" {
		lng, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.TagSet{}, fmt.Errorf("%w: longitude: %w", domain.ErrValidation, err)
		}

		tags.Longitude = lng
	}

	return tags, nil
}

func parseFormBool(value string) bool {
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}

	return parsed
}
