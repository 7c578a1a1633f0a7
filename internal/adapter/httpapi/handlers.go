package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/SashaDiz/real-estate-directory/internal/property/domain"
	"github.com/SashaDiz/real-estate-directory/internal/property/query"
	"github.com/SashaDiz/real-estate-directory/internal/property/usecase"
)

// DirectoryService is the property directory contract the handlers
// bind to.
type DirectoryService interface {
	List(ctx context.Context) ([]*domain.Property, error)
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	Create(ctx context.Context, property *domain.Property) (*domain.Property, error)
	Update(ctx context.Context, id string, fields *domain.Property) (*domain.Property, error)
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) (int64, error)
	IncrementContactRequests(ctx context.Context, id string) (int64, error)
}

type ImageService interface {
	Upload(ctx context.Context, files []usecase.UploadFile) ([]string, error)
	Delete(ctx context.Context, filename string) error
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Authenticate(token string) (*usecase.Claims, error)
}

// uploadBodyLimit bounds a whole multipart request: a full batch of
// max-size files plus form overhead.
const uploadBodyLimit = domain.MaxImagesPerProperty*usecase.MaxImageSize + 1<<20

type Handler struct {
	directory DirectoryService
	images    ImageService
	auth      AuthService
	logger    *zap.Logger
	validate  *validator.Validate
}

func NewHandler(directory DirectoryService, images ImageService, auth AuthService, logger *zap.Logger) *Handler {
	return &Handler{
		directory: directory,
		images:    images,
		auth:      auth,
		logger:    logger,
		validate:  validator.New(),
	}
}

// propertyRequest is the create/update payload. Persistence stays
// schema-loose; the invariants live here at the request boundary.
type propertyRequest struct {
	Title            string       `json:"title" validate:"required"`
	Type             string       `json:"type"`
	Status           string       `json:"status" validate:"omitempty,oneof=for-sale for-rent"`
	Price            float64      `json:"price" validate:"gte=0"`
	Area             float64      `json:"area" validate:"gte=0"`
	Location         string       `json:"location"`
	Address          string       `json:"address"`
	Layout           string       `json:"layout"`
	Description      string       `json:"description"`
	Images           []string     `json:"images" validate:"max=10"`
	Coordinates      []float64    `json:"coordinates" validate:"omitempty,len=2"`
	Agent            domain.Agent `json:"agent"`
	IsFeatured       bool         `json:"isFeatured"`
	InvestmentReturn string       `json:"investmentReturn"`
}

func (h *Handler) decodeProperty(r *http.Request) (*domain.Property, error) {
	var req propertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return &domain.Property{
		Title:            req.Title,
		Type:             req.Type,
		Status:           domain.PropertyStatus(req.Status),
		Price:            req.Price,
		Area:             req.Area,
		Location:         req.Location,
		Address:          req.Address,
		Layout:           req.Layout,
		Description:      req.Description,
		Images:           req.Images,
		Coordinates:      req.Coordinates,
		Agent:            req.Agent,
		IsFeatured:       req.IsFeatured,
		InvestmentReturn: req.InvestmentReturn,
	}, nil
}

// HandleListProperties returns the whole collection. When filter or
// sort query parameters are present the in-memory pipeline is applied
// server-side; without them the list is returned as-is.
func (h *Handler) HandleListProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := h.directory.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list properties", zap.Error(err))
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	filters := query.Filters{
		Search:      q.Get("search"),
		Type:        q.Get("type"),
		Status:      q.Get("status"),
		PriceRange:  q.Get("price"),
		AreaRange:   q.Get("area"),
		ReturnRange: q.Get("return"),
	}
	if !filters.IsZero() {
		properties = query.Filter(properties, filters)
	}
	if sortKey := q.Get("sort"); sortKey != "" {
		properties = query.Sort(properties, sortKey)
	}

	writeJSON(w, http.StatusOK, properties)
}

func (h *Handler) HandleGetProperty(w http.ResponseWriter, r *http.Request) {
	property, err := h.directory.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, property)
}

func (h *Handler) HandleCreateProperty(w http.ResponseWriter, r *http.Request) {
	property, err := h.decodeProperty(r)
	if err != nil {
		writeError(w, err)
		return
	}
	created, err := h.directory.Create(r.Context(), property)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) HandleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	fields, err := h.decodeProperty(r)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.directory.Update(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) HandleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	if err := h.directory.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) HandleIncrementViews(w http.ResponseWriter, r *http.Request) {
	views, err := h.directory.IncrementViews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"views": views})
}

func (h *Handler) HandleIncrementContactRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.directory.IncrementContactRequests(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"contactRequests": requests})
}

func (h *Handler) HandleUploadImages(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, uploadBodyLimit)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	headers := r.MultipartForm.File["images"]

	files := make([]usecase.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, err := readUpload(header)
		if err != nil {
			writeError(w, err)
			return
		}
		files = append(files, file)
	}

	urls, err := h.images.Upload(r.Context(), files)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"imageUrls": urls})
}

func readUpload(header *multipart.FileHeader) (usecase.UploadFile, error) {
	f, err := header.Open()
	if err != nil {
		return usecase.UploadFile{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return usecase.UploadFile{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return usecase.UploadFile{
		FieldName:   "images",
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *Handler) HandleDeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.images.Delete(r.Context(), chi.URLParam(r, "filename")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	user, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"username": user.Username})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
