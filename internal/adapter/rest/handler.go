package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/adapter/rest/middleware"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/listing/domain"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/listing/usecase"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/mailer"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/platform/logger"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/platform/metrics"
)

const maxUploadBytes = 10 << 20

// ListingService is the slice of the usecase the handlers need.
type ListingService interface {
	Create(ctx context.Context, userID string, in usecase.CreateListingInput) (*domain.Listing, error)
	Update(ctx context.Context, userID string, in usecase.UpdateListingInput) (*domain.Listing, error)
	Delete(ctx context.Context, userID, listingID string) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	Search(ctx context.Context, filter domain.Filter) ([]*domain.Listing, int64, error)
}

type VendorDirectory interface {
	FindByUserID(ctx context.Context, userID string) (*domain.Vendor, error)
}

type ListingCache interface {
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	SetListing(ctx context.Context, listing *domain.Listing) error
	DeleteListing(ctx context.Context, id string) error
}

type EventPublisher interface {
	Publish(subject string, data interface{}) error
}

type Handler struct {
	svc       ListingService
	vendors   VendorDirectory
	storage   domain.ObjectStorage
	cache     ListingCache
	publisher EventPublisher
	mailer    mailer.Mailer
	metrics   *metrics.Manager
	logger    *logger.Logger
	devMode   bool
}

func NewHandler(
	svc ListingService,
	vendors VendorDirectory,
	storage domain.ObjectStorage,
	listingCache ListingCache,
	publisher EventPublisher,
	m mailer.Mailer,
	mm *metrics.Manager,
	log *logger.Logger,
	devMode bool,
) *Handler {
	return &Handler{
		svc:       svc,
		vendors:   vendors,
		storage:   storage,
		cache:     listingCache,
		publisher: publisher,
		mailer:    m,
		metrics:   mm,
		logger:    log.Named("rest-handler"),
		devMode:   devMode,
	}
}

type createListingRequest struct {
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	Price            float64             `json:"price"`
	Location         string              `json:"location"`
	Category         string              `json:"category"`
	Features         []string            `json:"features"`
	Images           []domain.ImageRef   `json:"images"`
	Items            []usecase.ItemInput `json:"items"`
	TempImageIDs     []string            `json:"tempImageIds"`
	TempItemImageIDs []string            `json:"tempItemImageIds"`
}

type updateListingRequest struct {
	Title              *string              `json:"title"`
	Description        *string              `json:"description"`
	Price              *float64             `json:"price"`
	Location           *string              `json:"location"`
	Category           *string              `json:"category"`
	Features           *[]string            `json:"features"`
	Images             []domain.ImageRef    `json:"images"`
	Items              *[]usecase.ItemInput `json:"items"`
	ImagesToDelete     []string             `json:"imagesToDelete"`
	ItemImagesToDelete []string             `json:"itemImagesToDelete"`
	TempImageIDs       []string             `json:"tempImageIds"`
	TempItemImageIDs   []string             `json:"tempItemImageIds"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) observeLatency(operation string, start time.Time) {
	if h.metrics != nil {
		h.metrics.APILatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

func (h *Handler) writeError(w http.ResponseWriter, operation string, err error) {
	kind := "internal"
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		kind, status, message = "unauthenticated", http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		kind, status, message = "forbidden", http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrListingNotFound), errors.Is(err, domain.ErrVendorNotFound):
		kind, status, message = "not_found", http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		kind, status, message = "invalid_input", http.StatusBadRequest, err.Error()
	default:
		if h.devMode {
			message = err.Error()
		}
	}

	if h.metrics != nil {
		h.metrics.APIErrorsTotal.WithLabelValues(operation, kind).Inc()
	}
	h.writeJSON(w, status, errorResponse{Error: kind, Message: message})
}

// HandleCreateListing handles POST /api/listings.
func (h *Handler) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	defer h.observeLatency("create_listing", time.Now())
	userID := middleware.UserIDFromContext(r.Context())

	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "create_listing", domain.NewInvalidInput("body", "is not valid JSON"))
		return
	}

	listing, err := h.svc.Create(r.Context(), userID, usecase.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Location:    req.Location,
		Category:    req.Category,
		Features:    req.Features,
		Images:      req.Images,
		Items:       req.Items,
		Staged: domain.StagedUploads{
			ImageIDs:     req.TempImageIDs,
			ItemImageIDs: req.TempItemImageIDs,
		},
	})
	if err != nil {
		h.writeError(w, "create_listing", err)
		return
	}

	if h.metrics != nil {
		h.metrics.ListingsCreatedTotal.Inc()
	}
	h.afterWrite(r.Context(), listing, "listing.created")
	h.notifyVendor(r.Context(), userID, listing.Title)

	h.writeJSON(w, http.StatusCreated, listing)
}

// HandleUpdateListing handles PATCH /api/listings/{id}.
func (h *Handler) HandleUpdateListing(w http.ResponseWriter, r *http.Request) {
	defer h.observeLatency("update_listing", time.Now())
	userID := middleware.UserIDFromContext(r.Context())
	listingID := chi.URLParam(r, "id")

	var req updateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "update_listing", domain.NewInvalidInput("body", "is not valid JSON"))
		return
	}

	listing, err := h.svc.Update(r.Context(), userID, usecase.UpdateListingInput{
		ListingID:          listingID,
		Title:              req.Title,
		Description:        req.Description,
		Price:              req.Price,
		Location:           req.Location,
		Category:           req.Category,
		Features:           req.Features,
		Images:             req.Images,
		Items:              req.Items,
		ImagesToDelete:     req.ImagesToDelete,
		ItemImagesToDelete: req.ItemImagesToDelete,
		Staged: domain.StagedUploads{
			ImageIDs:     req.TempImageIDs,
			ItemImageIDs: req.TempItemImageIDs,
		},
	})
	if err != nil {
		h.writeError(w, "update_listing", err)
		return
	}

	if h.metrics != nil {
		h.metrics.ListingUpdatesTotal.Inc()
	}
	h.afterWrite(r.Context(), listing, "listing.updated")

	h.writeJSON(w, http.StatusOK, listing)
}

// HandleDeleteListing handles DELETE /api/listings/{id}.
func (h *Handler) HandleDeleteListing(w http.ResponseWriter, r *http.Request) {
	defer h.observeLatency("delete_listing", time.Now())
	userID := middleware.UserIDFromContext(r.Context())
	listingID := chi.URLParam(r, "id")

	deletedID, err := h.svc.Delete(r.Context(), userID, listingID)
	if err != nil {
		h.writeError(w, "delete_listing", err)
		return
	}

	if h.metrics != nil {
		h.metrics.ListingDeletesTotal.Inc()
	}
	if h.cache != nil {
		if err := h.cache.DeleteListing(r.Context(), deletedID); err != nil {
			h.logger.Warn("cache invalidation failed", zap.String("listing_id", deletedID), zap.Error(err))
		}
	}
	if h.publisher != nil {
		if err := h.publisher.Publish("listing.deleted", map[string]string{"id": deletedID}); err != nil {
			h.logger.Warn("event publish failed", zap.String("subject", "listing.deleted"), zap.Error(err))
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"deletedListingId": deletedID})
}

// HandleGetListing handles GET /api/listings/{id}. Public, cache-aside.
func (h *Handler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	defer h.observeLatency("get_listing", time.Now())
	listingID := chi.URLParam(r, "id")

	if h.cache != nil {
		cached, err := h.cache.GetListing(r.Context(), listingID)
		if err != nil {
			h.logger.Warn("cache read failed", zap.String("listing_id", listingID), zap.Error(err))
		} else if cached != nil {
			h.writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	listing, err := h.svc.GetByID(r.Context(), listingID)
	if err != nil {
		h.writeError(w, "get_listing", err)
		return
	}

	if h.cache != nil {
		if err := h.cache.SetListing(r.Context(), listing); err != nil {
			h.logger.Warn("cache write failed", zap.String("listing_id", listing.ID), zap.Error(err))
		}
	}
	h.writeJSON(w, http.StatusOK, listing)
}

// HandleSearchListings handles GET /api/listings. Public.
func (h *Handler) HandleSearchListings(w http.ResponseWriter, r *http.Request) {
	defer h.observeLatency("search_listings", time.Now())
	q := r.URL.Query()
	filter := domain.Filter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Location: q.Get("location"),
		OwnerID:  q.Get("vendorId"),
	}
	filter.MinPrice, _ = strconv.ParseFloat(q.Get("minPrice"), 64)
	filter.MaxPrice, _ = strconv.ParseFloat(q.Get("maxPrice"), 64)
	filter.Page, _ = strconv.ParseInt(q.Get("page"), 10, 64)
	filter.Limit, _ = strconv.ParseInt(q.Get("limit"), 10, 64)

	listings, total, err := h.svc.Search(r.Context(), filter)
	if err != nil {
		h.writeError(w, "search_listings", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"listings": listings,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
	})
}

// HandleUpload handles POST /api/uploads: stages one image in the object
// store and returns the ref the client will reference (or abandon) in a
// later listing write.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	defer h.observeLatency("upload", time.Now())
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, "upload", domain.NewInvalidInput("body", "is not valid multipart form data"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, "upload", domain.NewInvalidInput("image", "file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.writeError(w, "upload", err)
		return
	}

	ref, err := h.storage.Upload(r.Context(), header.Filename, data)
	if err != nil {
		h.writeError(w, "upload", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, ref)
}

// HandleHealthz reports liveness.
func (h *Handler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// afterWrite refreshes the cache and publishes the lifecycle event after
// a successful create/update. Both are best-effort.
func (h *Handler) afterWrite(ctx context.Context, listing *domain.Listing, subject string) {
	if h.cache != nil {
		if err := h.cache.SetListing(ctx, listing); err != nil {
			h.logger.Warn("cache write failed", zap.String("listing_id", listing.ID), zap.Error(err))
		}
	}
	if h.publisher != nil {
		err := h.publisher.Publish(subject, map[string]string{"id": listing.ID, "owner_id": listing.OwnerID})
		if err != nil {
			h.logger.Warn("event publish failed", zap.String("subject", subject), zap.Error(err))
		}
	}
}

func (h *Handler) notifyVendor(ctx context.Context, userID, listingTitle string) {
	if h.mailer == nil || h.vendors == nil {
		return
	}
	vendor, err := h.vendors.FindByUserID(ctx, userID)
	if err != nil || vendor.Email == "" {
		return
	}
	if err := h.mailer.SendListingCreatedEmail(vendor.Email, listingTitle); err != nil {
		h.logger.Warn("listing created email failed", zap.String("vendor_id", vendor.ID), zap.Error(err))
	}
}
