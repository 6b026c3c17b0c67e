package httpserver

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_api/internal/adapters/uploads"
	"hotel_api/internal/app"
	"hotel_api/internal/domain"
)

// FileStore is an upload backend that can also serve what it stored.
type FileStore interface {
	domain.FileStore
	Handler() http.Handler
}

type Handlers struct {
	Cmd            *app.HotelService
	Q              *app.QueryService
	Files          FileStore
	MaxFiles       int
	MaxUploadBytes int64
	Now            func() time.Time
}

// MountHandlers registers the API. Mutating routes go through rl.
func (s *Server) MountHandlers(h *Handlers, rl *IPRateLimiter) {
	if h.Now == nil {
		h.Now = time.Now
	}
	s.mux.Get("/", h.index)
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Handle("/uploads/*", h.Files.Handler())

	s.mux.Route("/api", func(r chi.Router) {
		r.Get("/hotel/{hotelId}", h.getHotel)

		r.Group(func(r chi.Router) {
			r.Use(RateLimit(rl))
			r.Post("/hotel", h.createHotel)
			r.Put("/hotel/{hotelId}", h.updateHotel)
			r.Post("/hotel/{hotelId}/rooms", h.createRoom)
			r.Post("/images/{hotelId}", h.uploadImages)
		})
	})
}

func lookupParam(r *http.Request) domain.Lookup {
	return domain.ParseLookup(chi.URLParam(r, "hotelId"))
}

func (h *Handlers) index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Welcome to the Hotel Management API",
		"version": "1.0.0",
		"endpoints": map[string]any{
			"hotels": map[string]string{
				"create":       "POST /api/hotel",
				"get":          "GET /api/hotel/:hotelId",
				"update":       "PUT /api/hotel/:hotelId",
				"createRoom":   "POST /api/hotel/:hotelId/rooms",
				"uploadImages": "POST /api/images/:hotelId",
			},
		},
	})
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	hotel, err := h.Q.GetHotel(r.Context(), lookupParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hotel)
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateHotelRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	hotel, err := h.Cmd.CreateHotel(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, hotel)
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	var patch domain.HotelPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	if patch == nil {
		writeError(w, r, errInvalidBody)
		return
	}
	hotel, err := h.Cmd.UpdateHotel(r.Context(), lookupParam(r), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hotel)
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRoomRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	room, err := h.Cmd.CreateRoom(r.Context(), lookupParam(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// multipart bodies smaller than this stay in memory
const maxFormMemory = 8 << 20

func (h *Handlers) uploadImages(w http.ResponseWriter, r *http.Request) {
	key := lookupParam(r)
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.MaxFiles+1)*h.MaxUploadBytes)

	var headers []*multipart.FileHeader
	switch err := r.ParseMultipartForm(maxFormMemory); {
	case err == nil:
		defer r.MultipartForm.RemoveAll()
		headers = r.MultipartForm.File["images"]
	case errors.Is(err, http.ErrNotMultipart):
		// no files at all
	default:
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, &domain.ValidationError{Message: "Upload too large"})
			return
		}
		writeError(w, r, errInvalidBody)
		return
	}
	if len(headers) > h.MaxFiles {
		writeError(w, r, &domain.UploadLimitError{Max: h.MaxFiles})
		return
	}

	// nothing is written for a hotel that does not exist
	if len(headers) > 0 {
		if _, err := h.Q.GetHotel(r.Context(), key); err != nil {
			writeError(w, r, err)
			return
		}
	}

	files := make([]domain.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := h.storeFile(r, fh)
		if err != nil {
			h.discard(r, files)
			writeError(w, r, err)
			return
		}
		files = append(files, f)
	}

	urls, err := h.Cmd.AppendImages(r.Context(), key, files)
	if err != nil {
		h.discard(r, files)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"imageUrls": urls})
}

func (h *Handlers) storeFile(r *http.Request, fh *multipart.FileHeader) (domain.UploadedFile, error) {
	if fh.Size > h.MaxUploadBytes {
		return domain.UploadedFile{}, &domain.ValidationError{
			Message: fmt.Sprintf("File too large. Maximum size is %d MB.", h.MaxUploadBytes>>20),
		}
	}
	src, err := fh.Open()
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	contentType, ext, err := uploads.Sniff(src)
	if err != nil {
		return domain.UploadedFile{}, err
	}
	name := uploads.NewFilename(h.Now(), ext)
	if err := h.Files.Put(r.Context(), name, contentType, src, fh.Size); err != nil {
		return domain.UploadedFile{}, fmt.Errorf("store upload %s: %w", fh.Filename, err)
	}
	return domain.UploadedFile{Filename: name}, nil
}

// discard removes files stored for a request that did not get recorded.
func (h *Handlers) discard(r *http.Request, files []domain.UploadedFile) {
	ctx := context.WithoutCancel(r.Context())
	for _, f := range files {
		if err := h.Files.Delete(ctx, f.Filename); err != nil {
			log.Warn().Err(err).Str("file", f.Filename).Msg("orphaned upload left in store")
		}
	}
}
