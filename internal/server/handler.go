package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/thep200/github-kudos/internal/auth"
	"github.com/thep200/github-kudos/internal/kudo"
	"github.com/thep200/github-kudos/internal/model"
	"github.com/thep200/github-kudos/internal/storage"
	"github.com/thep200/github-kudos/pkg/log"
)

const maxBodyBytes = 1 << 20

// Handler serves the /kudos resource.
type Handler struct {
	Logger    log.Logger
	Repo      storage.Repository
	Publisher kudo.Publisher
}

func NewHandler(logger log.Logger, repo storage.Repository, publisher kudo.Publisher) *Handler {
	return &Handler{
		Logger:    logger,
		Repo:      repo,
		Publisher: publisher,
	}
}

func (h *Handler) Router() *httprouter.Router {
	router := httprouter.New()
	router.GET("/healthz", h.health)
	router.GET("/kudos", h.index)
	router.POST("/kudos", h.create)
	router.PUT("/kudos/:id", h.update)
	router.DELETE("/kudos/:id", h.delete)
	return router
}

func (h *Handler) service(r *http.Request) (kudo.Service, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		return kudo.Service{}, false
	}
	return kudo.NewService(h.Repo, h.Publisher, h.Logger, userID), true
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := h.Repo.Count(r.Context()); err != nil {
		h.Logger.Error(r.Context(), "Health check failed: %v", err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	svc, ok := h.service(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	kudos, err := svc.GetKudosIn(r.Context(), r.URL.Query().Get("language"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, kudos)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	svc, ok := h.service(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	githubRepo, err := decodeRepo(r)
	if err != nil || githubRepo.ID == 0 {
		writeError(w, http.StatusBadRequest, "invalid repository payload")
		return
	}

	created, err := svc.CreateKudoFor(r.Context(), githubRepo)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	svc, ok := h.service(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	repoID, err := strconv.ParseInt(params.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid kudo id")
		return
	}

	githubRepo, err := decodeRepo(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid repository payload")
		return
	}
	// the path wins over the body
	githubRepo.ID = repoID

	updated, err := svc.UpdateKudoWith(r.Context(), githubRepo)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	svc, ok := h.service(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	repoID, err := strconv.ParseInt(params.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid kudo id")
		return
	}

	if _, err := svc.RemoveKudo(r.Context(), model.Repository{ID: repoID}); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "kudo not found")
		return
	}
	h.Logger.Error(r.Context(), "%s %s failed: %v", r.Method, r.URL.Path, err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func decodeRepo(r *http.Request) (model.Repository, error) {
	var repo model.Repository
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return repo, err
	}
	err = json.Unmarshal(payload, &repo)
	return repo, err
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
