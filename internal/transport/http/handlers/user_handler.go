package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dkovacs/whisper/internal/media"
	"github.com/dkovacs/whisper/internal/service"
	"github.com/dkovacs/whisper/internal/transport/http/middleware"
	"github.com/dkovacs/whisper/pkg/validator"
)

type UserHandler struct {
	userService *service.UserService
	uploader    media.Uploader // nil when no bucket is configured
	log         *zap.SugaredLogger
}

func NewUserHandler(userService *service.UserService, uploader media.Uploader, log *zap.SugaredLogger) *UserHandler {
	return &UserHandler{userService: userService, uploader: uploader, log: log}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	users, err := h.userService.List(r.Context(), userID)
	if err != nil {
		h.log.Errorw("list users", "err", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		} else {
			h.log.Errorw("get user", "id", id, "err", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		} else {
			h.log.Errorw("get current user", "id", userID, "err", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateMe changes the caller's display name or avatar. JSON bodies
// carry a displayName; multipart forms may add an "avatar" file.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	displayName, avatarURL, ok := h.decodeProfile(w, r)
	if !ok {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, displayName, avatarURL)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		} else {
			h.log.Errorw("update profile", "user", userID, "err", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// decodeProfile reads either a JSON body or a multipart form with an
// optional "avatar" attachment. Writes its own error response on failure.
func (h *UserHandler) decodeProfile(w http.ResponseWriter, r *http.Request) (string, *string, bool) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var input struct {
			DisplayName string `json:"displayName"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return "", nil, false
		}
		if errs := validator.ValidateUpdateProfile(input.DisplayName, false); errs.HasErrors() {
			writeValidationErrors(w, errs)
			return "", nil, false
		}
		return input.DisplayName, nil, true
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid multipart form")
		return "", nil, false
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.log.Warnw("cleanup multipart temp files", "err", err)
		}
	}()

	displayName := r.FormValue("displayName")
	file, header, err := r.FormFile("avatar")
	hasAvatar := err == nil

	if errs := validator.ValidateUpdateProfile(displayName, hasAvatar); errs.HasErrors() {
		if hasAvatar {
			file.Close()
		}
		writeValidationErrors(w, errs)
		return "", nil, false
	}

	if !hasAvatar {
		return displayName, nil, true
	}
	defer file.Close()

	if h.uploader == nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Media storage is not configured")
		return "", nil, false
	}
	up, err := h.uploader.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.log.Errorw("avatar upload", "file", header.Filename, "err", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Media upload failed")
		return "", nil, false
	}
	return displayName, &up.URL, true
}

func (h *UserHandler) Block(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	targetID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	if err := h.userService.Block(r.Context(), userID, targetID); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfBlock):
			writeError(w, http.StatusBadRequest, "SELF_BLOCK", "Cannot block yourself")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			h.log.Errorw("block user", "user", userID, "target", targetID, "err", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	targetID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	if err := h.userService.Unblock(r.Context(), userID, targetID); err != nil {
		h.log.Errorw("unblock user", "user", userID, "target", targetID, "err", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
