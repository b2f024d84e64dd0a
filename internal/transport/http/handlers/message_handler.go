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

const maxUploadSize = 32 << 20 // 32 MiB in-memory multipart limit

type MessageHandler struct {
	messageService *service.MessageService
	chatService    *service.ChatService
	uploader       media.Uploader // nil when no bucket is configured
	log            *zap.SugaredLogger
}

func NewMessageHandler(
	messageService *service.MessageService,
	chatService *service.ChatService,
	uploader media.Uploader,
	log *zap.SugaredLogger,
) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		chatService:    chatService,
		uploader:       uploader,
		log:            log,
	}
}

// Send persists a message; multipart requests may carry one attachment
// which is uploaded first so the stored row already has its URL.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	input, ok := h.decodeSend(w, r)
	if !ok {
		return
	}
	input.SenderID = userID

	msg, err := h.messageService.Send(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfMessage):
			writeError(w, http.StatusBadRequest, "SELF_MESSAGE", "Cannot message yourself")
		case errors.Is(err, service.ErrSenderNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Sender not found")
		case errors.Is(err, service.ErrReceiverNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Receiver not found")
		case errors.Is(err, service.ErrBlocked):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Messaging is blocked between these users")
		default:
			h.log.Errorw("send message", "sender", userID, "err", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// decodeSend reads either a JSON body or a multipart form with an
// optional "file" attachment. Writes its own error response on failure.
func (h *MessageHandler) decodeSend(w http.ResponseWriter, r *http.Request) (service.SendMessageInput, bool) {
	var input service.SendMessageInput

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return input, false
		}
		if errs := validator.ValidateSendMessage(input.ReceiverID, input.Body, input.Kind, false); errs.HasErrors() {
			writeValidationErrors(w, errs)
			return input, false
		}
		return input, true
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid multipart form")
		return input, false
	}
	// Multipart spills large parts to local temp files; always clean
	// them up, upload succeeded or not.
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.log.Warnw("cleanup multipart temp files", "err", err)
		}
	}()

	receiverID, err := uuid.Parse(r.FormValue("receiverId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid receiver ID")
		return input, false
	}
	input.ReceiverID = receiverID
	input.Body = r.FormValue("message")

	file, header, err := r.FormFile("file")
	hasMedia := err == nil

	// Kind is derived from the attachment's MIME type, never client input.
	if errs := validator.ValidateSendMessage(receiverID, input.Body, "", hasMedia); errs.HasErrors() {
		if hasMedia {
			file.Close()
		}
		writeValidationErrors(w, errs)
		return input, false
	}

	if hasMedia {
		defer file.Close()
		if h.uploader == nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Media storage is not configured")
			return input, false
		}
		up, err := h.uploader.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
		if err != nil {
			h.log.Errorw("media upload", "file", header.Filename, "err", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Media upload failed")
			return input, false
		}
		input.MediaURL = &up.URL
		input.Kind = up.Kind
	}

	return input, true
}

func (h *MessageHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	contactID, err := uuid.Parse(r.PathValue("contactId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid contact ID")
		return
	}

	messages, err := h.messageService.ListConversation(r.Context(), userID, contactID)
	if err != nil {
		h.log.Errorw("get conversation", "user", userID, "contact", contactID, "err", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *MessageHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	summaries, err := h.chatService.Summarize(r.Context(), userID)
	if err != nil {
		h.log.Errorw("summarize conversations", "user", userID, "err", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// MarkRead succeeds even when nothing was unread; the empty set is a
// visible no-op, not an error.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	contactID, err := uuid.Parse(r.PathValue("contactId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid contact ID")
		return
	}

	ids, err := h.messageService.MarkRead(r.Context(), userID, contactID)
	if err != nil {
		h.log.Errorw("mark read", "user", userID, "contact", contactID, "err", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"updatedMessageIds": ids,
		"count":             len(ids),
	})
}

func (h *MessageHandler) Hide(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	msg, err := h.messageService.Hide(r.Context(), messageID, userID)
	if err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
		} else {
			h.log.Errorw("hide message", "user", userID, "message", messageID, "err", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	contactID, err := uuid.Parse(r.PathValue("contactId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid contact ID")
		return
	}

	count, err := h.messageService.DeleteConversation(r.Context(), userID, contactID)
	if err != nil {
		h.log.Errorw("delete conversation", "user", userID, "contact", contactID, "err", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"deleted": count})
}
