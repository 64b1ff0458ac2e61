package apiserver

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux" // 用于从路径参数中提取对方用户ID

	"quickchat/internal/middleware"
	"quickchat/internal/services"
	"quickchat/internal/storage"
)

// MessageHandler 封装了消息历史相关的 HTTP 处理器方法。
// 实时投递不经过这里：客户端在写入成功后通过 socket 触发 send-message。
type MessageHandler struct {
	messageService services.MessageService
	storageService storage.StorageService
	maxUploadBytes int64
}

// NewMessageHandler 创建一个新的 MessageHandler 实例。
func NewMessageHandler(messageService services.MessageService, storageService storage.StorageService, maxFileSizeMB int64) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		storageService: storageService,
		maxUploadBytes: maxFileSizeMB << 20,
	}
}

// pathUserID 从路由变量 id 中解析对方用户ID。
func pathUserID(r *http.Request) (uint, error) {
	return storage.StrToUint(mux.Vars(r)["id"])
}

// AddMessageHandler 持久化发给路径参数用户的一条消息。
// 请求为 multipart/form-data：message 文本字段，可选 image 文件。
func (h *MessageHandler) AddMessageHandler(w http.ResponseWriter, r *http.Request) {
	senderID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "无法从上下文中获取用户ID", http.StatusInternalServerError)
		return
	}

	receiverID, err := pathUserID(r)
	if err != nil {
		writeJSONError(w, "接收者ID无效", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSONError(w, "解析表单失败或文件过大", http.StatusBadRequest)
		return
	}

	body := strings.TrimSpace(r.FormValue("message"))

	var imageURL string
	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		info, upErr := h.storageService.UploadFile(r.Context(), file, header.Size, header.Filename, header.Header.Get("Content-Type"))
		if upErr != nil {
			log.Printf("上传消息图片失败 (用户 %d): %v", senderID, upErr)
			writeJSONError(w, "图片上传失败", http.StatusInternalServerError)
			return
		}
		imageURL = info.URL
	} else if !errors.Is(err, http.ErrMissingFile) {
		writeJSONError(w, "读取上传文件失败", http.StatusBadRequest)
		return
	}

	msg, err := h.messageService.AddMessage(r.Context(), senderID, receiverID, body, imageURL)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfMessage), errors.Is(err, services.ErrEmptyMessage):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrReceiverNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		default:
			writeJSONError(w, "发送消息失败", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusCreated, msg)
}

// GetMessagesHandler 返回当前用户与路径参数用户之间的历史消息。
func (h *MessageHandler) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "无法从上下文中获取用户ID", http.StatusInternalServerError)
		return
	}

	otherID, err := pathUserID(r)
	if err != nil {
		writeJSONError(w, "用户ID无效", http.StatusBadRequest)
		return
	}

	messages, err := h.messageService.GetConversation(r.Context(), userID, otherID)
	if err != nil {
		if errors.Is(err, services.ErrReceiverNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			writeJSONError(w, "获取消息失败", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, messages)
}

// DeleteMessageHandler 删除一条消息，路径参数为消息ID，仅发送者可删。
func (h *MessageHandler) DeleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "无法从上下文中获取用户ID", http.StatusInternalServerError)
		return
	}

	messageID, err := pathUserID(r)
	if err != nil {
		writeJSONError(w, "消息ID无效", http.StatusBadRequest)
		return
	}

	if err := h.messageService.DeleteMessage(r.Context(), userID, messageID); err != nil {
		switch {
		case errors.Is(err, services.ErrMessageNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrNotMessageOwner):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		default:
			writeJSONError(w, "删除消息失败", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "消息已删除"})
}
