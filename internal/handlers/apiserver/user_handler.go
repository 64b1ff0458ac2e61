package apiserver

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"quickchat/internal/middleware"
	"quickchat/internal/services"
	"quickchat/internal/storage"
)

// UserHandler 封装了用户相关的 HTTP 处理器方法。
type UserHandler struct {
	userService    services.UserService
	storageService storage.StorageService
	maxUploadBytes int64
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService services.UserService, storageService storage.StorageService, maxFileSizeMB int64) *UserHandler {
	return &UserHandler{
		userService:    userService,
		storageService: storageService,
		maxUploadBytes: maxFileSizeMB << 20,
	}
}

// GetMyProfileHandler 处理获取当前登录用户信息的请求。
func (h *UserHandler) GetMyProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "无法从上下文中获取用户ID，请确保请求已通过认证", http.StatusInternalServerError)
		return
	}

	user, err := h.userService.GetUserProfile(r.Context(), userID)
	if err != nil {
		writeJSONError(w, fmt.Sprintf("获取用户信息失败: %v", err), http.StatusNotFound)
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// UpdateMyProfileHandler 处理更新当前登录用户资料的请求。
// 请求为 multipart/form-data，文本字段之外可携带一个 profileImage 文件。
func (h *UserHandler) UpdateMyProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "无法从上下文中获取用户ID", http.StatusInternalServerError)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSONError(w, "解析表单失败或文件过大", http.StatusBadRequest)
		return
	}

	update := services.ProfileUpdate{
		Gender:     strings.TrimSpace(r.FormValue("gender")),
		Contact:    strings.TrimSpace(r.FormValue("contact")),
		Address:    strings.TrimSpace(r.FormValue("address")),
		Bio:        strings.TrimSpace(r.FormValue("bio")),
		Profession: strings.TrimSpace(r.FormValue("profession")),
	}

	// 可选的头像上传
	file, header, err := r.FormFile("profileImage")
	if err == nil {
		defer file.Close()
		info, upErr := h.storageService.UploadFile(r.Context(), file, header.Size, header.Filename, header.Header.Get("Content-Type"))
		if upErr != nil {
			log.Printf("上传头像失败 (用户 %d): %v", userID, upErr)
			writeJSONError(w, "头像上传失败", http.StatusInternalServerError)
			return
		}
		update.ProfileImage = info.URL
	} else if !errors.Is(err, http.ErrMissingFile) {
		writeJSONError(w, "读取上传文件失败", http.StatusBadRequest)
		return
	}

	profile, err := h.userService.UpdateUserProfile(r.Context(), userID, update)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidContact):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrProfileNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		default:
			writeJSONError(w, "更新资料失败", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, profile)
}

// DeleteMyProfileHandler 删除当前用户的资料记录。
func (h *UserHandler) DeleteMyProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "无法从上下文中获取用户ID", http.StatusInternalServerError)
		return
	}

	if err := h.userService.DeleteUserProfile(r.Context(), userID); err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			writeJSONError(w, "删除资料失败", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "资料已删除"})
}

// ListChatUsersHandler 返回除当前用户外的全部用户，作为会话侧边栏的候选列表。
func (h *UserHandler) ListChatUsersHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "无法从上下文中获取用户ID", http.StatusInternalServerError)
		return
	}

	users, err := h.userService.ListChatUsers(r.Context(), userID)
	if err != nil {
		writeJSONError(w, "获取用户列表失败", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, users)
}

// SearchUsersHandler 按名称搜索其他用户，关键字来自 name 查询参数。
func (h *UserHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "无法从上下文中获取用户ID", http.StatusInternalServerError)
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeJSONError(w, "缺少搜索关键字 name", http.StatusBadRequest)
		return
	}

	users, err := h.userService.SearchUsers(r.Context(), name, userID)
	if err != nil {
		writeJSONError(w, "搜索用户失败", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, users)
}
