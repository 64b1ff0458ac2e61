package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	redisDriver "github.com/redis/go-redis/v9"

	"quickchat/internal/config"
	"quickchat/internal/handlers/apiserver"
	"quickchat/internal/handlers/chatserver"
	"quickchat/internal/mail"
	"quickchat/internal/middleware"
	appRedis "quickchat/internal/redis"
	"quickchat/internal/relay"
	"quickchat/internal/services"
	"quickchat/internal/storage"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}
	log.Printf("%s v%s 配置加载成功。", cfg.AppName, cfg.AppVersion)

	// 2. 初始化数据库连接
	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("无法初始化数据库: %v", err)
	}
	log.Println("数据库连接成功。")

	// (可选) 表结构迁移
	if err := storage.AutoMigrateTables(db); err != nil {
		log.Printf("警告：数据库表迁移可能失败: %v", err)
	} else {
		log.Println("数据库表迁移成功 (如果执行)。")
	}

	// 3. 初始化 Redis Client
	redisClient := redisDriver.NewClient(&redisDriver.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("无法连接到 Redis: %v", err)
	}
	log.Println("成功连接到 Redis")

	// 4. 初始化 TokenBlacklist 服务
	tokenBlacklistService := appRedis.NewRedisTokenBlacklist(redisClient)

	// 5. 初始化 Repositories
	userRepo := storage.NewGormUserRepository(db)
	profileRepo := storage.NewGormProfileRepository(db)
	msgRepo := storage.NewGormMessageRepository(db)

	// 6. 初始化邮件与存储服务
	mailer := mail.NewSMTPMailer(cfg.Mail)

	var storageService storage.StorageService
	storageBaseURL := "/uploads" // Base URL for accessing uploaded files
	if cfg.Storage.Type == "local" {
		storageService, err = storage.NewLocalStorageService(cfg.Storage, storageBaseURL)
		if err != nil {
			log.Fatalf("无法初始化本地存储服务: %v", err)
		}
		log.Println("本地存储服务初始化成功。")
	} else {
		log.Fatalf("不支持的存储类型: %s", cfg.Storage.Type)
	}

	// 7. 初始化 Services
	authService := services.NewAuthService(userRepo, mailer, cfg)
	userService := services.NewUserService(userRepo, profileRepo)
	messageService := services.NewMessageService(msgRepo, userRepo)

	// 8. 初始化实时中继
	// 在线状态保存在进程内；多副本部署时换成 appRedis.NewRedisPresenceStore(redisClient)。
	hub := relay.NewHub(relay.NewMemoryPresence(), userService, cfg.Relay)

	// 9. 初始化 Handlers
	authHandler := apiserver.NewAuthHandler(authService, tokenBlacklistService)
	userHandler := apiserver.NewUserHandler(userService, storageService, cfg.Storage.MaxFileSizeMB)
	messageHandler := apiserver.NewMessageHandler(messageService, storageService, cfg.Storage.MaxFileSizeMB)
	wsHandler := chatserver.NewWebSocketHandler(hub, tokenBlacklistService, cfg)

	// 10. 设置 HTTP 路由
	r := mux.NewRouter()

	// 10.1 认证路由 (公开)
	authRouter := r.PathPrefix("/api/v1/auth").Subrouter()
	authRouter.HandleFunc("/signup", authHandler.Signup).Methods(http.MethodPost)
	authRouter.HandleFunc("/verify-account", authHandler.VerifyAccount).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	// 创建 AuthMiddleware 实例
	authMW := middleware.AuthMiddleware(cfg.Auth.JWTSecretKey, tokenBlacklistService)

	// 10.2 受保护的 API 路由
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMW)

	// 登出需要认证来获取 JTI
	apiRouter.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	// 用户路由
	apiRouter.HandleFunc("/user/profile", userHandler.GetMyProfileHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/user/profile", userHandler.UpdateMyProfileHandler).Methods(http.MethodPut)
	apiRouter.HandleFunc("/user/profile", userHandler.DeleteMyProfileHandler).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/user/search-user", userHandler.SearchUsersHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/user", userHandler.ListChatUsersHandler).Methods(http.MethodGet)

	// 消息路由：路径参数是对方用户ID (POST/GET) 或消息ID (DELETE)
	apiRouter.HandleFunc("/message/{id:[0-9]+}", messageHandler.AddMessageHandler).Methods(http.MethodPost)
	apiRouter.HandleFunc("/message/{id:[0-9]+}", messageHandler.GetMessagesHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/message/{id:[0-9]+}", messageHandler.DeleteMessageHandler).Methods(http.MethodDelete)

	// 10.3 WebSocket 路由 (公开；token 查询参数可选)
	r.HandleFunc(cfg.Server.WebSocketPath, wsHandler.ServeWS)

	// 10.4 静态文件服务路由 - 用于访问上传的文件
	if cfg.Storage.Type == "local" {
		staticPath := strings.TrimSuffix(storageBaseURL, "/") + "/"
		localDir := http.Dir(cfg.Storage.LocalPath)
		r.PathPrefix(staticPath).Handler(http.StripPrefix(staticPath, http.FileServer(localDir)))
		log.Printf("提供静态文件服务于 %s -> %s", staticPath, cfg.Storage.LocalPath)
	}

	// 11. 启动 HTTP 服务器并实现优雅关闭
	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	// 定义 CORS 选项，从配置中读取
	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.CORS.AllowedHeaders),
		handlers.ExposedHeaders(cfg.CORS.ExposedHeaders),
		handlers.MaxAge(cfg.CORS.MaxAge),
	}
	if cfg.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}
	corsHandler := handlers.CORS(corsOptions...)(r)

	srv := &http.Server{
		Addr:           serverAddr,
		Handler:        corsHandler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    time.Second * 60,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Printf("服务器启动于 %s (WebSocket: %s)", serverAddr, cfg.Server.WebSocketPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("收到关闭信号，开始优雅关闭...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("服务器关闭出错: %v", err)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("关闭 Redis 连接出错: %v", err)
	}
	log.Println("服务器已退出。")
}
