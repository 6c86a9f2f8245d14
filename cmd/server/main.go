package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orgadmin_go/internal/cache"
	"orgadmin_go/internal/config"
	"orgadmin_go/internal/event"
	"orgadmin_go/internal/handler"
	"orgadmin_go/internal/middleware"
	"orgadmin_go/internal/repository"
	"orgadmin_go/internal/service"
	"orgadmin_go/pkg/database"
	"orgadmin_go/pkg/es"
	"orgadmin_go/pkg/log"
	"orgadmin_go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	config.Init("configs/config.yaml")
	cfg := config.Conf

	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()

	log.Info("Server starting")

	database.InitMySQL(cfg.Database.MySQL.DSN)
	if err := database.RunMigrate(); err != nil {
		log.Fatal("Failed to run migrations", err)
		return
	}
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)

	// ES 可选：地址为空时操作日志只落 MySQL。
	es.Init(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)

	treeCache := cache.NewTreeCache(database.RDB, cfg.Cache.KeyPrefix, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	hub := event.NewHub()

	jwtManager := token.NewJWTManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpireHours)*time.Hour,
		time.Duration(cfg.JWT.RefreshTokenExpireDays)*24*time.Hour,
	)

	// Repository 层
	userRepo := repository.NewUserRepository(database.DB)
	deptRepo := repository.NewDeptRepository(database.DB, treeCache, cfg.Tree.MaxDepth)
	permRepo := repository.NewPermissionRepository(database.DB, treeCache, cfg.Tree.MaxDepth)
	roleRepo := repository.NewRoleRepository(database.DB)
	operaLogRepo := repository.NewOperaLogRepository(database.DB)
	loginLogRepo := repository.NewLoginLogRepository(database.DB)

	// Service 层
	userService := service.NewUserService(userRepo, deptRepo, jwtManager, database.RDB, cfg.Cache.KeyPrefix)
	deptService := service.NewDeptService(deptRepo, hub)
	permService := service.NewPermissionService(permRepo, hub)
	roleService := service.NewRoleService(roleRepo, database.RDB, cfg.Cache.KeyPrefix)
	operaLogService := service.NewOperaLogService(operaLogRepo, cfg.Elasticsearch.LogIndex)
	loginLogService := service.NewLoginLogService(loginLogRepo)

	// Handler 层
	userHandler := handler.NewUserHandler(userService, loginLogService)
	deptHandler := handler.NewDeptHandler(deptService)
	permHandler := handler.NewPermissionHandler(permService)
	roleHandler := handler.NewRoleHandler(roleService)
	operaLogHandler := handler.NewOperaLogHandler(operaLogService)
	loginLogHandler := handler.NewLoginLogHandler(loginLogService)
	wsHandler := handler.NewWSHandler(hub)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.OperaLogMiddleware(operaLogService), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok"})
	})

	authRequired := middleware.AuthMiddleware(jwtManager, userService)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
			auth.POST("/logout", authRequired, userHandler.Logout)
		}

		users := api.Group("/users", authRequired)
		{
			users.GET("/profile", userHandler.GetProfile)
			users.PUT("/password", userHandler.ChangePassword)
		}

		admin := api.Group("/admin", authRequired)
		{
			// 用户管理只对 ADMIN 开放，不走细粒度权限码。
			adminUsers := admin.Group("/users", middleware.AdminAuthMiddleware())
			{
				adminUsers.GET("", userHandler.ListUsers)
				adminUsers.PUT("/:id", userHandler.UpdateUser)
			}

			registerTreeRoutes(admin.Group("/depts"), roleService, "dept", &deptHandler.TreeHandler)
			depts := admin.Group("/depts")
			{
				depts.POST("", middleware.RequirePermission(roleService, "dept:write"), deptHandler.Create)
				depts.PUT("/:id", middleware.RequirePermission(roleService, "dept:write"), deptHandler.Update)
			}

			registerTreeRoutes(admin.Group("/permissions"), roleService, "permission", &permHandler.TreeHandler)
			perms := admin.Group("/permissions")
			{
				perms.POST("", middleware.RequirePermission(roleService, "permission:write"), permHandler.Create)
				perms.PUT("/:id", middleware.RequirePermission(roleService, "permission:write"), permHandler.Update)
			}

			roles := admin.Group("/roles", middleware.RequirePermission(roleService, "role:manage"))
			{
				roles.POST("", roleHandler.Create)
				roles.GET("", roleHandler.List)
				roles.DELETE("/:id", roleHandler.Delete)
				roles.PUT("/:id/grant", roleHandler.Grant)
			}

			admin.GET("/opera-logs", middleware.RequirePermission(roleService, "log:read"), operaLogHandler.Search)
			admin.GET("/login-logs", middleware.RequirePermission(roleService, "log:read"), loginLogHandler.List)
		}
	}

	// 树结构变更事件推送
	r.GET("/ws/events", authRequired, wsHandler.Events)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}

// registerTreeRoutes 为一个树形实体挂载通用的结构路由。
// entity 用于拼权限码：读操作要求 {entity}:read，写操作要求 {entity}:write。
func registerTreeRoutes[T any](g *gin.RouterGroup, roleService service.RoleService, entity string, h *handler.TreeHandler[T]) {
	read := middleware.RequirePermission(roleService, entity+":read")
	write := middleware.RequirePermission(roleService, entity+":write")

	g.GET("/tree", read, h.GetTree)
	g.GET("/:id/siblings", read, h.GetSiblings)
	g.GET("/:id/ancestors", read, h.GetAncestors)
	g.PUT("/:id/move", write, h.Move)
	g.PUT("/bulk-move", write, h.BulkMove)
	g.POST("/:id/copy", write, h.Copy)
	g.DELETE("/:id", write, h.Delete)
}
