package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/abushana-oss/mithran-mes/internal/config"
	"github.com/abushana-oss/mithran-mes/internal/handler"
	"github.com/abushana-oss/mithran-mes/internal/middleware"
	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"github.com/abushana-oss/mithran-mes/internal/repository"
	"github.com/abushana-oss/mithran-mes/internal/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 本地开发时从.env读取环境变量，文件不存在则忽略
	godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting mithran-mes service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := migrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg)
	handlers := handler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/events/stream"})))

	// 注册路由
	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	// TranslateError让唯一索引冲突以gorm.ErrDuplicatedKey暴露，
	// 服务层靠它把并发重复创建转成业务校验错误
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.BOM{},
		&entity.BOMItem{},
		&entity.ProductionLot{},
		&entity.ProductionLotItem{},
		&entity.ProductionProcess{},
		&entity.ProcessSubtask{},
		&entity.SubtaskBomRequirement{},
		&entity.Vendor{},
		&entity.LotVendorAssignment{},
		&entity.ProductionLotMaterial{},
		&entity.ProductionAlert{},
		&entity.DailyProductionEntry{},
		&entity.Remark{},
		&entity.RemarkComment{},
		&entity.QualityInspection{},
		&entity.NonConformance{},
	)
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			// BOM管理
			boms := authorized.Group("/boms")
			{
				boms.GET("", h.BOM.List)
				boms.POST("", h.BOM.Create)
				boms.GET("/:id", h.BOM.Get)
				boms.DELETE("/:id", h.BOM.Delete)
				boms.POST("/:id/items", h.BOM.AddItem)
				boms.GET("/:id/tree", h.BOM.GetTree)
				boms.GET("/:id/total-cost", h.BOM.GetTotalCost)
			}

			// 行项图纸
			bomItems := authorized.Group("/bom-items")
			{
				bomItems.POST("/:id/drawings/:kind", h.Drawing.Upload)
				bomItems.GET("/:id/drawings/:kind", h.Drawing.Download)
			}

			// 生产批次
			lots := authorized.Group("/production-planning/lots")
			{
				lots.GET("", h.Lot.List)
				lots.POST("", h.Lot.Create)
				lots.GET("/:id", h.Lot.Get)
				lots.PUT("/:id", h.Lot.Update)
				lots.DELETE("/:id", h.Lot.Delete)
				lots.PUT("/:id/status", h.Lot.Update)
				lots.PUT("/:id/status/by-progress", h.Lot.UpdateStatusByProgress)
				lots.GET("/:id/selected-items", h.Lot.GetSelectedItems)

				// 工序
				lots.GET("/:id/processes", h.Process.ListByLot)
				lots.POST("/:id/processes", h.Process.Create)

				// 供应商分配
				lots.GET("/:id/vendor-assignments", h.Vendor.ListAssignments)
				lots.POST("/:id/vendor-assignments", h.Vendor.CreateAssignment)
				lots.POST("/:id/vendor-assignments/bulk", h.Vendor.BulkCreateAssignments)

				// 物料跟踪
				lots.GET("/:id/materials", h.Material.ListByLot)
				lots.POST("/:id/materials/initialize", h.Material.Initialize)

				// 告警
				lots.GET("/:id/alerts", h.Material.ListAlerts)
				lots.POST("/:id/alerts", h.Material.CreateAlert)

				// 每日生产
				lots.GET("/:id/daily-entries", h.Daily.ListByLot)
				lots.POST("/:id/daily-entries", h.Daily.Create)
				lots.GET("/:id/daily-report", h.Daily.Report)
			}

			// 工序与子任务
			processes := authorized.Group("/processes")
			{
				processes.GET("/:id", h.Process.Get)
				processes.PUT("/:id", h.Process.Update)
				processes.DELETE("/:id", h.Process.Delete)
				processes.GET("/:id/subtasks", h.Process.ListSubtasks)
				processes.POST("/:id/subtasks", h.Process.CreateSubtask)
			}
			subtasks := authorized.Group("/subtasks")
			{
				subtasks.GET("/:id", h.Process.GetSubtask)
				subtasks.PUT("/:id", h.Process.UpdateSubtask)
				subtasks.DELETE("/:id", h.Process.DeleteSubtask)
			}

			// 供应商
			vendors := authorized.Group("/vendors")
			{
				vendors.GET("", h.Vendor.ListVendors)
				vendors.POST("", h.Vendor.CreateVendor)
			}
			assignments := authorized.Group("/vendor-assignments")
			{
				assignments.GET("/:id", h.Vendor.GetAssignment)
				assignments.PUT("/:id", h.Vendor.UpdateAssignment)
				assignments.DELETE("/:id", h.Vendor.DeleteAssignment)
			}

			// 物料行与告警
			authorized.PUT("/materials/:id", h.Material.Update)
			authorized.PUT("/alerts/:id/resolve", h.Material.ResolveAlert)

			// 每日记录
			authorized.PUT("/daily-entries/:id", h.Daily.Update)
			authorized.DELETE("/daily-entries/:id", h.Daily.Delete)

			// 备注/问题
			remarks := authorized.Group("/remarks")
			{
				remarks.GET("", h.Remark.List)
				remarks.POST("", h.Remark.Create)
				remarks.GET("/:id", h.Remark.Get)
				remarks.PUT("/:id", h.Remark.Update)
				remarks.DELETE("/:id", h.Remark.Delete)
				remarks.GET("/:id/comments", h.Remark.ListComments)
				remarks.POST("/:id/comments", h.Remark.CreateComment)
			}

			// 质检
			inspections := authorized.Group("/quality-control/inspections")
			{
				inspections.GET("", h.Inspection.List)
				inspections.POST("", h.Inspection.Create)
				inspections.GET("/metrics", h.Inspection.Metrics)
				inspections.GET("/:id", h.Inspection.Get)
				inspections.DELETE("/:id", h.Inspection.Delete)
				inspections.POST("/:id/start", h.Inspection.Start)
				inspections.POST("/:id/submit-results", h.Inspection.SubmitResults)
				inspections.POST("/:id/complete", h.Inspection.Complete)
				inspections.POST("/:id/approve", h.Inspection.Approve)
				inspections.POST("/:id/reject", h.Inspection.Reject)
				inspections.GET("/:id/non-conformances", h.Inspection.ListNonConformances)
				inspections.POST("/:id/non-conformances", h.Inspection.CreateNonConformance)
			}

			// 看板
			dashboard := authorized.Group("/dashboard")
			{
				dashboard.GET("/lots/:id", h.Dashboard.GetIntegrated)
				dashboard.GET("/monitoring", h.Dashboard.GetMonitoring)
			}

			// SSE事件流
			authorized.GET("/events/stream", h.SSE.Stream)
		}
	}
}
