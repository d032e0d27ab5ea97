package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akm12109/SDM-Admin/internal/domain"
	"github.com/akm12109/SDM-Admin/internal/form"
	"github.com/akm12109/SDM-Admin/internal/listing"
	"github.com/akm12109/SDM-Admin/internal/service"
	"github.com/akm12109/SDM-Admin/internal/storage"
)

// Forms holds one registry per console form.
type Forms struct {
	Notices  *form.Registry[*domain.Notice]
	Classes  *form.Registry[*domain.Class]
	Videos   *form.Registry[*domain.Video]
	Homework *form.Registry[*domain.Homework]
	Events   *form.Registry[*domain.Event]
	Slides   *form.Registry[*domain.Slide]
	Teachers *form.Registry[*domain.Teacher]
	Students *form.Registry[*domain.User]
}

type Dependencies struct {
	JWTSecret   string
	MaxFileSize int64
	AuthService service.AuthService
	Forms       Forms
	Students    *listing.Feed[*domain.User]
	Storage     Presigner
	Metrics     *service.MetricsService
	Logger      *zap.Logger
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	f := deps.Forms
	maxSize := deps.MaxFileSize

	authHandler := NewAuthHandler(deps.AuthService, logger)
	noticeHandler := NewRecordHandler(f.Notices, bindNotice, logger)
	classHandler := NewRecordHandler(f.Classes, bindClass, logger)
	videoHandler := NewRecordHandler(f.Videos, bindVideo, logger)
	homeworkHandler := NewRecordHandler(f.Homework, homeworkBinder(maxSize), logger)
	eventHandler := NewRecordHandler(f.Events, eventBinder(maxSize), logger)
	slideHandler := NewRecordHandler(f.Slides, slideBinder(maxSize), logger)
	teacherHandler := NewRecordHandler(f.Teachers, teacherBinder(maxSize), logger)
	studentHandler := NewRecordHandler(f.Students, studentBinder(deps.AuthService, maxSize), logger)
	streamHandler := NewStreamHandler(map[string]FormLookup{
		form.NoticeSpec().Name:   f.Notices,
		form.ClassSpec().Name:    f.Classes,
		form.VideoSpec().Name:    f.Videos,
		form.HomeworkSpec().Name: f.Homework,
		form.EventSpec().Name:    f.Events,
		form.SlideSpec().Name:    f.Slides,
		form.TeacherSpec().Name:  f.Teachers,
		form.StudentSpec().Name:  f.Students,
	}, deps.Students, logger)
	mediaHandler := NewMediaHandler(deps.Storage, storage.DefaultPresignedURLExpiry, logger)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	apiV1 := router.Group("/api/v1")
	apiV1.POST("/auth/login", authHandler.Login)
	apiV1.GET("/media/*key", mediaHandler.Get)

	admin := apiV1.Group("")
	admin.Use(AuthMiddleware(deps.JWTSecret), RoleMiddleware(domain.RoleAdmin))
	{
		admin.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": domain.RoleAdmin})
		})

		admin.POST("/notices", noticeHandler.Create)
		admin.GET("/notices", noticeHandler.List)
		admin.POST("/classes", classHandler.Create)
		admin.GET("/classes", classHandler.List)
		admin.POST("/videos", videoHandler.Create)
		admin.GET("/videos", videoHandler.List)
		admin.POST("/homework", homeworkHandler.Create)
		admin.GET("/homework", homeworkHandler.List)

		for path, h := range map[string]*crud{
			"/events":   crudOf(eventHandler),
			"/slides":   crudOf(slideHandler),
			"/teachers": crudOf(teacherHandler),
		} {
			group := admin.Group(path)
			group.POST("", h.create)
			group.GET("", h.list)
			group.GET("/:id", h.prefill)
			group.PUT("/:id", h.update)
			group.DELETE("/:id", h.delete)
		}

		admin.POST("/students", studentHandler.Create)
		admin.GET("/students", studentHandler.List)
		admin.GET("/students/watch", streamHandler.WatchStudents)

		admin.GET("/forms/:form", streamHandler.FormState)
		admin.GET("/forms/:form/events", streamHandler.FormEvents)
	}
}

// crud erases the record type so editable forms can share one route table.
type crud struct {
	create, list, prefill, update, delete gin.HandlerFunc
}

func crudOf[T domain.Record](h *RecordHandler[T]) *crud {
	return &crud{create: h.Create, list: h.List, prefill: h.Prefill, update: h.Update, delete: h.Delete}
}
