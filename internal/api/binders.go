package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akm12109/SDM-Admin/internal/domain"
	"github.com/akm12109/SDM-Admin/internal/form"
	"github.com/akm12109/SDM-Admin/internal/service"
)

// --- Request/Response Structs ---
// Presence checks happen in the form controller so every form reports the same
// validation errors. Binding only converts types.

type NoticeRequest struct {
	Message string `json:"message" form:"message"`
}

type ClassRequest struct {
	Subject   string `json:"subject" form:"subject"`
	StartTime string `json:"startTime" form:"startTime"`
	JitsiLink string `json:"jitsiLink" form:"jitsiLink"`
}

type VideoRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Link        string `json:"link" form:"link"`
}

type HomeworkRequest struct {
	Title   string `form:"title"`
	DueDate string `form:"dueDate"`
}

type EventRequest struct {
	Title string `form:"title"`
	Date  string `form:"date"`
}

type SlideRequest struct {
	Title       string `form:"title"`
	Description string `form:"description"`
}

type TeacherRequest struct {
	Name          string `form:"name"`
	Subject       string `form:"subject"`
	ClassTeacher  string `form:"classTeacher"`
	ContactNumber string `form:"contactNumber"`
	Email         string `form:"email"`
	Telegram      string `form:"telegram"`
	WhatsApp      string `form:"whatsapp"`
}

type StudentRequest struct {
	Name     string `form:"name"`
	Class    string `form:"class"`
	Age      int    `form:"age"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

// Accepted date-time layouts, most specific first. The console's datetime-local
// inputs send minutes without a zone and are read as UTC.
var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

func parseTime(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &form.ValidationError{Field: field, Message: "must be a date such as 2024-05-01 or 2024-05-01T09:30"}
}

func bindError(err error) error {
	return &form.ValidationError{Field: "form", Message: fmt.Sprintf("malformed request: %v", err)}
}

// formFile extracts an optional multipart file part.
func formFile(c *gin.Context, field string, maxSize int64) (*domain.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		// JSON bodies and forms without the part simply carry no file
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, bindError(err)
	}
	if maxSize > 0 && fh.Size > maxSize {
		return nil, &form.ValidationError{Field: field, Message: fmt.Sprintf("must not exceed %d bytes", maxSize)}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, bindError(err)
	}
	return &domain.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, nil
}

func bindNotice(c *gin.Context) (*domain.Notice, *domain.File, error) {
	var req NoticeRequest
	if err := c.ShouldBind(&req); err != nil {
		return nil, nil, bindError(err)
	}
	return &domain.Notice{Message: strings.TrimSpace(req.Message)}, nil, nil
}

func bindClass(c *gin.Context) (*domain.Class, *domain.File, error) {
	var req ClassRequest
	if err := c.ShouldBind(&req); err != nil {
		return nil, nil, bindError(err)
	}
	start, err := parseTime("startTime", req.StartTime)
	if err != nil {
		return nil, nil, err
	}
	return &domain.Class{
		Subject:   strings.TrimSpace(req.Subject),
		StartTime: start,
		JitsiLink: strings.TrimSpace(req.JitsiLink),
	}, nil, nil
}

func bindVideo(c *gin.Context) (*domain.Video, *domain.File, error) {
	var req VideoRequest
	if err := c.ShouldBind(&req); err != nil {
		return nil, nil, bindError(err)
	}
	return &domain.Video{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Link:        strings.TrimSpace(req.Link),
	}, nil, nil
}

func homeworkBinder(maxSize int64) Binder[*domain.Homework] {
	return func(c *gin.Context) (*domain.Homework, *domain.File, error) {
		var req HomeworkRequest
		if err := c.ShouldBind(&req); err != nil {
			return nil, nil, bindError(err)
		}
		due, err := parseTime("dueDate", req.DueDate)
		if err != nil {
			return nil, nil, err
		}
		file, err := formFile(c, "photo", maxSize)
		if err != nil {
			return nil, nil, err
		}
		return &domain.Homework{Title: strings.TrimSpace(req.Title), DueDate: due}, file, nil
	}
}

func eventBinder(maxSize int64) Binder[*domain.Event] {
	return func(c *gin.Context) (*domain.Event, *domain.File, error) {
		var req EventRequest
		if err := c.ShouldBind(&req); err != nil {
			return nil, nil, bindError(err)
		}
		file, err := formFile(c, "image", maxSize)
		if err != nil {
			return nil, nil, err
		}
		return &domain.Event{Title: strings.TrimSpace(req.Title), Date: strings.TrimSpace(req.Date)}, file, nil
	}
}

func slideBinder(maxSize int64) Binder[*domain.Slide] {
	return func(c *gin.Context) (*domain.Slide, *domain.File, error) {
		var req SlideRequest
		if err := c.ShouldBind(&req); err != nil {
			return nil, nil, bindError(err)
		}
		file, err := formFile(c, "image", maxSize)
		if err != nil {
			return nil, nil, err
		}
		return &domain.Slide{
			Title:       strings.TrimSpace(req.Title),
			Description: strings.TrimSpace(req.Description),
		}, file, nil
	}
}

func teacherBinder(maxSize int64) Binder[*domain.Teacher] {
	return func(c *gin.Context) (*domain.Teacher, *domain.File, error) {
		var req TeacherRequest
		if err := c.ShouldBind(&req); err != nil {
			return nil, nil, bindError(err)
		}
		file, err := formFile(c, "photo", maxSize)
		if err != nil {
			return nil, nil, err
		}
		return &domain.Teacher{
			Name:          strings.TrimSpace(req.Name),
			Subject:       strings.TrimSpace(req.Subject),
			ClassTeacher:  strings.TrimSpace(req.ClassTeacher),
			ContactNumber: strings.TrimSpace(req.ContactNumber),
			Email:         strings.TrimSpace(req.Email),
			Telegram:      strings.TrimSpace(req.Telegram),
			WhatsApp:      strings.TrimSpace(req.WhatsApp),
		}, file, nil
	}
}

const minPasswordLength = 8

// studentBinder creates the login account up front; the users record is written
// by the form controller after the optional profile photo is stored.
func studentBinder(authService service.AuthService, maxSize int64) Binder[*domain.User] {
	return func(c *gin.Context) (*domain.User, *domain.File, error) {
		var req StudentRequest
		if err := c.ShouldBind(&req); err != nil {
			return nil, nil, bindError(err)
		}
		if strings.TrimSpace(req.Name) == "" {
			return nil, nil, &form.ValidationError{Field: "name", Message: "cannot be empty"}
		}
		if strings.TrimSpace(req.Email) == "" {
			return nil, nil, &form.ValidationError{Field: "email", Message: "cannot be empty"}
		}
		if len(req.Password) < minPasswordLength {
			return nil, nil, &form.ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
		}
		// Hash the password and build the account; nothing is stored yet
		user, err := authService.NewAccount(c.Request.Context(), strings.TrimSpace(req.Name), req.Email, req.Password, domain.RoleStudent)
		if err != nil {
			return nil, nil, err
		}
		user.Class = strings.TrimSpace(req.Class)
		user.Age = req.Age

		file, err := formFile(c, "profilePhoto", maxSize)
		if err != nil {
			return nil, nil, err
		}
		return user, file, nil
	}
}
