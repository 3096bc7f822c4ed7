package devserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskflow/internal/model"
)

const contextKeyUsername = "username"

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// pageResponse mirrors a Spring Data page, which is what clients of this
// contract expect.
type pageResponse struct {
	Content       []model.Task `json:"content"`
	TotalElements int          `json:"totalElements"`
	TotalPages    int          `json:"totalPages"`
	Number        int          `json:"number"`
	Size          int          `json:"size"`
}

func (s *Server) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		badRequest(c, "Username is required", "")
		return
	}
	if len(req.Password) < minPasswordLen {
		badRequest(c, "Password too short", "password must be at least 4 characters")
		return
	}
	role := req.Role
	if role == "" {
		role = model.DefaultRole
	}

	if err := s.store.register(username, req.Password, role); err != nil {
		if errors.Is(err, errUsernameTaken) {
			respond(c, http.StatusConflict, ErrCodeAlreadyExists, "Username already exists", "choose a different username")
			return
		}
		respond(c, http.StatusInternalServerError, ErrCodeInternalError, "Failed to create user", "")
		return
	}

	s.logger.Info("user registered", "username", username)
	c.JSON(http.StatusCreated, gin.H{"username": username, "role": role})
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}

	token, u, err := s.store.login(strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		respond(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid username or password", "")
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token, Username: u.username, Role: u.role})
}

// requireAuth resolves the bearer token to a username.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			unauthorized(c, "")
			return
		}
		username, ok := s.store.userForToken(token)
		if !ok {
			unauthorized(c, "Invalid or expired token")
			return
		}
		c.Set(contextKeyUsername, username)
		c.Next()
	}
}

func (s *Server) listTasks(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		badRequest(c, "Invalid page", "page must be a non-negative integer")
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if err != nil || size < 1 || size > maxPageSize {
		badRequest(c, "Invalid size", "size must be between 1 and 100")
		return
	}
	filter, err := model.ParseStatusFilter(c.Query("status"))
	if err != nil {
		badRequest(c, "Invalid status", err.Error())
		return
	}

	content, total := s.store.listTasks(page, size, filter)
	c.JSON(http.StatusOK, pageResponse{
		Content:       content,
		TotalElements: total,
		TotalPages:    (total + size - 1) / size,
		Number:        page,
		Size:          size,
	})
}

// bindTask decodes and validates a task body.
func bindTask(c *gin.Context) (model.Task, bool) {
	var t model.Task
	if err := c.ShouldBindJSON(&t); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return model.Task{}, false
	}
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		badRequest(c, "Title is required", "title must not be blank")
		return model.Task{}, false
	}
	if t.Status != "" && !t.Status.Valid() {
		badRequest(c, "Invalid status", string(t.Status))
		return model.Task{}, false
	}
	if t.Priority != "" && !t.Priority.Valid() {
		badRequest(c, "Invalid priority", string(t.Priority))
		return model.Task{}, false
	}
	return t, true
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "Invalid task ID", "")
		return 0, false
	}
	return id, true
}

func (s *Server) createTask(c *gin.Context) {
	t, ok := bindTask(c)
	if !ok {
		return
	}
	if t.CreatedBy == "" {
		t.CreatedBy = c.GetString(contextKeyUsername)
	}
	if t.ModifiedBy == "" {
		t.ModifiedBy = t.CreatedBy
	}
	c.JSON(http.StatusCreated, s.store.createTask(t))
}

func (s *Server) updateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	t, ok := bindTask(c)
	if !ok {
		return
	}
	if t.ModifiedBy == "" {
		t.ModifiedBy = c.GetString(contextKeyUsername)
	}

	updated, err := s.store.updateTask(id, t)
	if err != nil {
		notFound(c, "Task not found")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	if err := s.store.deleteTask(id); err != nil {
		notFound(c, "Task not found")
		return
	}
	c.Status(http.StatusNoContent)
}
