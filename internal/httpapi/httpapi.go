package httpapi

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	vidq "github.com/vidq/vidq-go"
)

// Handler exposes the task lifecycle over HTTP. It is a thin synchronous
// facade: every endpoint is one store/queue round trip, the long-running
// work stays in the worker role.
type Handler struct {
	client      *vidq.Client
	downloadDir string
	log         vidq.Logger
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	URL       string `json:"url"`
	AudioOnly bool   `json:"audio_only"`
	Format    string `json:"format"`
}

// RegisterHandlers mounts all task routes on the given engine.
func RegisterHandlers(r *gin.Engine, c *vidq.Client, downloadDir string, log vidq.Logger) {
	if log == nil {
		log = vidq.NewFmtLogger()
	}
	h := &Handler{client: c, downloadDir: downloadDir, log: log}

	r.GET("/healthz", h.health)
	r.POST("/tasks", h.createTask)
	r.GET("/tasks/history", h.history)
	r.GET("/tasks/:id", h.getTask)
	r.DELETE("/tasks/:id", h.deleteTask)
	r.POST("/tasks/:id/redownload", h.redownload)
	r.GET("/download/:id", h.download)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) createTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	var opts []vidq.Option
	if req.AudioOnly {
		opts = append(opts, vidq.AudioOnly())
	}
	if req.Format != "" {
		opts = append(opts, vidq.Format(req.Format))
	}
	t, err := h.client.Create(c.Request.Context(), req.URL, opts...)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.Infof("task created: id=%s url=%s", t.ID, t.URL)
	c.JSON(http.StatusAccepted, gin.H{"task_id": t.ID, "url": t.URL})
}

func (h *Handler) getTask(c *gin.Context) {
	t, err := h.client.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) history(c *gin.Context) {
	tasks, err := h.client.History(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) deleteTask(c *gin.Context) {
	id := c.Param("id")
	if err := h.client.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.log.Infof("task deleted: id=%s", id)
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "task_id": id})
}

func (h *Handler) redownload(c *gin.Context) {
	t, err := h.client.Redownload(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.Infof("task redownloaded: new_id=%s url=%s", t.ID, t.URL)
	c.JSON(http.StatusAccepted, gin.H{"new_task_id": t.ID, "url": t.URL})
}

func (h *Handler) download(c *gin.Context) {
	t, err := h.client.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if t.Status != vidq.StatusSuccess || t.FilePath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "task has no artifact"})
		return
	}
	abs, err := filepath.Abs(t.FilePath)
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.downloadDir != "" {
		dir, derr := filepath.Abs(h.downloadDir)
		if derr != nil {
			h.fail(c, derr)
			return
		}
		if !strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "access to this file is not allowed"})
			return
		}
	}
	if _, err := os.Stat(abs); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found on the server"})
		return
	}
	name := c.Param("id")
	if t.Details != nil && t.Details.OriginalFilename != "" {
		name = t.Details.OriginalFilename
	}
	c.FileAttachment(abs, name)
}

// fail maps library errors to HTTP responses.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, vidq.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, vidq.ErrEmptyURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": "url must not be empty"})
	case errors.Is(err, vidq.ErrDuplicateTask):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate task id"})
	default:
		h.log.Errorf("request failed: path=%s err=%v", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
