package handlers

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"taskmind/config"
	"taskmind/core"
	"taskmind/database"
	"taskmind/models"
	"taskmind/service"
	"taskmind/state"
	"taskmind/version"
	"time"

	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, err error) {
	status, _ := classifyError(err)
	c.JSON(status, gin.H{"detail": err.Error()})
}

// ExecuteTask runs a task and returns the model response
func ExecuteTask(c *gin.Context) {
	var req models.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	req.Normalize()

	result, err := service.GlobalServices.Task.Execute(c.Request.Context(), req.Task)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// StoreFeedback appends a feedback row
func StoreFeedback(c *gin.Context) {
	var req models.FeedbackCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if _, err := service.GlobalServices.Feedback.Store(req); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feedback stored, model will adapt"})
}

// ListFeedback returns the latest feedback rows
func ListFeedback(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 100)
	if !ok {
		return
	}

	rows, total, err := service.GlobalServices.Feedback.List(limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": rows, "total": total})
}

// GetHistory returns served tasks, newest first. Without page_size every row is returned.
func GetHistory(c *gin.Context) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := queryInt(c, "page_size", 0)
	if !ok {
		return
	}

	history, _, err := service.GlobalServices.History.List(page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// CrawlKnowledge scrapes the configured news sources into the vector store
func CrawlKnowledge(c *gin.Context) {
	n, err := service.GlobalServices.Knowledge.Crawl(c.Request.Context())
	if err != nil {
		core.LogErrorWithDetail("Knowledge", "Crawl failed", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingested": n})
}

// TriggerFineTune starts a background fine-tune run
func TriggerFineTune(c *gin.Context) {
	run, err := service.GlobalServices.FineTune.Start(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, run)
}

// ListFineTuneRuns returns recent fine-tune runs
func ListFineTuneRuns(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return
	}

	runs, err := service.GlobalServices.FineTune.ListRuns(limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "running": service.GlobalServices.FineTune.Running()})
}

// HealthCheck health endpoint
func HealthCheck(c *gin.Context) {
	dbHealthy := database.SQLiteUp(c.Request.Context(), database.DB)

	health := gin.H{
		"status":       "healthy",
		"timestamp":    time.Now().Unix(),
		"version":      version.GetFullVersion(),
		"build":        version.Current(),
		"db_healthy":   dbHealthy,
		"provider":     state.Global.Provider(),
		"active_model": state.Global.ActiveModel(),
		"vector":       config.Settings.VectorBackend,
		"fine_tuning":  service.GlobalServices.FineTune.Running(),
	}
	if last := state.Global.LastFineTune(); !last.IsZero() {
		health["last_fine_tune"] = last.Unix()
	}
	if sched := service.GlobalServices.Schedule; sched != nil {
		next := gin.H{}
		for name, at := range sched.Upcoming() {
			if !at.IsZero() {
				next[name] = at.Unix()
			}
		}
		health["next_runs"] = next
	}

	if !dbHealthy {
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

// GetMetrics gathers a JSON snapshot of system metrics
func GetMetrics(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	feedbackTotal, _ := service.GlobalServices.Feedback.Count()
	historyTotal, _ := service.GlobalServices.History.Count()

	c.JSON(http.StatusOK, gin.H{
		"timestamp": time.Now().Unix(),
		"storage": gin.H{
			"feedback":             feedbackTotal,
			"history":              historyTotal,
			"sqlite_up":            database.SQLiteUp(c.Request.Context(), database.DB),
			"sqlite_busy_errors":   database.SQLiteBusyErrorsTotal(),
			"sqlite_locked_errors": database.SQLiteLockedErrorsTotal(),
			"sqlite_slow_queries":  database.SQLiteSlowQueriesTotal(),
		},
		"model": gin.H{
			"provider":     state.Global.Provider(),
			"active_model": state.Global.ActiveModel(),
		},
		"system": gin.H{
			"goroutines":   runtime.NumGoroutine(),
			"memory_alloc": mem.Alloc,
			"memory_total": mem.TotalAlloc,
			"memory_sys":   mem.Sys,
			"gc_runs":      mem.NumGC,
		},
	})
}

// GetErrorLogs returns recent error logs
func GetErrorLogs(c *gin.Context) {
	logs := core.ErrorLoggerInstance.GetErrorLogs()
	c.JSON(http.StatusOK, logs)
}

// ClearErrorLogs wipes error logs
func ClearErrorLogs(c *gin.Context) {
	core.ErrorLoggerInstance.ClearErrorLogs()
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Error logs cleared"})
}

// queryInt reads an optional integer query parameter. On a malformed value it
// writes a 400 and returns false.
func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid " + key})
		return 0, false
	}
	return v, true
}
