package handlers

import (
	"context"
	"net/http"
	"strconv"
	"taskmind/models"
	"taskmind/service"
	"taskmind/state"

	"github.com/gin-gonic/gin"
)

func ExecuteTaskV2(c *gin.Context) {
	var req models.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errV2(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}
	req.Normalize()

	result, err := service.GlobalServices.Task.Execute(c.Request.Context(), req.Task)
	if err != nil {
		serviceErrV2(c, "Failed to execute task", err)
		return
	}
	okV2(c, gin.H{"result": result, "model": state.Global.ActiveModel()})
}

func StoreFeedbackV2(c *gin.Context) {
	var req models.FeedbackCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		errV2(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	row, err := service.GlobalServices.Feedback.Store(req)
	if err != nil {
		serviceErrV2(c, "Failed to store feedback", err)
		return
	}
	okV2(c, row)
}

func GetHistoryV2(c *gin.Context) {
	page, ok := queryIntV2(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := queryIntV2(c, "page_size", 20)
	if !ok {
		return
	}

	history, total, err := service.GlobalServices.History.Recent(page, pageSize)
	if err != nil {
		serviceErrV2(c, "Failed to list history", err)
		return
	}
	okV2(c, gin.H{
		"items":     history,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func TriggerFineTuneV2(c *gin.Context) {
	run, err := service.GlobalServices.FineTune.Start(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		serviceErrV2(c, "Failed to start fine-tune", err)
		return
	}
	respondV2(c, http.StatusAccepted, CodeOK, "Fine-tune started", run)
}

func queryIntV2(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		errV2(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid "+key, "invalid "+key)
		return 0, false
	}
	return v, true
}
