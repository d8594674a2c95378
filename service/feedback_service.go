package service

import (
	"fmt"
	"taskmind/metrics"
	"taskmind/models"

	"gorm.io/gorm"
)

// FeedbackService stores and reads user feedback
type FeedbackService struct {
	db *gorm.DB
}

func NewFeedbackService(db *gorm.DB) *FeedbackService {
	return &FeedbackService{db: db}
}

// Store appends one feedback row
func (s *FeedbackService) Store(req models.FeedbackCreate) (*models.Feedback, error) {
	req.Normalize()

	if req.Task == "" {
		return nil, wrapSentinel("task is required", ErrInvalidFeedback)
	}
	if req.Response == "" {
		return nil, wrapSentinel("response is required", ErrInvalidFeedback)
	}
	if req.Feedback == "" {
		return nil, wrapSentinel("feedback is required", ErrInvalidFeedback)
	}

	row := models.Feedback{
		Task:     req.Task,
		Response: req.Response,
		Feedback: req.Feedback,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}
	metrics.Get().FeedbackTotal.Inc()

	return &row, nil
}

// List returns the latest feedback rows, newest first, with the total row count
func (s *FeedbackService) List(limit int) ([]models.Feedback, int64, error) {
	if limit <= 0 {
		limit = 100
	}

	total, err := s.Count()
	if err != nil {
		return nil, 0, err
	}

	var rows []models.Feedback
	if err := s.db.Order("id desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}
	return rows, total, nil
}

func (s *FeedbackService) Count() (int64, error) {
	var total int64
	if err := s.db.Model(&models.Feedback{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return total, nil
}
