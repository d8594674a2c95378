package service

import (
	"fmt"
	"taskmind/models"

	"gorm.io/gorm"
)

// HistoryService reads served task/response pairs
type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// List returns history in insertion order. A non-positive pageSize returns every row.
func (s *HistoryService) List(page, pageSize int) ([]models.HistoryRead, int64, error) {
	return s.list("id asc", page, pageSize)
}

// Recent is List with the newest rows first.
func (s *HistoryService) Recent(page, pageSize int) ([]models.HistoryRead, int64, error) {
	return s.list("id desc", page, pageSize)
}

func (s *HistoryService) Count() (int64, error) {
	var total int64
	if err := s.db.Model(&models.HistoryEntry{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return total, nil
}

func (s *HistoryService) list(order string, page, pageSize int) ([]models.HistoryRead, int64, error) {
	total, err := s.Count()
	if err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.HistoryEntry{}).Order(order)
	if pageSize > 0 {
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	history := make([]models.HistoryRead, 0)
	if err := query.Select("task", "response").Find(&history).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list history: %w", err)
	}
	return history, total, nil
}
