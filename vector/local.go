package vector

import (
	"context"
	"strings"
	"taskmind/models"
	"unicode"

	"gorm.io/gorm"
)

// localScanLimit bounds how many recent items Near scores.
const localScanLimit = 500

// Local keeps documents in the application database and ranks them by
// the number of distinct query terms they share.
type Local struct {
	db *gorm.DB
}

func NewLocal(db *gorm.DB) *Local {
	return &Local{db: db}
}

func (l *Local) Name() string { return BackendLocal }

func (l *Local) Put(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	items := make([]models.KnowledgeItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, models.KnowledgeItem{Content: doc.Content, URL: doc.URL})
	}
	return l.db.WithContext(ctx).Create(&items).Error
}

func (l *Local) Near(ctx context.Context, text string) (string, error) {
	query := terms(text)
	if len(query) == 0 {
		return "", nil
	}

	var items []models.KnowledgeItem
	if err := l.db.WithContext(ctx).Order("id desc").Limit(localScanLimit).Find(&items).Error; err != nil {
		return "", err
	}

	best, bestScore := "", 0
	for _, item := range items {
		score := 0
		for term := range terms(item.Content) {
			if query[term] {
				score++
			}
		}
		// Strict comparison keeps the newest item on ties.
		if score > bestScore {
			best, bestScore = item.Content, score
		}
	}
	return best, nil
}

func terms(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]bool, len(fields))
	for _, f := range fields {
		if len(f) > 1 {
			out[f] = true
		}
	}
	return out
}
