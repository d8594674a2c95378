package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"taskmind/crawler"
	"taskmind/metrics"
	"taskmind/vector"
)

// KnowledgeService feeds crawled items into the vector store
type KnowledgeService struct {
	store       vector.Store
	spider      *crawler.Spider
	sourcesFile string
}

func NewKnowledgeService(store vector.Store, spider *crawler.Spider, sourcesFile string) *KnowledgeService {
	if store == nil {
		store = vector.Noop{}
	}
	return &KnowledgeService{store: store, spider: spider, sourcesFile: sourcesFile}
}

// Ingest stores items whose content is not blank, unmodified, and returns
// how many were stored
func (s *KnowledgeService) Ingest(ctx context.Context, items []crawler.Item) (int, error) {
	docs := make([]vector.Document, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Content) == "" {
			continue
		}
		docs = append(docs, vector.Document{Content: item.Content, URL: item.URL})
	}
	if len(docs) == 0 {
		return 0, nil
	}

	if err := s.store.Put(ctx, docs); err != nil {
		metrics.Get().VectorErrors.WithLabelValues("put").Inc()
		return 0, fmt.Errorf("failed to store %d documents in %s: %w", len(docs), s.store.Name(), err)
	}
	metrics.Get().CrawlItems.Add(float64(len(docs)))
	return len(docs), nil
}

// Crawl scrapes the configured sources and ingests what was found. Sources
// that fail are logged; items from the others are still ingested.
func (s *KnowledgeService) Crawl(ctx context.Context) (int, error) {
	if s.spider == nil {
		return 0, fmt.Errorf("crawler not configured")
	}

	sources, err := crawler.LoadSources(s.sourcesFile)
	if err != nil {
		return 0, err
	}

	items, crawlErr := s.spider.Crawl(ctx, sources)
	if crawlErr != nil {
		log.Printf("Warning: crawl finished with errors: %v", crawlErr)
		if len(items) == 0 {
			return 0, crawlErr
		}
	}

	n, err := s.Ingest(ctx, items)
	if err != nil {
		return 0, err
	}
	log.Printf("Crawl ingested %d of %d items from %d sources", n, len(items), len(sources))
	return n, nil
}
