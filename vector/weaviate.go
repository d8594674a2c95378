package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
)

var classNamePattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*$`)

// Weaviate stores documents as objects of one class and answers nearText queries.
type Weaviate struct {
	client *weaviate.Client
	class  string
}

// NewWeaviate connects to the instance at rawURL, e.g. http://localhost:8080.
func NewWeaviate(rawURL, class string, httpClient *http.Client) (*Weaviate, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("weaviate url is empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid weaviate url: %q", rawURL)
	}
	if !classNamePattern.MatchString(class) {
		return nil, fmt.Errorf("invalid weaviate class name: %q", class)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Host:             u.Host,
		Scheme:           u.Scheme,
		ConnectionClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("weaviate client: %w", err)
	}
	return &Weaviate{client: client, class: class}, nil
}

func (w *Weaviate) Name() string { return BackendWeaviate }

// Put creates one object per document; it stops at the first failure.
func (w *Weaviate) Put(ctx context.Context, docs []Document) error {
	for _, doc := range docs {
		_, err := w.client.Data().Creator().
			WithClassName(w.class).
			WithProperties(map[string]interface{}{
				"content": doc.Content,
				"url":     doc.URL,
			}).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("weaviate create object: %w", err)
		}
	}
	return nil
}

// Near runs a nearText query and returns the content of the best hit.
func (w *Weaviate) Near(ctx context.Context, text string) (string, error) {
	gql := w.client.GraphQL()
	resp, err := gql.Get().
		WithClassName(w.class).
		WithFields(graphql.Field{Name: "content"}).
		WithNearText(gql.NearTextArgBuilder().WithConcepts([]string{text})).
		WithLimit(1).
		Do(ctx)
	if err != nil {
		return "", fmt.Errorf("weaviate query: %w", err)
	}
	if len(resp.Errors) > 0 && resp.Errors[0] != nil {
		return "", fmt.Errorf("weaviate query: %s", resp.Errors[0].Message)
	}

	data, err := json.Marshal(resp.Data)
	if err != nil {
		return "", fmt.Errorf("weaviate query: %w", err)
	}
	return gjson.GetBytes(data, "Get."+w.class+".0.content").String(), nil
}
