package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/google/uuid"

	"github.com/Skotchmaster/contacts/internal/models"
)

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":        {"type": "keyword"},
      "userId":    {"type": "keyword"},
      "name":      {"type": "text"},
      "email":     {"type": "text"},
      "createdAt": {"type": "date"},
      "updatedAt": {"type": "date"}
    }
  }
}`

type ElasticIndex struct {
	ES    *elasticsearch.Client
	Index string
}

// NewClient connects to Elasticsearch and checks the cluster answers.
func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	slog.Info("connecting to elasticsearch", "url", url)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}

	return client, nil
}

func NewElasticIndex(es *elasticsearch.Client, index string) *ElasticIndex {
	return &ElasticIndex{ES: es, Index: index}
}

// EnsureIndex creates the index with its mapping unless it already exists.
func (i *ElasticIndex) EnsureIndex(ctx context.Context) error {
	res, err := i.ES.Indices.Exists([]string{i.Index}, i.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = i.ES.Indices.Create(i.Index,
		i.ES.Indices.Create.WithContext(ctx),
		i.ES.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))),
	)
	if err != nil {
		return fmt.Errorf("index create: %w", err)
	}
	return checkResponse("index create", res)
}

func (i *ElasticIndex) Put(ctx context.Context, c *models.Contact) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode contact: %w", err)
	}

	res, err := i.ES.Index(i.Index, &buf,
		i.ES.Index.WithContext(ctx),
		i.ES.Index.WithDocumentID(c.ID.String()),
		i.ES.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("index contact: %w", err)
	}
	return checkResponse("index contact", res)
}

func (i *ElasticIndex) Remove(ctx context.Context, _ uuid.UUID, id uuid.UUID) error {
	res, err := i.ES.Delete(i.Index, id.String(),
		i.ES.Delete.WithContext(ctx),
		i.ES.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return checkResponse("delete contact", res)
}

func (i *ElasticIndex) RemoveOwner(ctx context.Context, ownerID uuid.UUID) error {
	body, err := encode(map[string]any{
		"query": map[string]any{
			"term": map[string]any{"userId": ownerID.String()},
		},
	})
	if err != nil {
		return err
	}

	res, err := i.ES.DeleteByQuery([]string{i.Index}, body,
		i.ES.DeleteByQuery.WithContext(ctx),
		i.ES.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return fmt.Errorf("delete owner contacts: %w", err)
	}
	return checkResponse("delete owner contacts", res)
}

func (i *ElasticIndex) Search(ctx context.Context, ownerID uuid.UUID, q string, offset, limit int) (int64, []models.Contact, error) {
	body, err := encode(map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     q,
						"fields":    []string{"name^2", "email"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"userId": ownerID.String()},
				},
			},
		},
		"from": offset,
		"size": limit,
	})
	if err != nil {
		return 0, nil, err
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Index),
		i.ES.Search.WithBody(body),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search contacts: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search contacts: %s: %s", res.Status(), msg)
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Source models.Contact `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]models.Contact, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		if hit.Source.UserID != ownerID {
			continue
		}
		items = append(items, hit.Source)
	}
	return r.Hits.Total.Value, items, nil
}

func encode(v any) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	return &buf, nil
}

func checkResponse(op string, res *esapi.Response) error {
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("%s: %s: %s", op, res.Status(), body)
	}
	return nil
}
