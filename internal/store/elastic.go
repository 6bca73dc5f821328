// internal/store/elastic.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"tradeboard/internal/models"
)

// ElasticStore implements Store on an Elasticsearch index using search_after
// cursoring over [timestamp, _id].
type ElasticStore struct {
	client *elasticsearch.Client
	index  string
}

func NewElastic(client *elasticsearch.Client, index string) *ElasticStore {
	return &ElasticStore{client: client, index: index}
}

func (s *ElasticStore) Backend() string { return "elasticsearch" }

func (s *ElasticStore) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrStoreUnavailable, res.Status())
	}
	return nil
}

func (s *ElasticStore) Insert(ctx context.Context, p models.JobPosting) (string, error) {
	id := uuid.NewString()
	p.ID = id

	body, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return "", fmt.Errorf("%w: index returned %s", ErrStoreUnavailable, res.Status())
	}

	return id, nil
}

// BuildSearchBody builds the bool query for a native page fetch. Exported for
// testing; the body is deterministic for a given query and cursor.
func BuildSearchBody(q NativeQuery, searchAfter []interface{}, limit int) map[string]interface{} {
	filterClauses := []interface{}{}

	if q.CityLower != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"cityLower": q.CityLower},
		})
	}
	if len(q.SkillsAnyOf) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"skills": q.SkillsAnyOf},
		})
	}
	if !q.PostedAfter.IsZero() {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"timestamp": map[string]interface{}{"gte": q.PostedAfter.UnixMilli()},
			},
		})
	}

	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(filterClauses) > 0 {
		query = map[string]interface{}{
			"bool": map[string]interface{}{"filter": filterClauses},
		}
	}

	body := map[string]interface{}{
		"query": query,
		"size":  limit,
		"sort": []interface{}{
			map[string]interface{}{"timestamp": "desc"},
			map[string]interface{}{"_id": "desc"},
		},
	}
	if searchAfter != nil {
		body["search_after"] = searchAfter
	}

	return body
}

func (s *ElasticStore) FetchPage(ctx context.Context, q NativeQuery, startAfter string, limit int) ([]models.JobPosting, error) {
	var searchAfter []interface{}
	if startAfter != "" {
		cursorRow, err := s.GetByID(ctx, startAfter)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrInvalidCursor, startAfter)
			}
			return nil, err
		}
		searchAfter = []interface{}{cursorRow.Timestamp.UnixMilli(), startAfter}
	}

	body, err := json.Marshal(BuildSearchBody(q, searchAfter, limit))
	if err != nil {
		return nil, err
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: search returned %s", ErrStoreUnavailable, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string            `json:"_id"`
				Source models.JobPosting `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", ErrStoreUnavailable, err)
	}

	out := []models.JobPosting{}
	for _, hit := range parsed.Hits.Hits {
		p := hit.Source
		p.ID = hit.ID
		out = append(out, p)
	}

	return out, nil
}

func (s *ElasticStore) GetByID(ctx context.Context, id string) (models.JobPosting, error) {
	req := esapi.GetRequest{Index: s.index, DocumentID: id}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return models.JobPosting{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return models.JobPosting{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if res.IsError() {
		return models.JobPosting{}, fmt.Errorf("%w: get returned %s", ErrStoreUnavailable, res.Status())
	}

	var parsed struct {
		ID     string            `json:"_id"`
		Source models.JobPosting `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return models.JobPosting{}, fmt.Errorf("%w: decode get response: %v", ErrStoreUnavailable, err)
	}

	p := parsed.Source
	p.ID = parsed.ID
	return p, nil
}

func (s *ElasticStore) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: s.index, DocumentID: id, Refresh: "true"}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if res.IsError() {
		return fmt.Errorf("%w: delete returned %s", ErrStoreUnavailable, res.Status())
	}
	return nil
}
