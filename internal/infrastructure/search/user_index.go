// Package search keeps an Elasticsearch index of users for full-text lookup.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

type UserIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	return &UserIndex{es: es, index: index}
}

type userDoc struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toDoc(r entity.Record) userDoc {
	return userDoc{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		Role:      r.Role,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (d userDoc) record() (entity.Record, error) {
	created, err := time.Parse(time.RFC3339Nano, d.CreatedAt)
	if err != nil {
		return entity.Record{}, err
	}
	updated, err := time.Parse(time.RFC3339Nano, d.UpdatedAt)
	if err != nil {
		return entity.Record{}, err
	}
	return entity.Record{ID: d.ID, Email: d.Email, Name: d.Name, Role: d.Role, CreatedAt: created, UpdatedAt: updated}, nil
}

// Index creates or replaces the document of one user.
func (i *UserIndex) Index(ctx context.Context, rec entity.Record) error {
	b, err := json.Marshal(toDoc(rec))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: i.index, DocumentID: rec.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index user %s: %s", rec.ID, res.Status())
	}
	return nil
}

// Delete removes a user document. A missing document is not an error.
func (i *UserIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: i.index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete user %s: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match over email and name, email weighted higher.
func (i *UserIndex) Search(ctx context.Context, q string, size int) ([]entity.Record, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := i.es.Search(
		i.es.Search.WithContext(c),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		// no index yet means nothing was indexed
		if res.StatusCode == http.StatusNotFound {
			return []entity.Record{}, nil
		}
		return nil, fmt.Errorf("search users: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string  `json:"_id"`
				Source userDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Record, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		rec, err := h.Source.record()
		if err != nil {
			return nil, fmt.Errorf("decode hit %s: %w", h.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
