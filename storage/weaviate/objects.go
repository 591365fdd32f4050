package weaviate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/storage"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// Upsert replaces the object with obj.ID, creating it if absent.
func (c *Client) Upsert(ctx context.Context, obj *core.IndexObject) error {
	if err := core.ValidateIndexObject(obj); err != nil {
		return err
	}
	props := make(map[string]any, len(obj.Properties))
	for k, v := range obj.Properties {
		props[k] = v
	}

	err := c.client.Data().Updater().
		WithClassName(obj.Class).
		WithID(obj.ID).
		WithProperties(props).
		WithVector(obj.Vector).
		Do(ctx)
	if err == nil {
		return nil
	}
	if statusCode(err) != http.StatusNotFound {
		return statusError("upsert "+obj.ID, err)
	}

	_, err = c.client.Data().Creator().
		WithClassName(obj.Class).
		WithID(obj.ID).
		WithProperties(props).
		WithVector(obj.Vector).
		Do(ctx)
	if err != nil {
		return statusError("create "+obj.ID, err)
	}
	return nil
}

// GetObject fetches one object including its vector.
func (c *Client) GetObject(ctx context.Context, class, id string) (*core.IndexObject, error) {
	objects, err := c.client.Data().ObjectsGetter().
		WithClassName(class).
		WithID(id).
		WithVector().
		Do(ctx)
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return nil, storage.ErrNotFound
		}
		return nil, statusError("get object "+id, err)
	}
	if len(objects) == 0 || objects[0] == nil {
		return nil, storage.ErrNotFound
	}

	raw := objects[0]
	props, _ := raw.Properties.(map[string]any)
	return &core.IndexObject{
		ID:         string(raw.ID),
		Class:      raw.Class,
		Properties: stringProperties(props),
		Vector:     []float32(raw.Vector),
	}, nil
}

type additionalJSON struct {
	ID       string   `json:"id"`
	Distance *float32 `json:"distance"`
}

// FindSimilar runs a nearVector query and returns the closest objects.
func (c *Client) FindSimilar(ctx context.Context, class string, vector []float32, limit int) ([]*core.SearchHit, error) {
	if len(vector) == 0 {
		return nil, core.ErrEmptyVector
	}
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var names []string
	fields := []graphql.Field{{
		Name:   "_additional",
		Fields: []graphql.Field{{Name: "id"}, {Name: "distance"}},
	}}
	for _, p := range core.RequiredProperties() {
		names = append(names, p.Name)
		fields = append(fields, graphql.Field{Name: p.Name})
	}

	nearVector := c.client.GraphQL().NearVectorArgBuilder().WithVector(vector)
	res, err := c.client.GraphQL().Get().
		WithClassName(class).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, statusError("graphql get", err)
	}
	raw, err := classData(res, "Get", class)
	if err != nil {
		return nil, err
	}

	var rows []map[string]json.RawMessage
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("decode hits: %w", err)
		}
	}

	hits := make([]*core.SearchHit, 0, len(rows))
	for _, row := range rows {
		var additional additionalJSON
		if extra, ok := row["_additional"]; ok {
			if err := json.Unmarshal(extra, &additional); err != nil {
				return nil, fmt.Errorf("decode hit metadata: %w", err)
			}
		}
		props := make(map[string]string, len(names))
		for _, name := range names {
			var v any
			if data, ok := row[name]; ok && json.Unmarshal(data, &v) == nil && v != nil {
				props[name] = fmt.Sprint(v)
			}
		}
		hit := &core.SearchHit{
			Object: &core.IndexObject{ID: additional.ID, Class: class, Properties: props},
		}
		if additional.Distance != nil {
			hit.Distance = *additional.Distance
			hit.Score = 1 - *additional.Distance
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// CountObjects returns the aggregate object count of class.
func (c *Client) CountObjects(ctx context.Context, class string) (int, error) {
	res, err := c.client.GraphQL().Aggregate().
		WithClassName(class).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, statusError("graphql aggregate", err)
	}
	raw, err := classData(res, "Aggregate", class)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	var rows []struct {
		Meta struct {
			Count int `json:"count"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return 0, fmt.Errorf("decode aggregate: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Meta.Count, nil
}

// classData returns data.<root>.<class> of a GraphQL response as JSON.
func classData(res *models.GraphQLResponse, root, class string) (json.RawMessage, error) {
	if res == nil {
		return nil, nil
	}
	if len(res.Errors) > 0 && res.Errors[0] != nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrInvalidQuery, res.Errors[0].Message)
	}
	section, ok := res.Data[root]
	if !ok || section == nil {
		return nil, nil
	}
	data, err := json.Marshal(section)
	if err != nil {
		return nil, fmt.Errorf("encode graphql data: %w", err)
	}
	var byClass map[string]json.RawMessage
	if err := json.Unmarshal(data, &byClass); err != nil {
		return nil, fmt.Errorf("decode graphql data: %w", err)
	}
	return byClass[class], nil
}

func stringProperties(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
