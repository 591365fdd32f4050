package weaviate

import (
	"context"
	"net/http"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/storage"
	"github.com/weaviate/weaviate/entities/models"
)

func toProperty(p core.Property) *models.Property {
	return &models.Property{Name: p.Name, DataType: []string{p.DataType}}
}

func fromClass(c *models.Class) *core.Collection {
	collection := &core.Collection{
		Class:      c.Class,
		Vectorizer: c.Vectorizer,
	}
	for _, p := range c.Properties {
		if p == nil {
			continue
		}
		dataType := ""
		if len(p.DataType) > 0 {
			dataType = p.DataType[0]
		}
		collection.Properties = append(collection.Properties, core.Property{Name: p.Name, DataType: dataType})
	}
	return collection
}

// GetCollection returns the class named class.
func (c *Client) GetCollection(ctx context.Context, class string) (*core.Collection, error) {
	got, err := c.client.Schema().ClassGetter().WithClassName(class).Do(ctx)
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return nil, storage.ErrCollectionNotFound
		}
		return nil, statusError("get class", err)
	}
	if got == nil {
		return nil, storage.ErrCollectionNotFound
	}
	return fromClass(got), nil
}

// CreateCollection creates class with all of its declared properties.
func (c *Client) CreateCollection(ctx context.Context, collection *core.Collection) error {
	if collection == nil || collection.Class == "" {
		return core.ErrMissingClass
	}
	class := &models.Class{
		Class:      collection.Class,
		Vectorizer: collection.Vectorizer,
	}
	for _, p := range collection.Properties {
		class.Properties = append(class.Properties, toProperty(p))
	}

	err := c.client.Schema().ClassCreator().WithClass(class).Do(ctx)
	if err == nil {
		c.logger.Info("created class", "class", collection.Class, "properties", len(class.Properties))
		return nil
	}
	if alreadyExists(err) {
		return storage.ErrCollectionExists
	}
	return statusError("create class", err)
}

// AddProperty adds a single property to an existing class.
func (c *Client) AddProperty(ctx context.Context, class string, property core.Property) error {
	err := c.client.Schema().PropertyCreator().
		WithClassName(class).
		WithProperty(toProperty(property)).
		Do(ctx)
	if err == nil {
		c.logger.Info("added property", "class", class, "property", property.Name)
		return nil
	}
	if alreadyExists(err) {
		return storage.ErrPropertyExists
	}
	if statusCode(err) == http.StatusNotFound {
		return storage.ErrCollectionNotFound
	}
	return statusError("add property", err)
}
