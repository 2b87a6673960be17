// Package qdrant provides a Qdrant vector database driver implementation
// over the official gRPC client.
package qdrant

import (
	"context"
	"fmt"
	"net"
	"strconv"

	qdrantclient "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/amberhq/amber/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection for amber embeddings.
	DefaultCollectionName = "amber"

	// DefaultPort is Qdrant's gRPC port.
	DefaultPort = 6334
)

// Driver implements vector.Driver using Qdrant.
type Driver struct {
	client         *qdrantclient.Client
	collectionName string
	logger         *zap.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Target is the Qdrant gRPC address (e.g., "localhost:6334").
	Target string

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// Dimensions is the embedding vector size, required to create the
	// collection on first use.
	Dimensions uint
}

// NewDriver creates a new Qdrant vector driver and ensures the collection
// exists.
func NewDriver(ctx context.Context, c Config, logger *zap.Logger) (*Driver, error) {
	if c.Target == "" {
		return nil, fmt.Errorf("qdrant target is required")
	}

	if c.Dimensions == 0 {
		return nil, fmt.Errorf("qdrant embedding dimensions cannot be 0, must be configured")
	}

	host, port, err := splitTarget(c.Target)
	if err != nil {
		return nil, fmt.Errorf("parsing qdrant target: %w", err)
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}

	client, err := qdrantclient.NewClient(&qdrantclient.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: checking collection: %v", vector.ErrConnection, err)
	}

	if !exists {
		err = client.CreateCollection(ctx, &qdrantclient.CreateCollection{
			CollectionName: collectionName,
			VectorsConfig: qdrantclient.NewVectorsConfig(&qdrantclient.VectorParams{
				Size:     uint64(c.Dimensions),
				Distance: qdrantclient.Distance_Cosine,
			}),
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("creating collection %q: %w", collectionName, err)
		}
	}

	logger.Info("connected to Qdrant",
		zap.String("target", c.Target),
		zap.String("collection", collectionName),
		zap.Uint("dimensions", c.Dimensions),
	)

	return &Driver{
		client:         client,
		collectionName: collectionName,
		logger:         logger,
	}, nil
}

func splitTarget(target string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		// No port in the target; use the gRPC default.
		return target, DefaultPort, nil //nolint:nilerr
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}

	return host, port, nil
}

// Add stores documents with their embeddings. Existing ids are overwritten
// by Qdrant's upsert semantics.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrantclient.PointStruct, 0, len(docs))
	for _, doc := range docs {
		payload := map[string]any{}
		tags := make([]any, len(doc.Tags))
		for i, t := range doc.Tags {
			tags[i] = t
		}
		payload["tags"] = tags
		for k, v := range doc.Metadata {
			payload[k] = v
		}

		points = append(points, &qdrantclient.PointStruct{
			Id:      qdrantclient.NewID(doc.ID),
			Vectors: qdrantclient.NewVectors(doc.Embedding...),
			Payload: qdrantclient.NewValueMap(payload),
		})
	}

	_, err := d.client.Upsert(ctx, &qdrantclient.UpsertPoints{
		CollectionName: d.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	d.logger.Debug("added documents to qdrant",
		zap.Int("count", len(docs)),
	)

	return nil
}

// Query finds the topK most similar documents, optionally restricted to
// documents carrying at least one of the given tags.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int, tags []string) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	query := &qdrantclient.QueryPoints{
		CollectionName: d.collectionName,
		Query:          qdrantclient.NewQuery(embedding...),
		Limit:          qdrantclient.PtrOf(uint64(topK)),
		WithPayload:    qdrantclient.NewWithPayload(true),
	}

	if len(tags) > 0 {
		query.Filter = &qdrantclient.Filter{
			Must: []*qdrantclient.Condition{
				qdrantclient.NewMatchKeywords("tags", tags...),
			},
		}
	}

	points, err := d.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(points))
	for _, p := range points {
		doc := vector.Document{
			ID:       p.GetId().GetUuid(),
			Metadata: map[string]string{},
		}

		for key, value := range p.GetPayload() {
			if key == "tags" {
				for _, v := range value.GetListValue().GetValues() {
					doc.Tags = append(doc.Tags, v.GetStringValue())
				}
				continue
			}
			doc.Metadata[key] = value.GetStringValue()
		}

		results = append(results, vector.QueryResult{
			Document: doc,
			Score:    p.GetScore(),
		})
	}

	d.logger.Debug("queried qdrant",
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qdrantclient.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrantclient.NewID(id)
	}

	_, err := d.client.Delete(ctx, &qdrantclient.DeletePoints{
		CollectionName: d.collectionName,
		Points:         qdrantclient.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return fmt.Errorf("deleting points: %w", err)
	}

	d.logger.Debug("deleted documents from qdrant",
		zap.Int("count", len(ids)),
	)

	return nil
}

// Close releases the gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

var _ vector.Driver = (*Driver)(nil)
