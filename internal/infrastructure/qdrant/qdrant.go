package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/taskrouter/taskrouter-api/internal/domain"
	"github.com/taskrouter/taskrouter-api/internal/domain/repository"
)

const maxMessageSize = 16 << 20

// qdrantAPI is the subset of the Qdrant client the index uses.
type qdrantAPI interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *pb.CreateCollection) error
	Upsert(ctx context.Context, request *pb.UpsertPoints) (*pb.UpdateResult, error)
	Query(ctx context.Context, request *pb.QueryPoints) ([]*pb.ScoredPoint, error)
	Close() error
}

// Index stores envelope embeddings in a Qdrant collection.
type Index struct {
	client     qdrantAPI
	collection string
	dimension  int
	log        *zap.SugaredLogger
}

var _ repository.EnvelopeIndex = (*Index)(nil)

// NewIndex connects to Qdrant and ensures the collection exists with the given vector size.
func NewIndex(ctx context.Context, host string, port int, collection string, dimension int, log *zap.SugaredLogger) (*Index, error) {
	client, err := pb.NewClient(&pb.Config{
		Host: host,
		Port: port,
		GrpcOptions: []grpc.DialOption{
			grpc.WithKeepaliveParams(keepalive.ClientParameters{
				Time:                30 * time.Second,
				Timeout:             10 * time.Second,
				PermitWithoutStream: true,
			}),
			grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxMessageSize)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
	}

	idx := newIndex(client, collection, dimension, log)
	if err := idx.ensureCollection(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ensure collection %q: %w", collection, err)
	}
	idx.log.Infow("Connected", "host", host, "port", port, "collection", collection)
	return idx, nil
}

func newIndex(client qdrantAPI, collection string, dimension int, log *zap.SugaredLogger) *Index {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Index{client: client, collection: collection, dimension: dimension, log: log.Named("qdrant")}
}

func (i *Index) ensureCollection(ctx context.Context) error {
	exists, err := i.client.CollectionExists(ctx, i.collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = i.client.CreateCollection(ctx, &pb.CreateCollection{
		CollectionName: i.collection,
		VectorsConfig: pb.NewVectorsConfig(&pb.VectorParams{
			Size:     uint64(i.dimension),
			Distance: pb.Distance_Cosine,
		}),
	})
	if err != nil {
		return err
	}
	i.log.Infow("Created collection", "collection", i.collection, "dimension", i.dimension)
	return nil
}

// PointID maps a cache key to a stable point id, so re-indexing a key overwrites it.
func PointID(cacheKey string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(cacheKey)).String()
}

func (i *Index) Upsert(ctx context.Context, rec repository.IndexRecord) error {
	if len(rec.Vector) != i.dimension {
		return fmt.Errorf("vector has %d dimensions, collection %q expects %d", len(rec.Vector), i.collection, i.dimension)
	}

	_, err := i.client.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: i.collection,
		Points: []*pb.PointStruct{{
			Id:      pb.NewIDUUID(PointID(rec.CacheKey)),
			Vectors: pb.NewVectors(rec.Vector...),
			Payload: pb.NewValueMap(map[string]any{
				"provider":  rec.Provider.String(),
				"kind":      rec.Kind,
				"name":      rec.Name,
				"cache_key": rec.CacheKey,
			}),
		}},
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (i *Index) Similar(ctx context.Context, provider domain.Provider, vector []float32, limit int) ([]repository.IndexMatch, error) {
	if limit <= 0 {
		limit = 5
	}

	points, err := i.client.Query(ctx, &pb.QueryPoints{
		CollectionName: i.collection,
		Query:          pb.NewQuery(vector...),
		Filter: &pb.Filter{
			Must: []*pb.Condition{
				pb.NewMatch("provider", provider.String()),
			},
		},
		Limit:       pb.PtrOf(uint64(limit)),
		WithPayload: pb.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	matches := make([]repository.IndexMatch, 0, len(points))
	for _, p := range points {
		payload := p.GetPayload()
		matches = append(matches, repository.IndexMatch{
			CacheKey: payload["cache_key"].GetStringValue(),
			Kind:     payload["kind"].GetStringValue(),
			Name:     payload["name"].GetStringValue(),
			Score:    p.GetScore(),
		})
	}
	return matches, nil
}

func (i *Index) Close() error {
	return i.client.Close()
}
