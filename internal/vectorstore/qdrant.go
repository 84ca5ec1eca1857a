// Package vectorstore keeps resume segment vectors in Qdrant so that similarity
// queries run server-side.
package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

const (
	defaultCollection = "resume_segments"
	defaultGRPCPort   = 6334

	payloadDocID    = "doc_id"
	payloadPosition = "position"
	payloadText     = "text"
)

// Config locates the Qdrant instance.
type Config struct {
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api-key" json:"-"`
	Collection string `mapstructure:"collection"`
}

// Store owns the Qdrant connection. It hands out one Index per resume.
type Store struct {
	client     *qdrant.Client
	collection string
	logger     *zap.Logger

	mu      sync.Mutex
	ensured bool
}

func New(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	qcfg, err := clientConfig(cfg)
	if err != nil {
		return nil, err
	}
	client, err := qdrant.NewClient(qcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = defaultCollection
	}
	return &Store{client: client, collection: collection, logger: logger}, nil
}

// clientConfig turns an http(s) URL into gRPC connection settings. The gRPC port
// defaults to 6334.
func clientConfig(cfg Config) (*qdrant.Config, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant url: %w", err)
	}
	if parsed.Hostname() == "" {
		return nil, fmt.Errorf("invalid qdrant url %q: missing host", cfg.URL)
	}

	port := defaultGRPCPort
	if p := parsed.Port(); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid qdrant port %q: %w", p, err)
		}
		port = v
	}
	return &qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: parsed.Scheme == "https",
	}, nil
}

// Index returns a fresh per-resume index backed by the store.
func (s *Store) Index() *Index {
	return &Index{store: s, docID: uuid.NewString()}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) ensureCollection(ctx context.Context, size uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured {
		return nil
	}

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     size,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		s.logger.Info("qdrant collection created",
			zap.String("collection", s.collection),
			zap.Uint64("vector_size", size),
		)
	}
	s.ensured = true
	return nil
}

// Index stores the segments of one resume under a random document id.
type Index struct {
	store *Store
	docID string
	count int
}

func (i *Index) Load(ctx context.Context, segments []string, vecs [][]float32) error {
	points := buildPoints(i.docID, segments, vecs)
	i.count = len(segments)
	if len(points) == 0 {
		return nil
	}

	size := uint64(len(vecs[pointPosition(points[0])]))
	if err := i.store.ensureCollection(ctx, size); err != nil {
		return err
	}

	wait := true
	_, err := i.store.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: i.store.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert segments: %w", err)
	}
	return nil
}

func (i *Index) Similarities(ctx context.Context, query []float32) ([]float64, error) {
	if i.count == 0 {
		return nil, nil
	}
	hits, err := i.store.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: i.store.collection,
		Query:          qdrant.NewQuery(query...),
		Filter:         i.filter(),
		Limit:          qdrant.PtrOf(uint64(i.count)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	return scatter(hits, i.count), nil
}

// Close removes the resume's points.
func (i *Index) Close(ctx context.Context) error {
	if i.count == 0 {
		return nil
	}
	_, err := i.store.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: i.store.collection,
		Points:         qdrant.NewPointsSelectorFilter(i.filter()),
	})
	if err != nil {
		return fmt.Errorf("failed to delete segments: %w", err)
	}
	return nil
}

func (i *Index) filter() *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch(payloadDocID, i.docID),
		},
	}
}

// buildPoints skips segments without a vector.
func buildPoints(docID string, segments []string, vecs [][]float32) []*qdrant.PointStruct {
	var points []*qdrant.PointStruct
	for pos, seg := range segments {
		if pos >= len(vecs) || len(vecs[pos]) == 0 {
			continue
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.NewString()),
			Vectors: qdrant.NewVectors(vecs[pos]...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadDocID:    docID,
				payloadPosition: pos,
				payloadText:     seg,
			}),
		})
	}
	return points
}

func pointPosition(p *qdrant.PointStruct) int {
	return int(p.GetPayload()[payloadPosition].GetIntegerValue())
}

// scatter places hit scores at their segment positions. Segments that were not
// returned keep similarity 0.
func scatter(hits []*qdrant.ScoredPoint, count int) []float64 {
	sims := make([]float64, count)
	for _, hit := range hits {
		v, ok := hit.GetPayload()[payloadPosition]
		if !ok {
			continue
		}
		pos := int(v.GetIntegerValue())
		if pos < 0 || pos >= count {
			continue
		}
		sims[pos] = float64(hit.GetScore())
	}
	return sims
}
