package index

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	milvusindex "github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/saathi-ai/saathi/internal/core"
	"github.com/saathi-ai/saathi/internal/logger"
)

// Field names for the Milvus collection
const (
	fieldID     = "id"
	fieldSource = "source"
	fieldStart  = "start"
	fieldEnd    = "end"
	fieldText   = "text"
	fieldVector = "vector"
)

// DefaultCollection is the collection documents are ingested into.
const DefaultCollection = "saathi_chunks"

// MilvusStore is a core.VectorStore backed by a Milvus server. Durability is
// the server's concern, so Persist/Load have no file-snapshot equivalent here;
// the collection itself is the durable form of the index.
type MilvusStore struct {
	client     *milvusclient.Client
	collection string
	dim        int
}

// NewMilvusStore connects to Milvus and ensures the chunk collection exists
// with the given embedding dimension.
func NewMilvusStore(ctx context.Context, addr, collection string, dim int) (*MilvusStore, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	logger.Info("Connecting to Milvus at %s (collection %s, dim %d)", addr, collection, dim)

	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{Address: addr})
	if err != nil {
		return nil, fmt.Errorf("connect to milvus: %w", err)
	}

	s := &MilvusStore{client: c, collection: collection, dim: dim}
	if err := s.ensureCollection(ctx); err != nil {
		c.Close(ctx)
		return nil, err
	}
	return s, nil
}

// ensureCollection creates the chunk collection and its vector index if they
// do not exist yet.
func (s *MilvusStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.collection))
	if err != nil {
		return fmt.Errorf("check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	schema := entity.NewSchema().
		WithName(s.collection).
		WithDescription("Document chunks for retrieval-augmented answering")

	schema.WithField(entity.NewField().
		WithName(fieldID).
		WithDataType(entity.FieldTypeVarChar).
		WithMaxLength(256).
		WithIsPrimaryKey(true))
	schema.WithField(entity.NewField().
		WithName(fieldSource).
		WithDataType(entity.FieldTypeVarChar).
		WithMaxLength(512))
	schema.WithField(entity.NewField().
		WithName(fieldStart).
		WithDataType(entity.FieldTypeInt64))
	schema.WithField(entity.NewField().
		WithName(fieldEnd).
		WithDataType(entity.FieldTypeInt64))
	schema.WithField(entity.NewField().
		WithName(fieldText).
		WithDataType(entity.FieldTypeVarChar).
		WithMaxLength(65535))
	schema.WithField(entity.NewField().
		WithName(fieldVector).
		WithDataType(entity.FieldTypeFloatVector).
		WithDim(int64(s.dim)))

	if err := s.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(s.collection, schema)); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	idx := milvusindex.NewHNSWIndex(entity.COSINE, 16, 200)
	createTask, err := s.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(s.collection, fieldVector, idx))
	if err != nil {
		return fmt.Errorf("create vector index: %w", err)
	}
	if err := createTask.Await(ctx); err != nil {
		return fmt.Errorf("wait for vector index: %w", err)
	}

	loadTask, err := s.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(s.collection))
	if err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return fmt.Errorf("wait for collection load: %w", err)
	}

	logger.Info("Created and loaded Milvus collection %s", s.collection)
	return nil
}

// Add inserts one chunk with its embedding.
func (s *MilvusStore) Add(ctx context.Context, chunk core.Chunk, vector []float32) error {
	if len(vector) != s.dim {
		return fmt.Errorf("chunk %s: %w: got %d, collection has %d", chunk.ID, core.ErrDimensionMismatch, len(vector), s.dim)
	}

	columns := []column.Column{
		column.NewColumnVarChar(fieldID, []string{chunk.ID}),
		column.NewColumnVarChar(fieldSource, []string{chunk.Source}),
		column.NewColumnInt64(fieldStart, []int64{int64(chunk.Start)}),
		column.NewColumnInt64(fieldEnd, []int64{int64(chunk.End)}),
		column.NewColumnVarChar(fieldText, []string{chunk.Text}),
		column.NewColumnFloatVector(fieldVector, s.dim, [][]float32{vector}),
	}

	if _, err := s.client.Insert(ctx, milvusclient.NewColumnBasedInsertOption(s.collection, columns...)); err != nil {
		return fmt.Errorf("insert chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// Search returns the k nearest chunks by cosine similarity.
func (s *MilvusStore) Search(ctx context.Context, vector []float32, k int) ([]core.SearchResult, error) {
	if k <= 0 {
		return []core.SearchResult{}, nil
	}

	vectors := []entity.Vector{entity.FloatVector(vector)}
	results, err := s.client.Search(ctx, milvusclient.NewSearchOption(s.collection, k, vectors).
		WithANNSField(fieldVector).
		WithOutputFields(fieldID, fieldSource, fieldStart, fieldEnd, fieldText))
	if err != nil {
		return nil, fmt.Errorf("milvus search: %w", err)
	}

	if len(results) == 0 || results[0].ResultCount == 0 {
		return []core.SearchResult{}, nil
	}

	res := results[0]
	out := make([]core.SearchResult, 0, res.ResultCount)
	for i := 0; i < res.ResultCount; i++ {
		var c core.Chunk
		if ids, ok := res.IDs.(*column.ColumnVarChar); ok {
			c.ID = ids.Data()[i]
		}
		for _, field := range res.Fields {
			switch col := field.(type) {
			case *column.ColumnVarChar:
				switch col.Name() {
				case fieldSource:
					c.Source = col.Data()[i]
				case fieldText:
					c.Text = col.Data()[i]
				}
			case *column.ColumnInt64:
				switch col.Name() {
				case fieldStart:
					c.Start = int(col.Data()[i])
				case fieldEnd:
					c.End = int(col.Data()[i])
				}
			}
		}

		out = append(out, core.SearchResult{Chunk: c, Score: res.Scores[i]})
	}
	return out, nil
}

// Flush makes inserted chunks durable and visible to searches. Ingestion calls
// it once at the end of a batch.
func (s *MilvusStore) Flush(ctx context.Context) error {
	task, err := s.client.Flush(ctx, milvusclient.NewFlushOption(s.collection))
	if err != nil {
		return fmt.Errorf("flush collection: %w", err)
	}
	if err := task.Await(ctx); err != nil {
		return fmt.Errorf("wait for flush: %w", err)
	}
	return nil
}

// Close closes the connection to Milvus.
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

var _ core.VectorStore = (*MilvusStore)(nil)
