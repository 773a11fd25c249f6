package vectorindex

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TableEmbedding is one row of the pgvector-backed index. Namespace lets
// several catalogs share the table.
type TableEmbedding struct {
	Namespace string          `gorm:"primaryKey;type:varchar(128)"`
	Name      string          `gorm:"primaryKey;type:text"`
	Seq       int             `gorm:"not null"`
	Embedding pgvector.Vector `gorm:"type:vector(768)"`
}

func (TableEmbedding) TableName() string {
	return "schema_table_embeddings"
}

// PGVector keeps vectors in PostgreSQL and orders by cosine distance.
type PGVector struct {
	db        *gorm.DB
	namespace string
	seq       int
}

// NewPGVector clears any rows previously written under namespace so the
// index mirrors the catalog it is rebuilt from.
func NewPGVector(ctx context.Context, db *gorm.DB, namespace string) (*PGVector, error) {
	err := db.WithContext(ctx).Where("namespace = ?", namespace).Delete(&TableEmbedding{}).Error
	if err != nil {
		return nil, fmt.Errorf("reset %s index: %w", namespace, err)
	}
	return &PGVector{db: db, namespace: namespace}, nil
}

func (p *PGVector) Add(ctx context.Context, key string, vector []float32) error {
	row := TableEmbedding{
		Namespace: p.namespace,
		Name:      key,
		Seq:       p.seq,
		Embedding: pgvector.NewVector(vector),
	}
	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"embedding"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("store embedding for %s: %w", key, err)
	}
	p.seq++
	return nil
}

type scoredRow struct {
	Name  string
	Score float64
}

func (p *PGVector) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, nil
	}
	vec := pgvector.NewVector(query)

	var rows []scoredRow
	err := p.db.WithContext(ctx).
		Model(&TableEmbedding{}).
		Select("name, 1 - (embedding <=> ?) AS score", vec).
		Where("namespace = ?", p.namespace).
		Order(gorm.Expr("embedding <=> ?, seq", vec)).
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	hits := make([]Hit, len(rows))
	for i, r := range rows {
		hits[i] = Hit{Key: r.Name, Score: r.Score}
	}
	return hits, nil
}

func (p *PGVector) Len() int {
	return p.seq
}
