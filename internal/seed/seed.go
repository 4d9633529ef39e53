// Package seed generates sample user documents for demos and local testing.
// A configurable fraction of the generated documents carries an injected
// defect so that scans have something to find.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/ndmitriev/docsweep/internal/models"
	"github.com/ndmitriev/docsweep/internal/storage"
)

var firstNames = []string{
	"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi",
	"Ivan", "Judy", "Mallory", "Niaj", "Olivia", "Peggy", "Rupert", "Sybil",
}

var roles = []string{"admin", "editor", "viewer"}
var statuses = []string{"active", "inactive", "pending"}
var plans = []string{"free", "pro", "enterprise"}

// Defect identifies one kind of injected inconsistency.
type Defect int

const (
	DefectNone Defect = iota
	DefectMissingEmail
	DefectMissingName
	DefectInvalidRole
	DefectInvalidStatus
	DefectAgeOutOfRange
	DefectAgeNotNumeric
	DefectBadPlan
)

// injectable excludes DefectNone
var injectable = []Defect{
	DefectMissingEmail,
	DefectMissingName,
	DefectInvalidRole,
	DefectInvalidStatus,
	DefectAgeOutOfRange,
	DefectAgeNotNumeric,
	DefectBadPlan,
}

// Generator produces sample user documents.
type Generator struct {
	rng *rand.Rand
}

// New creates a generator seeded from the given source value. The same seed
// produces the same documents.
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate returns count user documents. defectRate of them (rounded down)
// get one injected defect each, cycling through all defect kinds so that
// every kind appears once the batch is large enough.
func (g *Generator) Generate(count int, defectRate float64) []models.Document {
	if count <= 0 {
		return nil
	}
	if defectRate < 0 {
		defectRate = 0
	}
	if defectRate > 1 {
		defectRate = 1
	}

	defective := int(float64(count) * defectRate)
	docs := make([]models.Document, 0, count)

	for i := 0; i < count; i++ {
		doc := g.cleanUser(i)
		if i < defective {
			g.inject(&doc, injectable[i%len(injectable)])
		}
		docs = append(docs, doc)
	}

	// Shuffle so defective documents are not clustered at the front.
	g.rng.Shuffle(len(docs), func(i, j int) {
		docs[i], docs[j] = docs[j], docs[i]
	})

	return docs
}

// Populate generates documents and writes them into the store under the
// given entity type. It returns the number of documents written.
func (g *Generator) Populate(ctx context.Context, store storage.Store, entityType string, count int, defectRate float64) (int, error) {
	docs := g.Generate(count, defectRate)
	for _, doc := range docs {
		if err := store.UpdateDocument(ctx, entityType, doc.ID, doc.Fields); err != nil {
			return 0, fmt.Errorf("failed to write document %s: %w", doc.ID, err)
		}
	}
	return len(docs), nil
}

func (g *Generator) cleanUser(i int) models.Document {
	name := firstNames[g.rng.Intn(len(firstNames))]
	return models.Document{
		ID: uuid.NewString(),
		Fields: models.Fields{
			"name":   name,
			"email":  fmt.Sprintf("%s%d@example.com", strings.ToLower(name), i),
			"role":   roles[g.rng.Intn(len(roles))],
			"status": statuses[g.rng.Intn(len(statuses))],
			"plan":   plans[g.rng.Intn(len(plans))],
			"age":    18 + g.rng.Intn(60),
		},
	}
}

func (g *Generator) inject(doc *models.Document, d Defect) {
	switch d {
	case DefectMissingEmail:
		delete(doc.Fields, "email")
	case DefectMissingName:
		delete(doc.Fields, "name")
	case DefectInvalidRole:
		doc.Fields["role"] = "superuser"
	case DefectInvalidStatus:
		doc.Fields["status"] = "zombie"
	case DefectAgeOutOfRange:
		doc.Fields["age"] = 130 + g.rng.Intn(100)
	case DefectAgeNotNumeric:
		doc.Fields["age"] = "unknown"
	case DefectBadPlan:
		doc.Fields["plan"] = "platinum"
	}
}
