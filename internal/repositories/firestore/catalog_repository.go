package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"

	domain "github.com/standee-works/customizer/internal/domain"
	pfirestore "github.com/standee-works/customizer/internal/platform/firestore"
	"github.com/standee-works/customizer/internal/repositories"
)

type catalogDocument struct {
	Name         string                 `firestore:"name"`
	Category     string                 `firestore:"category"`
	SlotCount    int                    `firestore:"slotCount"`
	LogoRequired bool                   `firestore:"logoRequired"`
	Children     []catalogChildDocument `firestore:"children"`
}

type catalogChildDocument struct {
	Name      string `firestore:"name"`
	SlotCount int    `firestore:"slotCount"`
}

// CatalogRepository reads product templates from Firestore.
type CatalogRepository struct {
	base *pfirestore.BaseRepository[catalogDocument]
}

var _ repositories.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository constructs a Firestore-backed catalog repository.
func NewCatalogRepository(provider *pfirestore.Provider, collection string) (*CatalogRepository, error) {
	if provider == nil {
		return nil, errors.New("catalog repository requires firestore provider")
	}
	if strings.TrimSpace(collection) == "" {
		return nil, errors.New("catalog repository requires a collection name")
	}
	return &CatalogRepository{
		base: pfirestore.NewBaseRepository[catalogDocument](provider, collection, nil, nil),
	}, nil
}

// ListEntries returns the whole catalog ordered by product name.
func (r *CatalogRepository) ListEntries(ctx context.Context) ([]domain.ProductTemplate, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("name", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}

	templates := make([]domain.ProductTemplate, 0, len(docs))
	for _, doc := range docs {
		templates = append(templates, toProductTemplate(doc.Data))
	}
	return templates, nil
}

func toProductTemplate(doc catalogDocument) domain.ProductTemplate {
	template := domain.ProductTemplate{
		Name:         doc.Name,
		Category:     doc.Category,
		SlotCount:    doc.SlotCount,
		LogoRequired: doc.LogoRequired,
	}
	if len(doc.Children) == 0 {
		return template
	}

	// Bundle children inherit the parent's logo rule and customize
	// independently with their own slot counts.
	template.SlotCount = 0
	template.Children = make([]domain.ProductTemplate, 0, len(doc.Children))
	for _, child := range doc.Children {
		template.Children = append(template.Children, domain.ProductTemplate{
			Name:         child.Name,
			Category:     "Bundle",
			SlotCount:    child.SlotCount,
			LogoRequired: doc.LogoRequired,
			ParentBundle: doc.Name,
		})
	}
	return template
}
