package indices

import (
	"context"
	"fmt"
	"garmentflow/client/es"
	"garmentflow/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	RepositionIndexName = "repositions"
)

// RepositionDocument is the indexed form of a reposition, enriched with the models it carries.
type RepositionDocument struct {
	domain.Reposition
	Modelos []string `json:"modelos"`
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func BuildDocument(r domain.Reposition, products []domain.RepositionProduct) RepositionDocument {
	doc := RepositionDocument{Reposition: r, Modelos: []string{}}
	if r.ModeloPrenda != "" {
		doc.Modelos = append(doc.Modelos, r.ModeloPrenda)
	}
	for _, p := range products {
		doc.Modelos = append(doc.Modelos, p.ModeloPrenda)
	}
	return doc
}

func IndexRepositions(ctx context.Context, docs []RepositionDocument) error {
	if err := saveRepositionDocuments(ctx, docs); err != nil {
		return err
	}
	return nil
}

func saveRepositionDocuments(ctx context.Context, docs []RepositionDocument) BatchActionError {
	errs := BatchActionError{}

	for i := range docs {
		doc := &docs[i]
		if err := es.IndexFunc(ctx, RepositionIndexName, doc.ID, doc); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index reposition %d %s %s", doc.ID, doc.Folio, err)
		} else {
			logrus.Debugf("index reposition %d %s successfully", doc.ID, doc.Folio)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
