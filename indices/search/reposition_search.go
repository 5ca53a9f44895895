package search

import (
	"encoding/json"
	"garmentflow/client/es"
	"garmentflow/domain"
	"garmentflow/domain/reposition"
	"garmentflow/indices"
	"garmentflow/session"
	"strings"
)

var (
	SearchRepositionsFunc = SearchRepositions
)

var closedStatuses = []domain.RepositionStatus{domain.StatusCompletado, domain.StatusEliminado}

// SearchRepositions matches the text against folio, requester, models, fabric and description
// within the repositions visible to the session user. Without a cluster the visible listing
// is filtered in memory.
func SearchRepositions(text string, s *session.Session) ([]domain.Reposition, error) {
	text = strings.TrimSpace(text)
	if !es.Enabled() {
		return searchListing(text, s)
	}

	filters := visibilityFilters(s)
	if text != "" {
		filters = append(filters, es.H{"multi_match": es.H{
			"query":    text,
			"fields":   []string{"folio", "solicitanteNombre", "modelos", "tela", "color", "descripcionSuceso", "noSolicitud"},
			"operator": "AND",
		}})
	}
	root := es.H{"bool": es.H{"filter": filters}}
	sorts := []es.H{{"createdAt": es.H{"order": "desc"}}}

	r, err := es.SearchFunc(s.Context, indices.RepositionIndexName, es.H{"size": 10000, "query": root, "sort": sorts})
	if err != nil {
		return nil, err
	}
	result := make([]domain.Reposition, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		doc := indices.RepositionDocument{}
		if err := json.Unmarshal([]byte(hit.Source), &doc); err != nil {
			return nil, err
		}
		result = append(result, doc.Reposition)
	}
	return result, nil
}

func visibilityFilters(s *session.Session) []es.H {
	filters := make([]es.H, 0, 4)
	switch {
	case s.InArea(domain.AreaAdmin, domain.AreaEnvios):
		filters = append(filters, es.H{"bool": es.H{"must_not": es.H{"term": es.H{"status": domain.StatusEliminado}}}})
	case s.InArea(domain.AreaDiseno):
		filters = append(filters, es.H{"term": es.H{"status": domain.StatusAprobado}})
	default:
		filters = append(filters, es.H{"bool": es.H{"must_not": es.H{"terms": es.H{"status": closedStatuses}}}})
		filters = append(filters, es.H{"bool": es.H{
			"should": []es.H{
				{"term": es.H{"currentArea": s.Identity.Area}},
				{"term": es.H{"createdBy": s.Identity.ID.String()}},
			},
			"minimum_should_match": 1,
		}})
	}
	return filters
}

func searchListing(text string, s *session.Session) ([]domain.Reposition, error) {
	visible, err := reposition.QueryRepositionsFunc("", s)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return visible, nil
	}
	needle := strings.ToLower(text)
	result := []domain.Reposition{}
	for _, r := range visible {
		for _, field := range []string{r.Folio, r.SolicitanteNombre, r.ModeloPrenda, r.Tela, r.Color, r.DescripcionSuceso, r.NoSolicitud} {
			if strings.Contains(strings.ToLower(field), needle) {
				result = append(result, r)
				break
			}
		}
	}
	return result, nil
}
