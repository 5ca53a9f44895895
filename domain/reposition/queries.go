package reposition

import (
	"garmentflow/bizerror"
	"garmentflow/domain"
	"garmentflow/persistence"
	"garmentflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	DetailRepositionFunc    = DetailReposition
	QueryRepositionsFunc    = QueryRepositions
	QueryAllRepositionsFunc = QueryAllRepositions
	CountPendingFunc        = CountPending
	ListPiecesFunc          = ListPieces
	ListProductsFunc        = ListProducts
	ListHistoryFunc         = ListHistory
	ListDocumentsFunc       = ListDocuments
)

var closedStatuses = []domain.RepositionStatus{domain.StatusEliminado, domain.StatusCompletado}

type RepositionDetail struct {
	domain.Reposition
	Pieces        []domain.RepositionPiece         `json:"pieces"`
	Productos     []domain.RepositionProduct       `json:"productos"`
	TelaContraste *domain.RepositionContrastFabric `json:"telaContraste"`
}

func DetailReposition(id types.ID, s *session.Session) (*RepositionDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	rep, err := findReposition(db, id)
	if err != nil {
		return nil, err
	}
	detail := RepositionDetail{Reposition: *rep, Pieces: []domain.RepositionPiece{}, Productos: []domain.RepositionProduct{}}
	if err := db.Where("reposition_id = ?", id).Order("id ASC").Find(&detail.Pieces).Error; err != nil {
		return nil, err
	}
	if err := db.Where("reposition_id = ?", id).Order("id ASC").Find(&detail.Productos).Error; err != nil {
		return nil, err
	}
	fabric := domain.RepositionContrastFabric{}
	if err := db.Where("reposition_id = ?", id).First(&fabric).Error; err == nil {
		detail.TelaContraste = &fabric
	} else if !gorm.IsRecordNotFoundError(err) {
		return nil, err
	}
	return &detail, nil
}

// QueryRepositions lists repositions visible to the session user, newest first:
// admin and envios see every reposition but the deleted ones, diseño sees the approved ones,
// any other area sees the open repositions it holds or its user created. A non empty area
// narrows the listing to repositions currently held by that area.
func QueryRepositions(area domain.Area, s *session.Session) ([]domain.Reposition, error) {
	q := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&domain.Reposition{})
	switch {
	case s.InArea(domain.AreaAdmin, domain.AreaEnvios):
		q = q.Where("status <> ?", domain.StatusEliminado)
	case s.InArea(domain.AreaDiseno):
		q = q.Where("status = ?", domain.StatusAprobado)
	default:
		q = q.Where("status NOT IN (?)", closedStatuses).
			Where("current_area = ? OR created_by = ?", s.Identity.Area, s.Identity.ID)
	}
	if area != "" {
		if !area.Valid() {
			return nil, bizerror.BadParam("unknown area '" + string(area) + "'")
		}
		q = q.Where("current_area = ?", area)
	}

	r := []domain.Reposition{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// QueryAllRepositions is the unrestricted listing of admin and envios.
func QueryAllRepositions(includeDeleted bool, s *session.Session) ([]domain.Reposition, error) {
	if !s.InArea(domain.AreaAdmin, domain.AreaEnvios) {
		return nil, bizerror.ErrForbidden
	}
	q := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&domain.Reposition{})
	if !includeDeleted {
		q = q.Where("status <> ?", domain.StatusEliminado)
	}
	r := []domain.Reposition{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// CountPending counts the repositions waiting for a decision.
func CountPending(s *session.Session) (int, error) {
	if !s.InArea(domain.AreaAdmin, domain.AreaEnvios, domain.AreaOperaciones) {
		return 0, bizerror.ErrForbidden
	}
	count := 0
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&domain.Reposition{}).
		Where("status = ?", domain.StatusPendiente).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func ListPieces(id types.ID, s *session.Session) ([]domain.RepositionPiece, error) {
	r := []domain.RepositionPiece{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Where("reposition_id = ?", id).
		Order("id ASC").Find(&r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

func ListProducts(id types.ID, s *session.Session) ([]domain.RepositionProduct, error) {
	r := []domain.RepositionProduct{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Where("reposition_id = ?", id).
		Order("id ASC").Find(&r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// ListHistory returns the history of the reposition in insertion order.
func ListHistory(id types.ID, s *session.Session) ([]domain.RepositionHistory, error) {
	return LoadHistory(persistence.ActiveDataSourceManager.GormDB(s.Context), id)
}

func LoadHistory(db *gorm.DB, id types.ID) ([]domain.RepositionHistory, error) {
	r := []domain.RepositionHistory{}
	if err := db.Where("reposition_id = ?", id).Order("created_at ASC").Order("id ASC").Find(&r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

func ListDocuments(id types.ID, s *session.Session) ([]domain.RepositionDocument, error) {
	r := []domain.RepositionDocument{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Where("reposition_id = ?", id).
		Order("created_at ASC").Order("id ASC").Find(&r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// FindReposition loads the reposition, bizerror.ErrNotFound when it does not exist.
func FindReposition(db *gorm.DB, id types.ID) (*domain.Reposition, error) {
	return findReposition(db, id)
}
