package notification

import (
	"garmentflow/account"
	"garmentflow/bizerror"
	"garmentflow/domain"
	"garmentflow/event"
	"garmentflow/idgen"
	"garmentflow/persistence"
	"garmentflow/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

const (
	TypeNewReposition            = "new_reposition"
	TypeRepositionApproved       = "reposition_approved"
	TypeRepositionRejected       = "reposition_rejected"
	TypeRepositionTransfer       = "reposition_transfer"
	TypeTransferProcessed        = "transfer_processed"
	TypeRepositionReceived       = "reposition_received"
	TypeRepositionCompleted      = "reposition_completed"
	TypeCompletionApprovalNeeded = "completion_approval_needed"
	TypeRepositionDeleted        = "reposition_deleted"
	TypeRepositionPaused         = "reposition_paused"
	TypeRepositionResumed        = "reposition_resumed"
)

var (
	notificationIdWorker = idgen.NewWorker()

	QueryNotificationsFunc = QueryNotifications
	MarkReadFunc           = MarkRead
)

type Template struct {
	Type    string
	Title   string
	Message string
}

// Notify persists one notification per recipient within tx and attaches them to ev, so they
// are delivered once the unit of work commits.
func Notify(tx *gorm.DB, ev *event.EventRecord, repositionID types.ID, recipients []types.ID, tpl Template) error {
	now := time.Now()
	for _, uid := range recipients {
		n := domain.Notification{
			ID:           idgen.NextID(notificationIdWorker),
			UserID:       uid,
			Type:         tpl.Type,
			Title:        tpl.Title,
			Message:      tpl.Message,
			RepositionID: repositionID,
			CreatedAt:    now,
		}
		if err := tx.Create(&n).Error; err != nil {
			return err
		}
		if ev != nil {
			ev.Notifications = append(ev.Notifications, n)
		}
	}
	return nil
}

// NotifyAreas notifies every user of the areas except the excluded one (0 excludes nobody).
func NotifyAreas(tx *gorm.DB, ev *event.EventRecord, repositionID types.ID, excluding types.ID, tpl Template, areas ...domain.Area) error {
	recipients, err := account.QueryUserIDsByAreasFunc(tx, excluding, areas...)
	if err != nil {
		return err
	}
	return Notify(tx, ev, repositionID, recipients, tpl)
}

func QueryNotifications(unreadOnly bool, s *session.Session) ([]domain.Notification, error) {
	r := []domain.Notification{}
	q := persistence.ActiveDataSourceManager.GormDB(s.Context).Where("user_id = ?", s.Identity.ID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if err := q.Order("created_at DESC").Order("id DESC").Limit(200).Find(&r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

func MarkRead(id types.ID, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", id, s.Identity.ID).Update("is_read", true)
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected == 0 {
		return bizerror.ErrNotFound
	}
	return nil
}
