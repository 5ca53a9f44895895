package indices

import (
	"context"
	"errors"
	"fmt"
	"garmentflow/bizerror"
	"garmentflow/client/es"
	"garmentflow/domain"
	"garmentflow/domain/reposition"
	"garmentflow/event"
	"garmentflow/persistence"
	"garmentflow/session"
	"sync"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	RepositionIndexEventHandlerName = "repositionIndexer"

	lock      sync.Mutex
	running   bool
	lastRun   SyncRun
	activeRun SyncRun

	syncRequestLimiter = rate.NewLimiter(rate.Every(time.Minute), 1)

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
	SyncStatusFunc         = SyncStatus
	LoadRepositionsFunc    = LoadRepositions
	LoadDocumentFunc       = LoadDocument
)

const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// SyncRun describes one full sync run.
type SyncRun struct {
	Trigger    string     `json:"trigger"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// SyncStatusReport is the state of the full sync seen by administrators.
type SyncStatusReport struct {
	Running bool     `json:"running"`
	Current *SyncRun `json:"current,omitempty"`
	Last    *SyncRun `json:"last,omitempty"`
}

// SyncStatus reports the running full sync, if any, and the last finished one.
func SyncStatus(s *session.Session) (*SyncStatusReport, error) {
	if !s.InArea(domain.AreaAdmin) {
		return nil, bizerror.ErrForbidden
	}
	lock.Lock()
	defer lock.Unlock()
	report := &SyncStatusReport{Running: running}
	if running {
		current := activeRun
		report.Current = &current
	}
	if lastRun.FinishedAt != nil {
		last := lastRun
		report.Last = &last
	}
	return report, nil
}

// beginRun must be called with lock held.
func beginRun(trigger string) {
	now := time.Now()
	running = true
	activeRun = SyncRun{Trigger: trigger, StartedAt: &now}
}

func finishRun(err error) {
	now := time.Now()
	lock.Lock()
	defer lock.Unlock()
	running = false
	activeRun.FinishedAt = &now
	if err != nil {
		activeRun.Error = err.Error()
	}
	lastRun = activeRun
	activeRun = SyncRun{}
}

func runFullSync() {
	err := IndicesFullSyncFunc()
	if err != nil {
		logrus.Errorf("indices fully sync: %v", err)
	}
	finishRun(err)
}

// ScheduleNewSyncRun starts a full sync in background. It reports false when a run is
// already in progress or the request is rate limited.
func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if !s.InArea(domain.AreaAdmin) {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	if !syncRequestLimiter.Allow() {
		lock.Unlock()
		logrus.Info("indices sync request rate limited")
		return false, nil
	}
	beginRun(TriggerManual)
	lock.Unlock()

	go runFullSync()
	return true, nil
}

var (
	SyncBatchSize = 500
)

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	ctx := context.Background()
	page := 1
	for {
		docs, err := LoadRepositionsFunc(ctx, page, SyncBatchSize)
		if err != nil {
			return fmt.Errorf("retrieve repositions (page = %d, pageSize = %d): %w", page, SyncBatchSize, err)
		}

		if len(docs) == 0 {
			logrus.Infof("indices fully sync: there are no more repositions to index")
			return nil
		}

		if err := IndexRepositions(ctx, docs); err != nil {
			logrus.Warnf("indices fully sync: error on index repositions(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}

// LoadRepositions loads one page of repositions, deleted ones included, ordered by id.
func LoadRepositions(ctx context.Context, page, size int) ([]RepositionDocument, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	var records []domain.Reposition
	if err := db.Order("id ASC").Offset(offset).Limit(size).Find(&records).Error; err != nil {
		return nil, err
	}
	docs := make([]RepositionDocument, 0, len(records))
	for _, r := range records {
		var products []domain.RepositionProduct
		if err := db.Where("reposition_id = ?", r.ID).Order("id ASC").Find(&products).Error; err != nil {
			return nil, err
		}
		docs = append(docs, BuildDocument(r, products))
	}
	return docs, nil
}

// LoadDocument returns nil when the reposition no longer exists.
func LoadDocument(ctx context.Context, r *event.EventRecord) (*RepositionDocument, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	found, err := reposition.FindReposition(db, r.SourceId)
	if err != nil {
		if errors.Is(err, bizerror.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var products []domain.RepositionProduct
	if err := db.Where("reposition_id = ?", found.ID).Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	doc := BuildDocument(*found, products)
	return &doc, nil
}

// IndexRepositionEventHandle keeps the index in step with committed changes. Deletion is a
// status, so deleted repositions stay indexed with status eliminado.
func IndexRepositionEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != event.SourceTypeReposition || !es.Enabled() {
		return nil
	}

	ctx := context.Background()
	doc, err := LoadDocumentFunc(ctx, e)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("load reposition %d for index, %v", e.SourceId, err),
			HandlerIdentifier: RepositionIndexEventHandlerName,
		}
	}
	if doc == nil {
		if err := es.DeleteDocumentByIdFunc(ctx, RepositionIndexName, e.SourceId); err != nil {
			return &event.EventHandleResult{
				Message:           fmt.Sprintf("delete reposition index %d, %v", e.SourceId, err),
				HandlerIdentifier: RepositionIndexEventHandlerName,
			}
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: RepositionIndexEventHandlerName}
	}
	if err := IndexRepositions(ctx, []RepositionDocument{*doc}); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index reposition %d, %v", e.SourceId, err),
			HandlerIdentifier: RepositionIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: RepositionIndexEventHandlerName}
}
