package timer

import (
	"errors"
	"fmt"
	"garmentflow/bizerror"
	"garmentflow/domain"
	"garmentflow/domain/reposition"
	"garmentflow/event"
	"garmentflow/idgen"
	"garmentflow/persistence"
	"garmentflow/session"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const minutesOfDay = 24 * 60

var (
	timerIdWorker = idgen.NewWorker()

	clockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	errTimerRunning = bizerror.Conflict("a timer is already running for this reposition in this area")

	StartTimerFunc    = StartTimer
	StopTimerFunc     = StopTimer
	SetManualTimeFunc = SetManualTime
	GetTimerFunc      = GetTimer
	ListTimersFunc    = ListTimers
)

type ManualTime struct {
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	Date      string `json:"date" binding:"required"`
}

type StopResult struct {
	ElapsedTime string `json:"elapsedTime"`
}

// FormatElapsed renders minutes as HH:MM:00.
func FormatElapsed(minutes int) string {
	return fmt.Sprintf("%02d:%02d:00", minutes/60, minutes%60)
}

// SpanMinutes returns the minutes between two HH:MM clock readings of one shift. A span
// ending before it starts is taken to cross midnight.
func SpanMinutes(start, end string) (int, error) {
	s, err := clockMinutes(start)
	if err != nil {
		return 0, err
	}
	e, err := clockMinutes(end)
	if err != nil {
		return 0, err
	}
	elapsed := e - s
	if elapsed < 0 {
		elapsed += minutesOfDay
	}
	return elapsed, nil
}

func clockMinutes(v string) (int, error) {
	if !clockPattern.MatchString(v) {
		return 0, bizerror.BadParam("invalid time '" + v + "', use HH:MM")
	}
	parts := strings.SplitN(v, ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m, nil
}

// StartTimer starts the live timer of the area on the reposition. A second running timer for
// the same pair is refused by the pre-check, or by the uk_timer_running index under a race.
func StartTimer(id types.ID, area domain.Area, s *session.Session) (*domain.RepositionTimer, error) {
	if !area.Valid() {
		return nil, bizerror.BadParam("unknown area '" + string(area) + "'")
	}
	var t *domain.RepositionTimer
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if _, err := reposition.FindReposition(tx, id); err != nil {
			return err
		}
		running := 0
		if err := tx.Model(&domain.RepositionTimer{}).Where("reposition_id = ? AND area = ? AND is_running = ?", id, area, true).
			Count(&running).Error; err != nil {
			return err
		}
		if running > 0 {
			return errTimerRunning
		}

		now := time.Now()
		slot := domain.RunningSlotValue
		timer := domain.RepositionTimer{
			ID:           idgen.NextID(timerIdWorker),
			RepositionID: id,
			Area:         area,
			UserID:       s.Identity.ID,
			StartTime:    &now,
			IsRunning:    true,
			RunningSlot:  &slot,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(&timer).Error; err != nil {
			if persistence.IsUniqueViolation(err) {
				return errTimerRunning
			}
			return err
		}
		t = &timer
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	logrus.WithFields(logrus.Fields{"repositionId": id, "area": area, "timerId": t.ID}).Info("timer started")
	return t, nil
}

// StopTimer stops the most recently started running timer of the area. Timers of other areas
// are never touched.
func StopTimer(id types.ID, area domain.Area, s *session.Session) (*StopResult, error) {
	var result *StopResult
	var ev *event.EventRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		rep, err := reposition.FindReposition(tx, id)
		if err != nil {
			return err
		}
		timer := domain.RepositionTimer{}
		err = tx.Where("reposition_id = ? AND area = ? AND is_running = ?", id, area, true).
			Order("start_time DESC").First(&timer).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.InvalidState("no running timer for this reposition in area " + string(area))
		}
		if err != nil {
			return err
		}

		now := time.Now()
		elapsed := 0
		if timer.StartTime != nil {
			elapsed = int(now.Sub(*timer.StartTime) / time.Minute)
		}
		db := tx.Model(&domain.RepositionTimer{}).Where("id = ? AND is_running = ?", timer.ID, true).
			Updates(map[string]interface{}{"end_time": now, "elapsed_minutes": elapsed, "is_running": false,
				"running_slot": nil, "updated_at": now})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}

		formatted := FormatElapsed(elapsed)
		h := domain.RepositionHistory{
			ID:           idgen.NextID(timerIdWorker),
			RepositionID: id,
			Action:       domain.ActionTimerStopped,
			Description: fmt.Sprintf("Cronómetro detenido por %s en área %s. Tiempo transcurrido: %s",
				s.Identity.DisplayName(), area, formatted),
			UserID:    s.Identity.ID,
			UserName:  s.Identity.DisplayName(),
			CreatedAt: now,
		}
		if err := tx.Create(&h).Error; err != nil {
			return err
		}
		ev = event.NewRepositionEvent(rep, event.EventCategoryPropertyUpdated, domain.ActionTimerStopped, &s.Identity, now)
		result = &StopResult{ElapsedTime: formatted}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	logrus.WithFields(logrus.Fields{"repositionId": id, "area": area, "elapsed": result.ElapsedTime}).Info("timer stopped")
	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return result, nil
}

// SetManualTime records a manually entered span on the timer row of the area, creating it
// when the area never timed the reposition.
func SetManualTime(id types.ID, area domain.Area, req ManualTime, s *session.Session) (*domain.RepositionTimer, error) {
	elapsed, err := SpanMinutes(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if !datePattern.MatchString(req.Date) {
		return nil, bizerror.BadParam("invalid date '" + req.Date + "', use YYYY-MM-DD")
	}
	if !area.Valid() {
		return nil, bizerror.BadParam("unknown area '" + string(area) + "'")
	}

	var t *domain.RepositionTimer
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if _, err := reposition.FindReposition(tx, id); err != nil {
			return err
		}
		now := time.Now()
		timer := domain.RepositionTimer{}
		err := tx.Where("reposition_id = ? AND area = ?", id, area).Order("created_at DESC").Order("id DESC").First(&timer).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			timer = domain.RepositionTimer{
				ID:              idgen.NextID(timerIdWorker),
				RepositionID:    id,
				Area:            area,
				UserID:          s.Identity.ID,
				ManualStartTime: req.StartTime,
				ManualEndTime:   req.EndTime,
				ManualDate:      req.Date,
				ElapsedMinutes:  elapsed,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := tx.Create(&timer).Error; err != nil {
				return err
			}
			t = &timer
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&domain.RepositionTimer{}).Where("id = ?", timer.ID).Updates(map[string]interface{}{
			"manual_start_time": req.StartTime, "manual_end_time": req.EndTime, "manual_date": req.Date,
			"elapsed_minutes": elapsed, "is_running": false, "running_slot": nil, "updated_at": now,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", timer.ID).First(&timer).Error; err != nil {
			return err
		}
		t = &timer
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	logrus.WithFields(logrus.Fields{"repositionId": id, "area": area, "elapsedMinutes": elapsed}).Info("manual time recorded")
	return t, nil
}

// GetTimer returns the latest timer of the area on the reposition, nil when there is none.
func GetTimer(id types.ID, area domain.Area, s *session.Session) (*domain.RepositionTimer, error) {
	timer := domain.RepositionTimer{}
	err := persistence.ActiveDataSourceManager.GormDB(s.Context).Where("reposition_id = ? AND area = ?", id, area).
		Order("created_at DESC").Order("id DESC").First(&timer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &timer, nil
}

func ListTimers(id types.ID, s *session.Session) ([]domain.RepositionTimer, error) {
	return LoadTimers(persistence.ActiveDataSourceManager.GormDB(s.Context), id)
}

func LoadTimers(db *gorm.DB, id types.ID) ([]domain.RepositionTimer, error) {
	r := []domain.RepositionTimer{}
	if err := db.Where("reposition_id = ?", id).Order("created_at ASC").Order("id ASC").Find(&r).Error; err != nil {
		return nil, err
	}
	return r, nil
}
