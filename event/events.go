package event

import (
	"garmentflow/domain"
	"garmentflow/session"
	"time"
)

func NewRepositionEvent(r *domain.Reposition, category EventCategory, action domain.HistoryAction,
	identity *session.Identity, timestamp time.Time, updatedProperties ...UpdatedProperty) *EventRecord {

	return &EventRecord{
		Event: Event{
			SourceType: SourceTypeReposition,
			SourceId:   r.ID,
			SourceDesc: r.Folio,

			CreatorId:   identity.ID,
			CreatorName: identity.Name,

			EventCategory:     category,
			Action:            action,
			UpdatedProperties: updatedProperties,
		},
		Timestamp: timestamp,
	}
}
