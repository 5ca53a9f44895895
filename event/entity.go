package event

import (
	"garmentflow/domain"
	"time"

	"github.com/fundwit/go-commons/types"
)

const (
	EventCategoryCreated         = "CREATED"
	EventCategoryDeleted         = "DELETED"
	EventCategoryPropertyUpdated = "PROPERTY_UPDATED"
	EventCategoryRelationUpdated = "RELATION_UPDATED"
)

const SourceTypeReposition = "REPOSITION"

type EventCategory string

type Event struct {
	SourceId   types.ID `json:"sourceId"`
	SourceType string   `json:"sourceType"`
	SourceDesc string   `json:"sourceDesc"`

	CreatorId   types.ID `json:"creatorId"`
	CreatorName string   `json:"creatorName"`

	EventCategory     EventCategory        `json:"eventCategory"`
	Action            domain.HistoryAction `json:"action"`
	UpdatedProperties []UpdatedProperty    `json:"updatedProperties"`
}

// EventRecord is produced inside a committed unit of work and handed to the event handlers.
type EventRecord struct {
	Event

	Timestamp     time.Time             `json:"timestamp"`
	Notifications []domain.Notification `json:"notifications"`
}

type UpdatedProperty struct {
	PropertyName string `json:"propertyName"`
	OldValue     string `json:"oldValue"`
	NewValue     string `json:"newValue"`
}
