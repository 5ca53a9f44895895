package event_test

import (
	"garmentflow/domain"
	"garmentflow/event"
	"garmentflow/session"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestInvokeHandlers(t *testing.T) {
	RegisterTestingT(t)

	ts := time.Date(2021, 1, 1, 12, 12, 12, 0, time.Local)
	ev := event.NewRepositionEvent(&domain.Reposition{ID: 1234, Folio: "JN-REQ-01-21-001"},
		event.EventCategoryPropertyUpdated, domain.ActionApproved, &session.Identity{ID: 333, Name: "user333"}, ts,
		event.UpdatedProperty{PropertyName: "status", OldValue: "pendiente", NewValue: "aprobado"})

	t.Run("should build reposition events", func(t *testing.T) {
		Expect(ev.Event).To(Equal(event.Event{
			SourceType: event.SourceTypeReposition, SourceId: 1234, SourceDesc: "JN-REQ-01-21-001",
			CreatorId: 333, CreatorName: "user333",
			EventCategory: event.EventCategoryPropertyUpdated, Action: domain.ActionApproved,
			UpdatedProperties: []event.UpdatedProperty{{PropertyName: "status", OldValue: "pendiente", NewValue: "aprobado"}},
		}))
		Expect(ev.Timestamp).To(Equal(ts))
	})

	t.Run("should invoke all registered event handlers in order", func(t *testing.T) {
		event.ResetHandlers()
		defer event.ResetHandlers()
		var seen []string
		event.RegisterHandler("ignoring", func(e *event.EventRecord) *event.EventHandleResult {
			seen = append(seen, "ignoring")
			return nil
		})
		event.RegisterHandler("succeeding", func(e *event.EventRecord) *event.EventHandleResult {
			seen = append(seen, e.SourceDesc)
			return &event.EventHandleResult{Success: true, Message: "success"}
		})
		event.RegisterHandler("failing", func(e *event.EventRecord) *event.EventHandleResult {
			return &event.EventHandleResult{Success: false, Message: "failure", HandlerIdentifier: "custom-identifier"}
		})
		Expect(event.HandlerNames()).To(Equal([]string{"ignoring", "succeeding", "failing"}))

		ret := event.InvokeHandlersFunc(ev)
		Expect(ret).To(Equal([]event.EventHandleResult{
			{Success: true, Message: "success", HandlerIdentifier: "succeeding"},
			{Success: false, Message: "failure", HandlerIdentifier: "custom-identifier"},
		}))
		Expect(seen).To(Equal([]string{"ignoring", "JN-REQ-01-21-001"}))
	})

	t.Run("should keep invoking handlers after one panics", func(t *testing.T) {
		event.ResetHandlers()
		defer event.ResetHandlers()
		event.RegisterHandler("broken", func(e *event.EventRecord) *event.EventHandleResult {
			panic("index unavailable")
		})
		called := false
		event.RegisterHandler("next", func(e *event.EventRecord) *event.EventHandleResult {
			called = true
			return &event.EventHandleResult{Success: true}
		})

		ret := event.InvokeHandlersFunc(ev)
		Expect(called).To(BeTrue())
		Expect(ret).To(Equal([]event.EventHandleResult{
			{Success: false, Message: "handler panic: index unavailable", HandlerIdentifier: "broken"},
			{Success: true, HandlerIdentifier: "next"},
		}))
	})

	t.Run("should ignore nil records", func(t *testing.T) {
		Expect(event.InvokeHandlersFunc(nil)).To(BeEmpty())
	})
}
