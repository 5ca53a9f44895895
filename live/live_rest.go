package live

import (
	"encoding/json"
	"fmt"
	"garmentflow/event"
	"garmentflow/session"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	MessageTypeConnection   = "connection"
	MessageTypeNotification = "notification"

	NotificationBroadcasterName = "liveNotificationBroadcaster"
)

var (
	PathLive = "/v1/live"

	HeartbeatInterval = 30 * time.Second
)

func RegisterLiveRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathLive, middleWares...)
	g.GET("", handleStream)
}

func handleStream(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	clientID := fmt.Sprintf("%s_%d", s.Identity.ID, time.Now().UnixNano())
	client := &Client{ID: clientID, UserID: s.Identity.ID.String(), Messages: make(chan Message, clientBufferSize)}
	GlobalHub.Register(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	writeFrame(c, Message{Type: MessageTypeConnection, Data: gin.H{"clientId": clientID}})

	heartbeat := time.NewTicker(HeartbeatInterval)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			GlobalHub.Unregister(clientID)
			return
		case m, ok := <-client.Messages:
			if !ok {
				return
			}
			writeFrame(c, m)
		case <-heartbeat.C:
			c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}

func writeFrame(c *gin.Context, m Message) {
	data, err := json.Marshal(&m)
	if err != nil {
		logrus.Warnf("live message of type %s dropped: %v", m.Type, err)
		return
	}
	c.Writer.WriteString("event: " + m.Type + "\ndata: " + string(data) + "\n\n")
	c.Writer.Flush()
}

// NotificationBroadcaster pushes the notifications created by a committed operation to every live client.
func NotificationBroadcaster(e *event.EventRecord) *event.EventHandleResult {
	if len(e.Notifications) == 0 {
		return nil
	}
	for i := range e.Notifications {
		GlobalHub.Broadcast(Message{Type: MessageTypeNotification, Data: &e.Notifications[i]})
	}
	return &event.EventHandleResult{Success: true, Message: fmt.Sprintf("%d notifications broadcast", len(e.Notifications)),
		HandlerIdentifier: NotificationBroadcasterName}
}
