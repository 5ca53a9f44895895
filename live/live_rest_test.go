package live_test

import (
	"bufio"
	"context"
	"garmentflow/domain"
	"garmentflow/live"
	"garmentflow/testinfra"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func readFrame(r *bufio.Reader) []string {
	lines := []string{}
	for {
		line, err := r.ReadString('\n')
		Expect(err).To(BeNil())
		line = strings.TrimRight(line, "\n")
		if line == "" {
			return lines
		}
		lines = append(lines, line)
	}
}

func TestLiveStream(t *testing.T) {
	RegisterTestingT(t)

	router := gin.New()
	live.RegisterLiveRestAPI(router, testinfra.InjectSession(testinfra.BuildSession(7, domain.AreaCorte)))
	server := httptest.NewServer(router)
	defer server.Close()

	t.Run("should greet and stream broadcast messages", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+live.PathLive, nil)
		Expect(err).To(BeNil())
		resp, err := http.DefaultClient.Do(req)
		Expect(err).To(BeNil())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Header.Get("Content-Type")).To(Equal("text/event-stream"))

		reader := bufio.NewReader(resp.Body)
		welcome := readFrame(reader)
		Expect(welcome[0]).To(Equal("event: connection"))
		Expect(welcome[1]).To(HavePrefix(`data: {"type":"connection","data":{"clientId":"7_`))

		Eventually(live.GlobalHub.ClientCount, time.Second).Should(Equal(1))
		live.GlobalHub.Broadcast(live.Message{Type: live.MessageTypeNotification, Data: map[string]string{"userId": "9"}})

		frame := readFrame(reader)
		Expect(frame).To(Equal([]string{"event: notification", `data: {"type":"notification","data":{"userId":"9"}}`}))

		cancel()
		Eventually(live.GlobalHub.ClientCount, time.Second).Should(BeZero())
	})
}
