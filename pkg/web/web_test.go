package web

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-focus/pkg/attention"
)

func snapshot(frame uint64, score float64) attention.Snapshot {
	return attention.Snapshot{
		Frame: frame,
		Time:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Event: attention.Event{
			Identity: "Ada",
			Emotion:  "happy",
			Box:      attention.Box{X: 10, Y: 10, W: 80, H: 80},
		},
		Score:   score,
		History: []float64{50, 51, score},
	}
}

func getJSON(t *testing.T, s *Server, path string, v interface{}) {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, path, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func TestStatusDefaults(t *testing.T) {
	s := NewServer(Config{Session: "abc"})

	var st Status
	getJSON(t, s, "/api/status", &st)
	if st.Session != "abc" || st.Identity != attention.UnknownIdentity || st.Emotion != attention.ScanningEmotion {
		t.Errorf("default status = %+v", st)
	}
}

func TestStatusAndHistory(t *testing.T) {
	s := NewServer(Config{Session: "abc"})
	s.OnFrame(snapshot(7, 52))

	var st Status
	getJSON(t, s, "/api/status", &st)
	if st.Frame != 7 || st.Score != 52 || !st.Face || st.Identity != "Ada" {
		t.Errorf("status = %+v", st)
	}

	var h struct {
		History []float64 `json:"history"`
	}
	getJSON(t, s, "/api/history", &h)
	if len(h.History) != 3 || h.History[2] != 52 {
		t.Errorf("history = %v", h.History)
	}
}

func TestRecordsCapped(t *testing.T) {
	s := NewServer(Config{})
	for i := 0; i < MaxRecords+20; i++ {
		s.OnRecord(attention.Record{Score: i % 101, Emotion: "neutral"})
	}

	var recs []attention.Record
	getJSON(t, s, "/api/records", &recs)
	if len(recs) != MaxRecords {
		t.Fatalf("records = %d, want %d", len(recs), MaxRecords)
	}
	if recs[0].Score != 20 {
		t.Errorf("oldest kept score = %d, want 20", recs[0].Score)
	}

	getJSON(t, s, "/api/records?limit=3", &recs)
	if len(recs) != 3 {
		t.Errorf("limited records = %d, want 3", len(recs))
	}
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "focus_frames_total 3\n")
	})
	s := NewServer(Config{Metrics: metrics})

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "focus_frames_total 3") {
		t.Errorf("metrics body = %q", body)
	}
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	s := NewServer(Config{})
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/ws/status", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Errorf("status = %d, want 426", resp.StatusCode)
	}
}

func TestStatusWebSocket(t *testing.T) {
	s := NewServer(Config{Session: "live"})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()
	defer func() {
		cancel()
		<-done
	}()

	url := "ws://" + ln.Addr().String() + "/ws/status"
	var conn *websocket.Conn
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn, _, err = websocket.DefaultDialer.Dial(url, nil)
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	s.OnFrame(snapshot(42, 61.5))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var st Status
	if err := conn.ReadJSON(&st); err != nil {
		t.Fatalf("read: %v", err)
	}
	if st.Frame != 42 || st.Score != 61.5 || st.Session != "live" {
		t.Errorf("pushed status = %+v", st)
	}
}
