package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/alexiusacademia/gobem/internal/airfoil"
	"github.com/alexiusacademia/gobem/internal/bem"
	"github.com/alexiusacademia/gobem/internal/geometry"
	"github.com/alexiusacademia/gobem/internal/metrics"
)

func testRotor(t *testing.T) *bem.Rotor {
	t.Helper()
	var samples []airfoil.Sample
	for _, tc := range []float64{24.1, 100} {
		for _, alpha := range []float64{-180, 0, 180} {
			samples = append(samples, airfoil.Sample{Angle: alpha, Thickness: tc, Coefficients: airfoil.Coefficients{Cd: 0.6}})
		}
	}
	tbl, err := airfoil.NewThicknessTable(samples, airfoil.DefaultPrecision, false)
	if err != nil {
		t.Fatal(err)
	}
	blade := &geometry.Blade{
		Radius:    10,
		Radii:     []float64{2.8, 5, 7.5},
		Chords:    []float64{5.38, 3, 2},
		Pitch:     []float64{14.5, 8, 3},
		Thickness: []float64{100, 100, 100},
	}
	r := bem.NewRotor(bem.NewSolver(tbl, 3, 1.225), blade)
	logger, _ := test.NewNullLogger()
	r.Log = logger
	return r
}

func startServer(t *testing.T, collector *metrics.Collector) (*httptest.Server, *websocket.Conn) {
	t.Helper()
	rotor := testRotor(t)
	if collector != nil {
		rotor.Observer = collector
	}

	s := NewServer(":0", websocket.Upgrader{}, rotor, 2, collector)
	logger, _ := test.NewNullLogger()
	s.log = logger

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	return ts, conn
}

// readUntilDone collects replies up to and including the "done" message
func readUntilDone(t *testing.T, conn *websocket.Conn) ([]Point, []string, Done) {
	t.Helper()
	var (
		points []Point
		errs   []string
	)
	for {
		var msg Msg
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		switch msg.Type {
		case TypePoint:
			var p Point
			if err := json.Unmarshal(msg.Content, &p); err != nil {
				t.Fatal(err)
			}
			points = append(points, p)
		case TypeError:
			var s string
			if err := json.Unmarshal(msg.Content, &s); err != nil {
				t.Fatal(err)
			}
			errs = append(errs, s)
		case TypeDone:
			var d Done
			if err := json.Unmarshal(msg.Content, &d); err != nil {
				t.Fatal(err)
			}
			return points, errs, d
		default:
			t.Fatalf("unexpected message type %q", msg.Type)
		}
	}
}

func TestPointRequest(t *testing.T) {
	_, conn := startServer(t, nil)

	if err := conn.WriteJSON(Request{Type: TypePoint, WindSpeed: 10, Omega: 0.5}); err != nil {
		t.Fatal(err)
	}
	points, errs, done := readUntilDone(t, conn)
	if len(errs) != 0 || len(points) != 1 || done.Points != 1 {
		t.Fatalf("points=%v errs=%v done=%+v", points, errs, done)
	}
	if points[0].TipSpeedRatio != 0.5 || points[0].Power == 0 {
		t.Errorf("unexpected point: %+v", points[0])
	}
}

func TestSweepRequestStreamsEveryPoint(t *testing.T) {
	_, conn := startServer(t, nil)

	req := Request{Type: TypeSweep, Mode: ModePowerCurve, Winds: []float64{8, 10}, RPMMin: 2, RPMMax: 12, N: 4}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatal(err)
	}
	points, errs, done := readUntilDone(t, conn)
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	if len(points) != 8 || done.Points != 8 || done.Failed != 0 {
		t.Fatalf("got %d points, done=%+v", len(points), done)
	}
	seen := make(map[int]bool)
	for _, p := range points {
		seen[p.Index] = true
	}
	if len(seen) != 8 {
		t.Errorf("indices not unique: %v", seen)
	}
}

func TestInvalidRequests(t *testing.T) {
	_, conn := startServer(t, nil)

	for _, req := range []Request{
		{Type: "launch"},
		{Type: TypeSweep, Mode: "yaw", N: 3},
		{Type: TypeSweep, Mode: ModeTipSpeedRatio, N: 0},
	} {
		if err := conn.WriteJSON(req); err != nil {
			t.Fatal(err)
		}
		var msg Msg
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type != TypeError {
			t.Errorf("request %+v: got %q, expected an error reply", req, msg.Type)
		}
	}

	// a non-physical point is reported per point, then done
	if err := conn.WriteJSON(Request{Type: TypePoint, WindSpeed: 0, Omega: 1}); err != nil {
		t.Fatal(err)
	}
	points, errs, done := readUntilDone(t, conn)
	if len(points) != 0 || len(errs) != 1 || done.Failed != 1 {
		t.Errorf("points=%v errs=%v done=%+v", points, errs, done)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	collector := metrics.New()
	ts, conn := startServer(t, collector)

	if err := conn.WriteJSON(Request{Type: TypePoint, WindSpeed: 10, RPM: 6}); err != nil {
		t.Fatal(err)
	}
	readUntilDone(t, conn)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "gobem_operating_points_total 1\n") {
		t.Errorf("metrics missing evaluated point:\n%s", body)
	}
}
