package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/alexiusacademia/gobem/internal/bem"
)

// Message types
const (
	TypePoint = "point"
	TypeSweep = "sweep"
	TypeDone  = "done"
	TypeError = "error"
)

// Sweep modes
const (
	ModeTipSpeedRatio = "tsr"
	ModePowerCurve    = "power"
)

// Request is a client message. A "point" request uses WindSpeed with Omega or RPM;
// a "sweep" request uses Mode and the grid fields of that mode.
type Request struct {
	Type string `json:"type"`

	WindSpeed float64 `json:"wind_speed,omitempty"`
	Omega     float64 `json:"omega,omitempty"`
	RPM       float64 `json:"rpm,omitempty"`

	Mode     string    `json:"mode,omitempty"`
	OmegaMin float64   `json:"omega_min,omitempty"`
	OmegaMax float64   `json:"omega_max,omitempty"`
	Winds    []float64 `json:"winds,omitempty"`
	RPMMin   float64   `json:"rpm_min,omitempty"`
	RPMMax   float64   `json:"rpm_max,omitempty"`
	N        int       `json:"n,omitempty"`
}

// Msg is a server reply
type Msg struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}

// Point is the content of a "point" reply
type Point struct {
	Index          int     `json:"index"`
	WindSpeed      float64 `json:"wind_speed"`
	Omega          float64 `json:"omega"`
	RPM            float64 `json:"rpm"`
	TipSpeedRatio  float64 `json:"tsr"`
	Power          float64 `json:"power"`
	Torque         float64 `json:"torque"`
	Thrust         float64 `json:"thrust"`
	Cp             float64 `json:"cp"`
	CT             float64 `json:"ct"`
	FailedStations int     `json:"failed_stations"`
}

// Done is the content of a "done" reply
type Done struct {
	Points int `json:"points"`
	Failed int `json:"failed"`
}

// maxSweepPoints bounds the grid a single request may ask for
const maxSweepPoints = 10000

func newMsg(typ string, content interface{}) Msg {
	data, err := json.Marshal(content)
	if err != nil {
		data, _ = json.Marshal(err.Error())
		typ = TypeError
	}
	return Msg{Type: typ, Content: data}
}

func errorMsg(err error) Msg {
	return newMsg(TypeError, err.Error())
}

// Hub serves one websocket connection: requests are handled in order and replies
// are written by a single goroutine.
type Hub struct {
	conn    *websocket.Conn
	rotor   *bem.Rotor
	workers int
	log     log.FieldLogger

	requests chan Request
	replies  chan Msg
}

// NewHub creates a hub for conn
func NewHub(conn *websocket.Conn, rotor *bem.Rotor, workers int, logger log.FieldLogger) *Hub {
	return &Hub{
		conn:     conn,
		rotor:    rotor,
		workers:  workers,
		log:      logger,
		requests: make(chan Request, 10),
		replies:  make(chan Msg, 10),
	}
}

func (h *Hub) handleResponse(done chan<- struct{}) {
	defer close(done)
	for reply := range h.replies {
		if err := h.conn.WriteJSON(&reply); err != nil {
			h.log.WithError(err).Warn("write failed")
		}
	}
}

func (h *Hub) handleRequest(ctx context.Context) {
	defer close(h.replies)
	for req := range h.requests {
		points, err := h.points(req)
		if err != nil {
			h.replies <- errorMsg(err)
			continue
		}
		h.evaluate(ctx, points)
	}
}

// points turns a request into the operating points to evaluate
func (h *Hub) points(req Request) ([]bem.OperatingPoint, error) {
	switch req.Type {
	case TypePoint:
		omega := req.Omega
		if req.RPM != 0 {
			omega = bem.RPMToRadPerSec(req.RPM)
		}
		return []bem.OperatingPoint{{WindSpeed: req.WindSpeed, Omega: omega}}, nil
	case TypeSweep:
		if req.N < 1 || req.N > maxSweepPoints {
			return nil, fmt.Errorf("n must be in [1, %d], got %d", maxSweepPoints, req.N)
		}
		switch req.Mode {
		case ModeTipSpeedRatio:
			return bem.TipSpeedRatioSweep(req.WindSpeed, req.OmegaMin, req.OmegaMax, req.N), nil
		case ModePowerCurve:
			if len(req.Winds) == 0 || len(req.Winds)*req.N > maxSweepPoints {
				return nil, fmt.Errorf("power sweep needs 1 to %d points, got %d wind speeds", maxSweepPoints, len(req.Winds))
			}
			return bem.PowerCurveSweep(req.Winds, req.RPMMin, req.RPMMax, req.N), nil
		}
		return nil, fmt.Errorf("unknown sweep mode %q (want %s or %s)", req.Mode, ModeTipSpeedRatio, ModePowerCurve)
	}
	return nil, fmt.Errorf("unknown request type %q", req.Type)
}

// evaluate streams one reply per point followed by "done"
func (h *Hub) evaluate(ctx context.Context, points []bem.OperatingPoint) {
	var failed int
	for res := range h.rotor.Stream(ctx, points, h.workers) {
		if res.Err != nil {
			failed++
			h.replies <- errorMsg(fmt.Errorf("point %d: %w", res.Index, res.Err))
			continue
		}
		p := res.Performance
		h.replies <- newMsg(TypePoint, Point{
			Index:          res.Index,
			WindSpeed:      p.WindSpeed,
			Omega:          p.Omega,
			RPM:            bem.RadPerSecToRPM(p.Omega),
			TipSpeedRatio:  p.TipSpeedRatio,
			Power:          p.TotalPower,
			Torque:         p.TotalTorque,
			Thrust:         p.TotalThrust,
			Cp:             p.Cp,
			CT:             p.CT,
			FailedStations: len(p.Failures),
		})
	}
	h.replies <- newMsg(TypeDone, Done{Points: len(points), Failed: failed})
}
