package command

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/gorilla/websocket"

	"github.com/signalsfoundry/spectrum-sim/core"
	"github.com/signalsfoundry/spectrum-sim/internal/logging"
	"github.com/signalsfoundry/spectrum-sim/model"
)

// Server exposes the jammer command surface and the render-client feed over
// HTTP. All command endpoints are synchronous and side-effect-free on
// failure; they surface the engine's boolean contract as {"ok":bool}.
type Server struct {
	engine *core.SimulationEngine
	hub    *Hub
	log    logging.Logger
	mux    *http.ServeMux

	upgrader websocket.Upgrader
}

// NewServer wires routes for the given engine. metricsHandler may be nil.
func NewServer(engine *core.SimulationEngine, hub *Hub, log logging.Logger, metricsHandler http.Handler) *Server {
	if log == nil {
		log = logging.Noop()
	}
	s := &Server{
		engine: engine,
		hub:    hub,
		log:    log,
		mux:    http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	s.mux.HandleFunc("POST /api/jammers/{id}/activate", s.handleActivate)
	s.mux.HandleFunc("POST /api/jammers/{id}/deactivate", s.handleDeactivate)
	s.mux.HandleFunc("POST /api/jammers/{id}/frequency", s.handleFrequency)
	s.mux.HandleFunc("POST /api/jammers/{id}/power", s.handlePower)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /ws", s.handleWS)
	if metricsHandler != nil {
		s.mux.Handle("GET /metrics", metricsHandler)
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) writeResult(w http.ResponseWriter, ok bool) {
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	json.NewEncoder(w).Encode(commandResponse{OK: ok})
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	ctx, log := logging.WithRequestLogger(r.Context(), s.log)
	id := model.EntityID(r.PathValue("id"))
	ok := s.engine.Command(func(jc *core.JammerController) bool {
		return jc.Activate(id)
	})
	log.Info(ctx, "activate jammer", logging.String("entity", string(id)), logging.Any("ok", ok))
	s.writeResult(w, ok)
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx, log := logging.WithRequestLogger(r.Context(), s.log)
	id := model.EntityID(r.PathValue("id"))
	ok := s.engine.Command(func(jc *core.JammerController) bool {
		return jc.Deactivate(id)
	})
	log.Info(ctx, "deactivate jammer", logging.String("entity", string(id)), logging.Any("ok", ok))
	s.writeResult(w, ok)
}

func (s *Server) handleFrequency(w http.ResponseWriter, r *http.Request) {
	ctx, log := logging.WithRequestLogger(r.Context(), s.log)
	id := model.EntityID(r.PathValue("id"))

	var req frequencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeResult(w, false)
		return
	}
	ok := s.engine.Command(func(jc *core.JammerController) bool {
		return jc.SetFrequency(id, model.FrequencyKey(req.Frequency))
	})
	log.Info(ctx, "set jammer frequency",
		logging.String("entity", string(id)),
		logging.String("frequency", req.Frequency),
		logging.Any("ok", ok))
	s.writeResult(w, ok)
}

func (s *Server) handlePower(w http.ResponseWriter, r *http.Request) {
	ctx, log := logging.WithRequestLogger(r.Context(), s.log)
	id := model.EntityID(r.PathValue("id"))

	var req powerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeResult(w, false)
		return
	}
	ok := s.engine.Command(func(jc *core.JammerController) bool {
		return jc.SetPower(id, req.PowerDBm)
	})
	log.Info(ctx, "set jammer power",
		logging.String("entity", string(id)),
		logging.Float("power_dbm", req.PowerDBm),
		logging.Any("ok", ok))
	s.writeResult(w, ok)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "websocket upgrade failed", logging.String("error", err.Error()))
		return
	}
	// Seed the new client with the current snapshot. The hub writes it
	// before registering the subscriber so the write cannot race a tick
	// broadcast on the same connection.
	seed, err := json.Marshal(s.Snapshot())
	if err != nil {
		s.log.Error(r.Context(), "marshal seed snapshot", logging.String("error", err.Error()))
		conn.Close()
		return
	}
	id, err := s.hub.Subscribe(conn, seed)
	if err != nil {
		s.log.Warn(r.Context(), "seed write failed", logging.String("error", err.Error()))
		return
	}
	s.log.Info(r.Context(), "render client subscribed", logging.Any("subscriber", id))

	// Reader loop exists only to observe close; clients don't send commands
	// over the socket.
	go func() {
		defer s.hub.Unsubscribe(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Snapshot builds a consistent state message under the engine lock.
func (s *Server) Snapshot() stateMessage {
	var msg stateMessage
	s.engine.WithLock(func() {
		msg = s.snapshotLocked()
	})
	return msg
}

// BroadcastTick publishes a post-tick snapshot to all render clients.
// Registered as a tick listener, so the engine lock is already released.
func (s *Server) BroadcastTick(int) {
	s.hub.Broadcast(s.Snapshot())
}

func (s *Server) snapshotLocked() stateMessage {
	world := s.engine.World
	msg := stateMessage{Type: "state", Tick: s.engine.TickCountLocked()}

	for _, id := range world.EntitiesWith(model.KindTransform) {
		tr := world.Transform(id)
		es := EntityState{
			ID: id, X: tr.X, Y: tr.Y, Z: tr.Z, Rotation: tr.Rotation,
		}
		if ai := world.AI(id); ai != nil {
			es.State = ai.State.String()
			es.ConfusionLevel = ai.ConfusionLevel
		}
		if rx := world.Receiver(id); rx != nil {
			es.Jammed = rx.Jammed
			if rx.HasSignal {
				v := rx.CurrentSignal
				es.SignalDBm = &v
			}
		}
		if tx := world.Transmitter(id); tx != nil {
			v := tx.Active
			es.TransmitterActive = &v
		}
		if jam := world.Jammer(id); jam != nil {
			active := jam.Active
			cd := jam.CooldownSec
			es.JammerActive = &active
			es.CooldownSec = &cd
		}
		msg.Entities = append(msg.Entities, es)
	}

	descs := s.engine.Coverage.Descriptors()
	for _, d := range descs {
		msg.Coverage = append(msg.Coverage, d)
	}
	sort.Slice(msg.Coverage, func(i, j int) bool {
		return msg.Coverage[i].Entity < msg.Coverage[j].Entity
	})
	return msg
}
