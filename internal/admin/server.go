package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"petswarm-sim/internal/config"
	"petswarm-sim/internal/economy"
	"petswarm-sim/internal/hatchery"
	"petswarm-sim/internal/logging"
	"petswarm-sim/internal/sim"
	"petswarm-sim/internal/telemetry"
)

// Server exposes the simulator over HTTP.
type Server struct {
	Sim      *sim.Simulator
	tpl      *template.Template
	upgrader websocket.Upgrader
	log      *slog.Logger
}

//go:embed templates/index.html
var content embed.FS

// NewServer builds the admin server for s. It logs through slog.Default until
// Start installs the context logger.
func NewServer(s *sim.Simulator) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	return &Server{
		Sim: s,
		tpl: tpl,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true }, // local tool
		},
		log: slog.Default(),
	}
}

// Handler returns the admin routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/telemetry", s.handleTelemetry)
	mux.HandleFunc("/pets/{id}", s.handlePet)
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/pickups", s.handlePickups)
	mux.HandleFunc("/eggs", s.handleEggs)
	mux.HandleFunc("/commands", s.handleCommands)
	mux.HandleFunc("/attack", s.handleAttack)
	mux.HandleFunc("/buy-egg", s.handleBuyEgg)
	mux.HandleFunc("/stream", s.handleStream)
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.log = logging.FromContext(ctx)
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("admin server listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := struct {
		Session  string
		State    telemetry.SimulationStateRow
		Pets     []telemetry.PetRow
		Pickups  []sim.PickupView
		Eggs     []sim.EggView
		PetTypes []config.Pet
		Commands []sim.Command
	}{
		Session:  s.Sim.SessionID(),
		State:    s.Sim.State(),
		Pets:     s.Sim.TelemetrySnapshot(),
		Pickups:  s.Sim.Pickups(),
		Eggs:     s.Sim.Eggs(),
		PetTypes: s.Sim.GetConfig().Pets,
		Commands: s.Sim.Commands(),
	}
	if err := s.tpl.Execute(w, data); err != nil {
		s.log.Error("render index", "err", err)
	}
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.TelemetrySnapshot())
}

func (s *Server) handlePet(w http.ResponseWriter, r *http.Request) {
	row, ok := s.Sim.Pet(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown pet"))
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.State())
}

func (s *Server) handlePickups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Pickups())
}

func (s *Server) handleEggs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Eggs())
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Commands())
}

func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	target := r.URL.Query().Get("target")
	if target == "" {
		target = sim.AttackTarget
	}
	res, err := s.Sim.Attack(target)
	switch {
	case errors.Is(err, sim.ErrUnknownPickup):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, sim.ErrNoPickup), errors.Is(err, sim.ErrNoPets):
		writeError(w, http.StatusConflict, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleBuyEgg(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	egg := r.URL.Query().Get("egg")
	if egg == "" {
		writeError(w, http.StatusBadRequest, errors.New("egg is required"))
		return
	}
	res, err := s.Sim.BuyEgg(egg)
	switch {
	case errors.Is(err, hatchery.ErrUnknownEgg):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, economy.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"egg":           res.Egg,
			"pet":           res.Pet.Name,
			"pet_id":        res.PetID,
			"price":         res.Price,
			"balance_after": res.BalanceAfter,
		})
	}
}

// balanceFrame is sent on /stream whenever the wallet balance changes.
type balanceFrame struct {
	Coins int `json:"coins"`
}

// handleStream pushes a state row per tick, plus a balance frame on every
// wallet change, until the client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("stream upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	rows, unsubscribe := s.Sim.Subscribe(16)
	defer unsubscribe()
	balances, unsubscribeBalance := s.Sim.SubscribeBalance()
	defer unsubscribeBalance()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		var frame any
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case row, ok := <-rows:
			if !ok {
				return
			}
			frame = row
		case coins, ok := <-balances:
			if !ok {
				return
			}
			frame = balanceFrame{Coins: coins}
		}
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(frame); err != nil {
			s.log.Debug("stream closed", "err", err)
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func methodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Allow", http.MethodPost)
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}
