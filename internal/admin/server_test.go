package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"petswarm-sim/internal/config"
	"petswarm-sim/internal/sim"
	"petswarm-sim/internal/telemetry"
)

func newTestServer(t *testing.T, coins int) (*Server, *sim.Simulator) {
	t.Helper()
	cfg := &config.SimulationConfig{
		Session:      config.Session{StartingCoins: coins},
		Pets:         []config.Pet{{Name: "cat", Damage: 10, AttackRate: 0.5}},
		Eggs:         []config.Egg{{Name: "basic", Price: 50, Drops: []config.Drop{{Pet: "cat", Weight: 1}}}},
		StartingPets: []string{"cat"},
		Pickups:      config.Pickups{Kinds: []config.PickupKind{{Kind: "coin", MaxHealth: 10, Reward: 1, Weight: 1}}},
		Spawner:      config.Spawner{IntervalS: 1000},
	}
	cfg.ApplyDefaults()
	s, err := sim.NewSimulator("admin-test", cfg, nil, 10*time.Millisecond, rand.New(rand.NewSource(3)), nil)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	return NewServer(s), s
}

func do(t *testing.T, h http.Handler, method, target string) *http.Response {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w.Result()
}

func TestHandleIndex(t *testing.T) {
	srv, _ := newTestServer(t, 100)
	resp := do(t, srv.Handler(), http.MethodGet, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status OK, got %v", resp.StatusCode)
	}
	body := new(bytes.Buffer)
	if _, err := body.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(body.String(), "admin-test") || !strings.Contains(body.String(), "basic") {
		t.Errorf("index missing session or egg catalog")
	}
	if resp := do(t, srv.Handler(), http.MethodGet, "/nope"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %v", resp.StatusCode)
	}
}

func TestHandleTelemetry(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	resp := do(t, srv.Handler(), http.MethodGet, "/telemetry")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status OK, got %v", resp.StatusCode)
	}
	var rows []telemetry.PetRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(rows) != 1 || rows[0].PetName != "cat" {
		t.Errorf("unexpected telemetry rows: %+v", rows)
	}
}

func TestHandleAttack(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	h := srv.Handler()

	if resp := do(t, h, http.MethodGet, "/attack"); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %v", resp.StatusCode)
	}
	if resp := do(t, h, http.MethodPost, "/attack"); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 without pickups, got %v", resp.StatusCode)
	}
	if resp := do(t, h, http.MethodPost, "/attack?target=missing"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown pickup, got %v", resp.StatusCode)
	}

	resp := do(t, h, http.MethodGet, "/commands")
	var cmds []sim.Command
	if err := json.NewDecoder(resp.Body).Decode(&cmds); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(cmds) != 2 || cmds[1].Args != "missing" || cmds[1].Error == "" {
		t.Errorf("unexpected command log: %+v", cmds)
	}
}

func TestHandleBuyEgg(t *testing.T) {
	srv, s := newTestServer(t, 60)
	h := srv.Handler()

	if resp := do(t, h, http.MethodPost, "/buy-egg"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without egg, got %v", resp.StatusCode)
	}
	if resp := do(t, h, http.MethodPost, "/buy-egg?egg=golden"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown egg, got %v", resp.StatusCode)
	}
	resp := do(t, h, http.MethodPost, "/buy-egg?egg=basic")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status OK, got %v", resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if out["pet"] != "cat" || out["balance_after"] != float64(10) {
		t.Errorf("unexpected purchase: %+v", out)
	}
	if resp := do(t, h, http.MethodPost, "/buy-egg?egg=basic"); resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("expected 402 when broke, got %v", resp.StatusCode)
	}
	if got := s.State().Pets; got != 2 {
		t.Errorf("expected 2 pets, got %d", got)
	}
}

func TestHandleStateAndEggs(t *testing.T) {
	srv, _ := newTestServer(t, 100)
	var st telemetry.SimulationStateRow
	if err := json.NewDecoder(do(t, srv.Handler(), http.MethodGet, "/state").Body).Decode(&st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if st.SessionID != "admin-test" || st.Coins != 100 || st.Pets != 1 {
		t.Errorf("unexpected state: %+v", st)
	}
	var eggs []sim.EggView
	if err := json.NewDecoder(do(t, srv.Handler(), http.MethodGet, "/eggs").Body).Decode(&eggs); err != nil {
		t.Fatalf("decode eggs: %v", err)
	}
	if len(eggs) != 1 || !eggs[0].Affordable {
		t.Errorf("unexpected eggs: %+v", eggs)
	}
	var pickups []sim.PickupView
	if err := json.NewDecoder(do(t, srv.Handler(), http.MethodGet, "/pickups").Body).Decode(&pickups); err != nil {
		t.Fatalf("decode pickups: %v", err)
	}
	if len(pickups) != 0 {
		t.Errorf("expected no pickups, got %+v", pickups)
	}
}

func TestHandleStream(t *testing.T) {
	srv, s := newTestServer(t, 100)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/stream", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	// readUntil reads frames until match accepts one; balance frames carry no tick.
	readUntil := func(match func(frame map[string]any) bool) {
		t.Helper()
		for i := 0; i < 1000; i++ {
			var frame map[string]any
			if err := conn.ReadJSON(&frame); err != nil {
				t.Fatalf("read: %v", err)
			}
			if match(frame) {
				return
			}
		}
		t.Fatalf("expected frame never arrived")
	}

	readUntil(func(f map[string]any) bool {
		tick, ok := f["tick"].(float64)
		return ok && tick >= 1 && f["session_id"] == "admin-test"
	})
	readUntil(func(f map[string]any) bool {
		_, isRow := f["tick"]
		return !isRow && f["coins"] == float64(100)
	})
	if _, err := s.BuyEgg("basic"); err != nil {
		t.Fatalf("buy: %v", err)
	}
	readUntil(func(f map[string]any) bool {
		_, isRow := f["tick"]
		return !isRow && f["coins"] == float64(50)
	})
}

func TestHandlePet(t *testing.T) {
	srv, s := newTestServer(t, 0)
	pets := s.TelemetrySnapshot()
	if len(pets) != 1 {
		t.Fatalf("expected one pet, got %d", len(pets))
	}
	resp := do(t, srv.Handler(), http.MethodGet, "/pets/"+pets[0].PetID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status OK, got %v", resp.StatusCode)
	}
	var row telemetry.PetRow
	if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if row.PetID != pets[0].PetID || row.PetName != "cat" {
		t.Errorf("unexpected pet row: %+v", row)
	}
	if resp := do(t, srv.Handler(), http.MethodGet, "/pets/missing"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown pet, got %v", resp.StatusCode)
	}
}
