package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/uhyunpark/orderboard/pkg/app/market"
	"github.com/uhyunpark/orderboard/pkg/board"
)

// JournalReader exposes recent audit entries. Optional.
type JournalReader interface {
	Recent(limit int) ([]market.Event, error)
}

const defaultJournalLimit = 50

// Server handles REST API and WebSocket connections
type Server struct {
	market  *market.Market
	journal JournalReader
	router  *mux.Router
	hub     *Hub
	logger  *zap.SugaredLogger
	origins []string
}

// NewServer creates a new API server. journal may be nil.
func NewServer(m *market.Market, journal JournalReader, origins []string, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		market:  m,
		journal: journal,
		router:  mux.NewRouter(),
		hub:     NewHub(logger),
		logger:  logger,
		origins: origins,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/orders", s.handleRegisterOrder).Methods("POST")
	api.HandleFunc("/orders/cancel", s.handleCancelOrder).Methods("POST")
	api.HandleFunc("/summary", s.handleGetSummary).Methods("GET")
	api.HandleFunc("/journal", s.handleGetJournal).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the router wrapped with CORS.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(s.router)
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	go s.hub.Run(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Infow("api_server_listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleRegisterOrder(w http.ResponseWriter, r *http.Request) {
	order, err := decodeOrder(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	resp := OrderResponse{Status: "registered"}
	if err := s.market.Register(r.Context(), order); err != nil {
		if !errors.Is(err, market.ErrJournal) {
			s.respondMarketError(w, err)
			return
		}
		// the board changed; a retry would apply it twice
		s.logger.Warnw("order_not_journaled", "status", resp.Status, "err", err)
		resp.Warning = err.Error()
	}
	respondJSONStatus(w, http.StatusCreated, resp)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := decodeOrder(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	resp := OrderResponse{Status: "cancelled"}
	if err := s.market.Cancel(r.Context(), order); err != nil {
		if !errors.Is(err, market.ErrJournal) {
			s.respondMarketError(w, err)
			return
		}
		// the board changed; a retry would apply it twice
		s.logger.Warnw("order_not_journaled", "status", resp.Status, "err", err)
		resp.Warning = err.Error()
	}
	respondJSONStatus(w, http.StatusOK, resp)
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	snap, err := s.market.Snapshot()
	if err != nil {
		s.respondMarketError(w, err)
		return
	}
	respondJSON(w, SummaryResponse{
		Lines:     snap.Lines,
		Levels:    snap.Levels,
		Seq:       snap.Seq,
		Timestamp: snap.Time.UnixMilli(),
	})
}

func (s *Server) handleGetJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		respondError(w, http.StatusNotFound, "journal disabled", "")
		return
	}

	limit := defaultJournalLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit", v)
			return
		}
		limit = n
	}

	events, err := s.journal.Recent(limit)
	if err != nil {
		s.logger.Errorw("journal_read_failed", "err", err)
		respondError(w, http.StatusInternalServerError, "journal read failed", err.Error())
		return
	}

	entries := make([]JournalEntry, len(events))
	for i, e := range events {
		entries[i] = JournalEntry{
			ID:            e.ID.String(),
			Seq:           e.Seq,
			Kind:          string(e.Kind),
			ParticipantID: e.Order.ParticipantID,
			Quantity:      e.Order.Quantity,
			UnitPrice:     e.Order.UnitPrice,
			Side:          e.Order.Side.String(),
			Timestamp:     e.Time.UnixMilli(),
		}
	}
	respondJSON(w, entries)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, HealthResponse{Status: "ok", Orders: s.market.Len()})
}

// ==============================
// Broadcast Methods (called from the market)
// ==============================

// BroadcastSummary pushes a snapshot to "summary" subscribers.
func (s *Server) BroadcastSummary(snap market.Snapshot) {
	s.hub.BroadcastToChannel(ChannelSummary, SummaryUpdate{
		Type:      ChannelSummary,
		Event:     string(snap.Kind),
		Seq:       snap.Seq,
		Lines:     snap.Lines,
		Levels:    snap.Levels,
		Timestamp: snap.Time.UnixMilli(),
	})
}

// ==============================
// Helper Functions
// ==============================

// decodeOrder reads an OrderRequest. A JSON null body yields a nil order,
// which the board rejects.
func decodeOrder(r *http.Request) (*board.Order, error) {
	var req *OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, nil
	}
	side, err := board.ParseSide(req.Side)
	if err != nil {
		return nil, err
	}
	o := board.NewOrder(req.ParticipantID, req.Quantity, req.UnitPrice, side)
	return &o, nil
}

func (s *Server) respondMarketError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, board.ErrInvalidOrder):
		respondError(w, http.StatusBadRequest, "invalid order", err.Error())
	case errors.Is(err, board.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order not found", err.Error())
	default:
		s.logger.Errorw("request_failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	respondJSONStatus(w, http.StatusOK, data)
}

func respondJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	respondJSONStatus(w, status, ErrorResponse{
		Error:   error,
		Message: message,
	})
}
