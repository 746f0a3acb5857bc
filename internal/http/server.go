package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ledgerbot/internal/agent"
	"ledgerbot/internal/config"
	"ledgerbot/internal/core"
	"ledgerbot/internal/events"
	"ledgerbot/internal/ledger"
)

// Default reply when the model neither called a function nor produced
// usable free text.
const fallbackReply = "I processed your request, but wasn't sure what to log."

// IntentExtractor is the slice of the model client the webhook needs.
type IntentExtractor interface {
	Extract(ctx context.Context, text string, categories []string, payer string) (agent.Intent, error)
}

// TransactionNotifier broadcasts logged transactions. Optional; publish
// failures never affect the webhook reply.
type TransactionNotifier interface {
	PublishTransactionLogged(ctx context.Context, ev events.TransactionEvent) error
}

type Server struct {
	http.Server
	extractor IntentExtractor
	store     ledger.Store
	notifier  TransactionNotifier
	cfg       *config.Config
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, extractor IntentExtractor, store ledger.Store, notifier TransactionNotifier, cfg *config.Config) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		extractor: extractor,
		store:     store,
		notifier:  notifier,
		cfg:       cfg,
	}

	mux.HandleFunc("/whatsapp", s.withRequestLogging(s.handleWhatsApp))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	return s
}

// handleWhatsApp runs the whole pipeline for one inbound message:
// validate, fetch categories, extract intent, persist at most one
// record, reply in the gateway's XML envelope.
func (s *Server) handleWhatsApp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// PostFormValue handles both urlencoded and multipart bodies.
	body := strings.TrimSpace(r.PostFormValue("Body"))
	from := r.PostFormValue("From")
	if body == "" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("No message"))
		return
	}

	ctx := r.Context()
	slog.InfoContext(ctx, "Inbound message", "from", from, "chars", len(body))

	categories := s.categoryLabels(ctx)

	intent, err := s.extractor.Extract(ctx, body, categories, s.cfg.DefaultPayer)
	if err != nil {
		s.internalError(ctx, w, "Intent extraction failed", err)
		return
	}

	var reply string
	switch intent.Kind {
	case agent.KindExpense:
		e := core.Expense{
			ID:       core.NewID(),
			Date:     core.Today(),
			Item:     intent.Expense.Item,
			Amount:   intent.Expense.Amount,
			Category: intent.Expense.Category,
			Notes:    intent.Expense.Notes,
			PaidBy:   s.cfg.DefaultPayer,
		}
		if err := s.store.CreateExpense(ctx, e); err != nil {
			s.internalError(ctx, w, "Expense insert failed", err)
			return
		}
		slog.InfoContext(ctx, "Expense logged",
			"id", e.ID, "item", e.Item, "amount", e.Amount, "category", e.Category)
		s.notify(ctx, events.NewExpenseEvent(e))
		reply = fmt.Sprintf("✅ Logged Expense: %s%s for %s (%s)",
			s.cfg.CurrencySymbol, core.FormatAmount(e.Amount), e.Item, e.Category)

	case agent.KindIncome:
		in := core.Income{
			ID:     core.NewID(),
			Date:   core.Today(),
			Source: intent.Income.Source,
			Amount: intent.Income.Amount,
			Notes:  intent.Income.Notes,
		}
		if err := s.store.CreateIncome(ctx, in); err != nil {
			s.internalError(ctx, w, "Income insert failed", err)
			return
		}
		slog.InfoContext(ctx, "Income logged",
			"id", in.ID, "source", in.Source, "amount", in.Amount)
		s.notify(ctx, events.NewIncomeEvent(in))
		reply = fmt.Sprintf("💰 Logged Income: %s%s from %s",
			s.cfg.CurrencySymbol, core.FormatAmount(in.Amount), in.Source)

	default:
		reply = intent.Text
		if reply == "" {
			reply = fallbackReply
		}
	}

	writeTwiML(w, reply)
}

// categoryLabels fetches the reference list. A read failure degrades to
// the fallback category; the request must not fail because reference
// data is unavailable.
func (s *Server) categoryLabels(ctx context.Context) []string {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Category fetch failed, using fallback", "error", err)
		return []string{s.cfg.FallbackCategory}
	}
	labels := core.Labels(cats)
	if len(labels) == 0 {
		return []string{s.cfg.FallbackCategory}
	}
	return labels
}

func (s *Server) notify(ctx context.Context, ev events.TransactionEvent) {
	if s.notifier == nil {
		return
	}
	// Detached from the request: the reply must not wait on the broker.
	go func(ctx context.Context) {
		if err := s.notifier.PublishTransactionLogged(ctx, ev); err != nil {
			slog.WarnContext(ctx, "Transaction event publish failed", "error", err, "id", ev.ID)
		}
	}(context.WithoutCancel(ctx))
}

func (s *Server) internalError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	slog.ErrorContext(ctx, msg, "error", err)
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte("Internal Error"))
}

// withRequestLogging adds a request ID and start/completion logging.
func (s *Server) withRequestLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
