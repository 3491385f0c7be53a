package httpapi

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/logger"
	"shipledger/backend/internal/service"
	"shipledger/backend/internal/store"
)

type API struct {
	service        *service.Service
	auth           *AuthManager
	allowedOrigin  string
	loginLimiter   *attemptLimiter
	csrfSecret     []byte
	metricsHandler http.Handler
	log            zerolog.Logger
}

// New builds the HTTP surface. metricsHandler is mounted on /metrics when
// it is not nil.
func New(svc *service.Service, auth *AuthManager, allowedOrigin string, metricsHandler http.Handler) *API {
	csrfSecret := make([]byte, 32)
	if _, err := rand.Read(csrfSecret); err != nil {
		csrfSecret = []byte("csrf-fallback-secret-change-me!!")
	}
	return &API{
		service:        svc,
		auth:           auth,
		allowedOrigin:  allowedOrigin,
		loginLimiter:   newAttemptLimiter(5, time.Minute),
		csrfSecret:     csrfSecret,
		metricsHandler: metricsHandler,
		log:            logger.WithComponent("httpapi"),
	}
}

func (a *API) csrfTokenForHour(hourBucket int64) string {
	h := hmac.New(sha256.New, a.csrfSecret)
	fmt.Fprintf(h, "%d", hourBucket)
	return hex.EncodeToString(h.Sum(nil))
}

func (a *API) generateCSRFToken() string {
	bucket := time.Now().UTC().Truncate(time.Hour).Unix()
	return a.csrfTokenForHour(bucket)
}

// validateCSRFToken accepts tokens from the current and the previous hour.
func (a *API) validateCSRFToken(token string) bool {
	if token == "" {
		return false
	}
	currentBucket := time.Now().UTC().Truncate(time.Hour).Unix()
	prevBucket := currentBucket - 3600

	return hmac.Equal([]byte(token), []byte(a.csrfTokenForHour(currentBucket))) ||
		hmac.Equal([]byte(token), []byte(a.csrfTokenForHour(prevBucket)))
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{a.allowedOrigin},
		AllowedMethods: []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-CSRF-Token"},
		MaxAge:         300,
	}))
	r.Use(a.accessLog)
	r.Use(limitJSONBody)
	r.Use(a.checkCSRF)

	r.Get("/healthz", a.handleHealth)
	if a.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", a.metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", a.handleLogin)
		r.Get("/auth/csrf-token", a.handleCSRFToken)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth(RoleAdmin, RoleManager))

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", a.handleListCustomers)
				r.Post("/", a.handleCreateCustomer)
				r.With(a.requireAuth(RoleAdmin)).Post("/recompute-debts", a.handleRecomputeAllDebts)
				r.Get("/{id}", a.handleGetCustomer)
				r.Post("/{id}/recompute-debt", a.handleRecomputeCustomerDebt)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", a.handleListOrders)
				r.Post("/", a.handleCreateOrder)
				r.Post("/bulk-delete", a.handleBulkDeleteOrders)
				r.Post("/bulk-status", a.handleBulkUpdateStatus)
				r.Post("/assign-representative", a.handleAssignRepresentative)
				r.Get("/{id}", a.handleGetOrder)
				r.Patch("/{id}", a.handleUpdateOrder)
				r.Delete("/{id}", a.handleDeleteOrder)
				r.Post("/{id}/weight", a.handleAmendWeight)
				r.Post("/{id}/shipping-cost", a.handleShippingCost)
				r.Post("/{id}/collect", a.handleCollectPayment)
				r.Put("/{id}/representative", a.handleSetRepresentative)
				r.Delete("/{id}/representative", a.handleUnassignRepresentative)
				r.Post("/{id}/credit-reversal", a.handleReverseCredit)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", a.handleListTransactions)
				r.Post("/", a.handleApplyTransaction)
				r.Patch("/{id}", a.handleAmendTransaction)
				r.Delete("/{id}", a.handleRemoveTransaction)
			})

			r.Route("/treasury", func(r chi.Router) {
				r.Get("/cards", a.handleListTreasuryCards)
				r.With(a.requireAuth(RoleAdmin)).Post("/cards", a.handleCreateTreasuryCard)
				r.Get("/cards/{id}/transactions", a.handleListTreasuryTransactions)
				r.Post("/cards/{id}/transactions", a.handleRecordTreasuryTransaction)
				r.With(a.requireAuth(RoleAdmin)).Get("/verify", a.handleVerifyTreasury)
			})

			r.Route("/credit-cards", func(r chi.Router) {
				r.Get("/", a.handleListCreditCards)
				r.Post("/", a.handleCreateCreditCard)
				r.Post("/allocation", a.handleFindAllocation)
				r.Post("/consume", a.handleConsumeCards)
				r.Post("/deduct", a.handleCostDeduction)
				r.With(a.requireAuth(RoleAdmin)).Delete("/{id}", a.handleDeleteCreditCard)
			})

			r.Get("/wallet/{userID}/transactions", a.handleListWalletTransactions)
			r.Post("/wallet/{userID}/transactions", a.handleAddWalletTransaction)

			r.Route("/temp-orders", func(r chi.Router) {
				r.Get("/", a.handleListTempOrders)
				r.Post("/", a.handleAddTempOrder)
				r.Get("/{id}", a.handleGetTempOrder)
				r.Patch("/{id}", a.handleUpdateTempOrder)
				r.Delete("/{id}", a.handleDeleteTempOrder)
				r.Post("/{id}/payments", a.handleTempOrderPayment)
			})

			r.Get("/representatives", a.handleListRepresentatives)
			r.Post("/representatives", a.handleCreateRepresentative)

			r.Route("/deposits", func(r chi.Router) {
				r.Get("/", a.handleListDeposits)
				r.Post("/", a.handleAddDeposit)
				r.Get("/{id}", a.handleGetDeposit)
				r.Put("/{id}/status", a.handleUpdateDepositStatus)
				r.With(a.requireAuth(RoleAdmin)).Delete("/{id}", a.handleDeleteDeposit)
			})

			r.Route("/creditors", func(r chi.Router) {
				r.Get("/", a.handleListCreditors)
				r.Post("/", a.handleAddCreditor)
				r.Get("/{id}", a.handleGetCreditor)
				r.Patch("/{id}", a.handleUpdateCreditor)
				r.With(a.requireAuth(RoleAdmin)).Delete("/{id}", a.handleDeleteCreditor)
				r.Get("/{id}/debts", a.handleListCreditorDebts)
				r.Post("/{id}/recompute-debt", a.handleRecomputeCreditorDebt)
			})

			r.Route("/external-debts", func(r chi.Router) {
				r.Get("/", a.handleListExternalDebts)
				r.Post("/", a.handleAddExternalDebt)
				r.Patch("/{id}", a.handleUpdateExternalDebt)
				r.Delete("/{id}", a.handleDeleteExternalDebt)
			})

			r.Get("/expenses", a.handleListExpenses)
			r.Post("/expenses", a.handleAddExpense)
			r.Delete("/expenses/{id}", a.handleDeleteExpense)

			r.Get("/settings", a.handleGetSettings)
			r.With(a.requireAuth(RoleAdmin)).Patch("/settings", a.handleUpdateSettings)

			r.Get("/reports/summary", a.handleFinancialSummary)
			r.With(a.requireAuth(RoleAdmin)).Post("/reports/reset", a.handleResetReports)

			r.Group(func(r chi.Router) {
				r.Use(a.requireAuth(RoleAdmin))
				r.Get("/audit-logs", a.handleAuditLogs)
				r.Get("/users/staff", a.handleListStaff)
				r.Post("/users/staff", a.handleCreateStaff)
			})
		})
	})

	return r
}

func (a *API) requireAuth(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
				writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
				return
			}

			token := strings.TrimSpace(authorization[len("Bearer "):])
			actor, err := a.auth.ParseToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err)
				return
			}

			if len(roles) > 0 && !slices.Contains(roles, actor.Role) {
				writeError(w, http.StatusForbidden, errors.New("forbidden role"))
				return
			}

			next.ServeHTTP(w, r.WithContext(service.WithActor(r.Context(), actor)))
		})
	}
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCSRFToken returns a stateless token that mutating requests must echo
// in the X-CSRF-Token header.
func (a *API) handleCSRFToken(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"csrf_token": a.generateCSRFToken(),
	})
}

var csrfExemptPaths = []string{
	"/api/v1/auth/login",
}

func (a *API) checkCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			next.ServeHTTP(w, r)
			return
		}
		if slices.Contains(csrfExemptPaths, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if !a.validateCSRFToken(strings.TrimSpace(r.Header.Get("X-CSRF-Token"))) {
			writeError(w, http.StatusForbidden, errors.New("missing or invalid CSRF token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

func limitJSONBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		startedAt := time.Now()
		next.ServeHTTP(ww, r)

		event := a.log.Info()
		if ww.Status() >= http.StatusInternalServerError {
			event = a.log.Error()
		}
		event.
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(startedAt)).
			Msg("request")
	})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

// statusFor maps ledger errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidTransaction):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= 500 {
		logger.WithComponent("httpapi").Error().Err(err).Int("status", status).Msg("internal error")
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
