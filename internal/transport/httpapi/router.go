// Package httpapi exposes the ledger over HTTP. Every mutating route acts
// as the identity named in the caller header, which an upstream gateway is
// expected to have authenticated.
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"bountyvault/internal/bootstrap/logging"
	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/usecase/bounty"
)

const CallerHeader = "X-Bountyvault-Caller"

type callerKey struct{}

type Server struct {
	svc    *bounty.Service
	stream http.HandlerFunc
}

// NewRouter mounts the v1 API. stream, when set, serves /v1/events/ws.
func NewRouter(ctx context.Context, svc *bounty.Service, stream http.HandlerFunc) http.Handler {
	s := &Server{svc: svc, stream: stream}
	logCtx := logging.WithComponent(ctx, "transport.httpapi")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logCtx))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "ok")
	})

	r.Route("/v1", func(api chi.Router) {
		api.Use(render.SetContentType(render.ContentTypeJSON))

		api.Get("/vaults", s.listVaults)
		api.Get("/vaults/{vault}", s.getVault)
		api.Get("/reports", s.listReports)
		api.Get("/reports/{report}", s.getReport)
		api.Get("/reports/{report}/status", s.getReportStatus)
		api.Get("/credentials", s.listCredentials)
		api.Get("/credentials/{credential}", s.getCredential)
		api.Get("/events", s.listEvents)
		api.Get("/custody/accounts/{account}", s.getCustodyAccount)
		api.Get("/custody/accounts/{account}/transfers", s.listCustodyTransfers)
		api.Get("/audit/solvency", s.auditSolvency)
		if s.stream != nil {
			api.Get("/events/ws", s.stream)
		}

		api.Group(func(authed chi.Router) {
			authed.Use(requireCaller)

			authed.Post("/vaults", s.createVault)
			authed.Post("/vaults/{vault}/fund", s.fundVault)
			authed.Post("/vaults/{vault}/toggle", s.toggleVault)
			authed.Put("/vaults/{vault}/schedule", s.updateSchedule)
			authed.Post("/vaults/{vault}/reports", s.submitReport)
			authed.Post("/vaults/{vault}/reports/{report}/approve", s.approveReport)
			authed.Post("/vaults/{vault}/reports/{report}/reject", s.rejectReport)
			authed.Post("/vaults/{vault}/reports/{report}/payout", s.executePayout)
			authed.Post("/reports/{report}/credential", s.mintCredential)
			authed.Post("/custody/accounts", s.openCustodyAccount)
			authed.Post("/custody/accounts/{account}/mint", s.mintCustody)
		})
	})

	return r
}

func requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := strings.TrimSpace(r.Header.Get(CallerHeader))
		if caller == "" {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, errorBody{Error: "Unauthenticated", Message: CallerHeader + " header is required"})
			return
		}
		ctx := context.WithValue(r.Context(), callerKey{}, caller)
		ctx = logging.WithAttrs(ctx, slog.String("caller", caller))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerFrom(r *http.Request) string {
	caller, _ := r.Context().Value(callerKey{}).(string)
	return caller
}

func requestLogger(ctx context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			reqCtx := logging.WithRequestID(logging.Inherit(r.Context(), ctx), middleware.GetReqID(r.Context()))
			next.ServeHTTP(ww, r.WithContext(reqCtx))
			logging.Info(reqCtx, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("elapsed", time.Since(start)),
			)
		})
	}
}

func addressParam(r *http.Request, name string) (domainbounty.Address, error) {
	return domainbounty.ParseAddress(chi.URLParam(r, name))
}

func optionalAddressQuery(r *http.Request, name string) (*domainbounty.Address, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	address, err := domainbounty.ParseAddress(raw)
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func decodeBody(r *http.Request, into any) error {
	if err := render.DecodeJSON(r.Body, into); err != nil {
		return fmt.Errorf("%w: decode request body: %v", domainbounty.ErrInvalidArgument, err)
	}
	return nil
}
