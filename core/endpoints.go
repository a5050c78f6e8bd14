package core

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	ex "cryptostats/data/extensions"
	m "cryptostats/data/models"
	sm "cryptostats/models"
)

const (
	DefaultAddr = ":8080"
	defaultTop  = 20
)

func GetHttpServer(sc *ServiceContext, addr string) *http.Server {
	if addr == "" {
		addr = DefaultAddr
	}

	return &http.Server{
		Addr:           addr,
		Handler:        GetRouter(sc),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}

func GetRouter(sc *ServiceContext) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/ping", ping)
		r.Get("/rankings", func(w http.ResponseWriter, r *http.Request) { rankings(w, r, sc) })
		r.Get("/statistics", func(w http.ResponseWriter, r *http.Request) { statistics(w, r, sc) })
	})

	return r
}

func ping(w http.ResponseWriter, r *http.Request) {
	msg := "pong"
	render.JSON(w, r, sm.GetServiceResponseOk(&msg))
}

func rankings(w http.ResponseWriter, r *http.Request, sc *ServiceContext) {
	n := defaultTop
	if s := r.URL.Query().Get("n"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, r, ex.InvalidInputf("n %q is not a number", s))
			return
		}
		n = v
	}

	ranks, err := sc.GetTopByMarketCap(n)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, sm.GetServiceResponseOk(&ranks))
}

func statistics(w http.ResponseWriter, r *http.Request, sc *ServiceContext) {
	q := r.URL.Query()
	req := sm.StatisticsRequest{
		Start: q.Get("start"),
		End:   q.Get("end"),
	}

	store, err := sc.LoadStore(q.Get("source"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := sc.ComputeMonthlyStatistics(store, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, sm.GetServiceResponseOk[m.MonthlyStatistics](res))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := http.StatusInternalServerError, sm.KindInternal
	switch {
	case errors.Is(err, ex.ErrInvalidInput), errors.Is(err, ex.ErrLengthMismatch):
		status, kind = http.StatusBadRequest, sm.KindInvalidInput
	case errors.Is(err, ex.ErrMissingData):
		status, kind = http.StatusUnprocessableEntity, sm.KindMissingData
	case errors.Is(err, ex.ErrNetwork):
		status, kind = http.StatusBadGateway, sm.KindUpstream
	}

	render.Status(r, status)
	render.JSON(w, r, sm.GetServiceResponseError(kind, err))
}
