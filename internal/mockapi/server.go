package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
	"github.com/wolfman30/clinicdesk/internal/config"
	httpmiddleware "github.com/wolfman30/clinicdesk/internal/http/middleware"
	"github.com/wolfman30/clinicdesk/pkg/logging"
)

// Resources are the collections served under /{resource}.
var Resources = []string{
	"clients", "orders", "payments", "products", "resources",
	"appointments", "events", "notifications", "users",
}

// relations maps /{resource}/{segment}/{value} to the field it filters on.
var relations = map[string]string{
	"clinic": "clinicId",
	"client": "clientId",
	"order":  "orderId",
	"role":   "role",
	"date":   "startTime",
}

// required lists the fields a create must carry.
var required = map[string][]string{
	"clients":      {"firstName", "lastName"},
	"orders":       {"clientId"},
	"payments":     {"orderId", "amountCents"},
	"products":     {"name"},
	"resources":    {"name", "type"},
	"appointments": {"clientId", "service", "startTime"},
	"events":       {"title", "startTime"},
	"users":        {"email"},
}

const maxBodyBytes = 1 << 20

// Config configures the router.
type Config struct {
	Store          *Store
	Logger         *logging.Logger
	BasePath       string // defaults to /api/v1
	CORSOrigins    []string
	JWTSecret      string // empty disables bearer checks
	RateLimiter    *httpmiddleware.RateLimiter
	MetricsHandler http.Handler
	Latency        time.Duration // artificial delay per API call
	Now            func() time.Time
}

type server struct {
	store   *Store
	logger  *logging.Logger
	now     func() time.Time
	latency time.Duration

	mu          sync.Mutex
	idempotency map[string]Record
}

// NewRouter creates the chi router for the development backend.
func NewRouter(cfg Config) http.Handler {
	s := &server{
		store:       cfg.Store,
		logger:      cfg.Logger,
		now:         cfg.Now,
		latency:     cfg.Latency,
		idempotency: make(map[string]Record),
	}
	if s.store == nil {
		s.store = NewStore()
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	s.logger = s.logger.Component("mockapi")
	if s.now == nil {
		s.now = time.Now
	}
	s.store.now = s.now

	basePath := cfg.BasePath
	if basePath == "" {
		basePath = config.DefaultBasePath
	}
	basePath = "/" + strings.Trim(basePath, "/")

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"}, nil)
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route(basePath, func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
		}
		api.Use(httpmiddleware.BearerJWT(cfg.JWTSecret))
		if s.latency > 0 {
			api.Use(s.delay)
		}

		api.Get("/clinic", s.getSingleton("clinic", "clinic not configured"))
		api.Put("/clinic", s.putSingleton("clinic"))
		api.Get("/clinic/settings", s.getSingleton("settings", "settings not configured"))
		api.Put("/clinic/settings", s.putSingleton("settings"))

		api.Get("/users/me", s.me)
		api.Get("/products/low-stock", s.lowStock)
		api.Get("/events/range", s.eventsInRange)
		api.Get("/appointments/slots", s.slots)
		api.Get("/notifications/unread", s.unread)
		api.Get("/notifications/unread/count", s.unreadCount)
		api.Put("/notifications/read-all", s.readAll)
		api.Get("/reports/{kind}", s.report)

		api.Get("/{resource}", s.list)
		api.Post("/{resource}", s.create)
		api.Get("/{resource}/search", s.list)
		api.Get("/{resource}/{id}", s.get)
		api.Put("/{resource}/{id}", s.update)
		api.Patch("/{resource}/{id}", s.update)
		api.Delete("/{resource}/{id}", s.remove)
		api.Get("/{resource}/{id}/{sub}", s.nested)
		api.Put("/{resource}/{id}/{sub}", s.action)
		api.Post("/{resource}/{id}/{sub}", s.command)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "route not found: "+r.URL.Path, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path, nil)
	})
	return r
}

func (s *server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(s.latency):
		case <-r.Context().Done():
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeData(w http.ResponseWriter, status int, data any, p *apiclient.Pagination) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiclient.OK(data, p))
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	resp := apiclient.Fail[any](code, message)
	resp.Error.Details = details
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func decodeBody(w http.ResponseWriter, r *http.Request) (Record, bool) {
	rec := Record{}
	if r.Body == nil {
		return rec, true
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&rec)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body: "+err.Error(), nil)
		return nil, false
	}
	return rec, true
}

// resource validates the {resource} URL param.
func (s *server) resource(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "resource")
	for _, known := range Resources {
		if name == known {
			return name, true
		}
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown resource: "+name, nil)
	return "", false
}

func singular(resource string) string {
	return strings.TrimSuffix(resource, "s")
}

func (s *server) notFound(w http.ResponseWriter, resource, id string) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s %s not found", singular(resource), id), nil)
}

func (s *server) list(w http.ResponseWriter, r *http.Request) {
	name, ok := s.resource(w, r)
	if !ok {
		return
	}
	items, p := s.store.Find(name, ParseListQuery(r.URL.Query()))
	writeData(w, http.StatusOK, items, &p)
}

func (s *server) get(w http.ResponseWriter, r *http.Request) {
	name, ok := s.resource(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	rec, ok := s.store.Get(name, id)
	if !ok {
		s.notFound(w, name, id)
		return
	}
	writeData(w, http.StatusOK, rec, nil)
}

func (s *server) create(w http.ResponseWriter, r *http.Request) {
	name, ok := s.resource(w, r)
	if !ok {
		return
	}
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	for _, field := range required[name] {
		if v, present := body[field]; !present || v == nil || v == "" {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", field+" is required", map[string]any{"field": field})
			return
		}
	}
	delete(body, "id")
	s.applyDefaults(name, body)
	if conflict := s.conflicting(name, "", body); conflict != "" {
		writeError(w, http.StatusConflict, "CONFLICT", "time slot overlaps appointment "+conflict, map[string]any{"appointmentId": conflict})
		return
	}
	rec := s.store.Insert(name, body)
	s.logger.Debug("record created", "resource", name, "id", rec.ID())
	writeData(w, http.StatusCreated, rec, nil)
}

func (s *server) update(w http.ResponseWriter, r *http.Request) {
	name, ok := s.resource(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	existing, ok := s.store.Get(name, id)
	if !ok {
		s.notFound(w, name, id)
		return
	}
	patch, ok := decodeBody(w, r)
	if !ok {
		return
	}
	if name == "orders" {
		merged := existing.clone()
		for k, v := range patch {
			merged[k] = v
		}
		totalOrder(merged)
		for _, k := range []string{"subtotalCents", "totalCents", "items"} {
			patch[k] = merged[k]
		}
	}
	if name == "appointments" {
		merged := existing.clone()
		for k, v := range patch {
			merged[k] = v
		}
		if conflict := s.conflicting(name, id, merged); conflict != "" {
			writeError(w, http.StatusConflict, "CONFLICT", "time slot overlaps appointment "+conflict, map[string]any{"appointmentId": conflict})
			return
		}
	}
	rec, _ := s.store.Update(name, id, patch)
	writeData(w, http.StatusOK, rec, nil)
}

func (s *server) remove(w http.ResponseWriter, r *http.Request) {
	name, ok := s.resource(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if !s.store.Delete(name, id) {
		s.notFound(w, name, id)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"id": id, "deleted": true}, nil)
}

// nested serves both /{resource}/{relation}/{value} listings and
// /{resource}/{id}/{sub} sub-resources.
func (s *server) nested(w http.ResponseWriter, r *http.Request) {
	name, ok := s.resource(w, r)
	if !ok {
		return
	}
	a, b := chi.URLParam(r, "id"), chi.URLParam(r, "sub")

	if field, isRelation := relations[a]; isRelation {
		q := ParseListQuery(r.URL.Query())
		if a == "date" {
			q.Match = append(q.Match, func(rec Record) bool {
				return strings.HasPrefix(rec.String(field), b)
			})
		} else {
			q.Filters[field] = b
		}
		items, p := s.store.Find(name, q)
		writeData(w, http.StatusOK, items, &p)
		return
	}

	parent, ok := s.store.Get(name, a)
	if !ok {
		s.notFound(w, name, a)
		return
	}
	switch {
	case name == "clients" && b == "billing":
		s.billing(w, r, parent)
	case name == "resources" && b == "availability":
		s.availability(w, r, parent)
	default:
		v, present := parent[b]
		if !present {
			if name == "clients" && b == "insurance" {
				writeData(w, http.StatusOK, []any{}, nil)
				return
			}
			writeError(w, http.StatusNotFound, "NOT_FOUND", "route not found: "+r.URL.Path, nil)
			return
		}
		writeData(w, http.StatusOK, v, nil)
	}
}

// action handles PUT state transitions.
func (s *server) action(w http.ResponseWriter, r *http.Request) {
	name, ok := s.resource(w, r)
	if !ok {
		return
	}
	id, act := chi.URLParam(r, "id"), chi.URLParam(r, "sub")
	rec, ok := s.store.Get(name, id)
	if !ok {
		s.notFound(w, name, id)
		return
	}
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	var patch Record
	switch {
	case act == "status":
		status := body.String("status")
		if status == "" {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "status is required", map[string]any{"field": "status"})
			return
		}
		patch = Record{"status": status}
	case name == "appointments" && act == "cancel":
		switch rec.String("status") {
		case "cancelled", "completed", "no_show":
			writeError(w, http.StatusConflict, "INVALID_STATE", "appointment is already "+rec.String("status"), nil)
			return
		}
		patch = Record{"status": "cancelled", "cancellationReason": body.String("reason")}
	case name == "notifications" && act == "read":
		patch = Record{"read": true, "readAt": s.now().UTC().Format(time.RFC3339)}
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "route not found: "+r.URL.Path, nil)
		return
	}
	updated, _ := s.store.Update(name, id, patch)
	writeData(w, http.StatusOK, updated, nil)
}

// command handles POST operations on one record.
func (s *server) command(w http.ResponseWriter, r *http.Request) {
	name, ok := s.resource(w, r)
	if !ok {
		return
	}
	id, act := chi.URLParam(r, "id"), chi.URLParam(r, "sub")
	switch {
	case name == "payments" && act == "refund":
		s.refund(w, r, id)
	case name == "products" && act == "stock":
		s.adjustStock(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "route not found: "+r.URL.Path, nil)
	}
}

func (s *server) refund(w http.ResponseWriter, r *http.Request, id string) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	// One lock from replay lookup to update keeps the refundable check and
	// the key record atomic.
	s.mu.Lock()
	defer s.mu.Unlock()

	replayKey := ""
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		replayKey = id + "\x00" + key
		if prior, seen := s.idempotency[replayKey]; seen {
			writeData(w, http.StatusOK, prior, nil)
			return
		}
	}

	payment, ok := s.store.Get("payments", id)
	if !ok {
		s.notFound(w, "payments", id)
		return
	}
	amount := body.Int("amountCents")
	refundable := payment.Int("amountCents") - payment.Int("refundedCents")
	if amount <= 0 || amount > refundable {
		writeError(w, http.StatusUnprocessableEntity, "INVALID_REFUND",
			fmt.Sprintf("refund must be between 1 and %d cents", refundable),
			map[string]any{"refundableCents": refundable})
		return
	}

	refunded := payment.Int("refundedCents") + amount
	status := "partially_refunded"
	if refunded == payment.Int("amountCents") {
		status = "refunded"
	}
	updated, _ := s.store.Update("payments", id, Record{"refundedCents": refunded, "status": status})
	if replayKey != "" {
		s.idempotency[replayKey] = updated
	}
	s.logger.Info("payment refunded", "payment_id", id, "amount_cents", amount, "status", status)
	writeData(w, http.StatusOK, updated, nil)
}

func (s *server) adjustStock(w http.ResponseWriter, r *http.Request, id string) {
	product, ok := s.store.Get("products", id)
	if !ok {
		s.notFound(w, "products", id)
		return
	}
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	delta := body.Int("delta")
	if delta == 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "delta must be non-zero", map[string]any{"field": "delta"})
		return
	}
	qty := product.Int("stockQuantity") + delta
	if qty < 0 {
		writeError(w, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK",
			fmt.Sprintf("only %d in stock", product.Int("stockQuantity")), nil)
		return
	}
	updated, _ := s.store.Update("products", id, Record{"stockQuantity": qty})
	writeData(w, http.StatusOK, updated, nil)
}

func (s *server) getSingleton(collection, missing string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		all := s.store.All(collection)
		if len(all) == 0 {
			writeError(w, http.StatusNotFound, "NOT_FOUND", missing, nil)
			return
		}
		writeData(w, http.StatusOK, all[0], nil)
	}
}

func (s *server) putSingleton(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := decodeBody(w, r)
		if !ok {
			return
		}
		all := s.store.All(collection)
		if len(all) == 0 {
			writeData(w, http.StatusOK, s.store.Insert(collection, body), nil)
			return
		}
		rec, _ := s.store.Update(collection, all[0].ID(), body)
		writeData(w, http.StatusOK, rec, nil)
	}
}

// me resolves the caller from the bearer subject, or the first admin when
// auth is disabled.
func (s *server) me(w http.ResponseWriter, r *http.Request) {
	if claims, ok := httpmiddleware.ClaimsFromContext(r.Context()); ok && claims.Subject != "" {
		if u, found := s.store.Get("users", claims.Subject); found {
			writeData(w, http.StatusOK, u, nil)
			return
		}
		writeError(w, http.StatusNotFound, "NOT_FOUND", "user "+claims.Subject+" not found", nil)
		return
	}
	users := s.store.All("users")
	for _, u := range users {
		if u.String("role") == "admin" {
			writeData(w, http.StatusOK, u, nil)
			return
		}
	}
	if len(users) > 0 {
		writeData(w, http.StatusOK, users[0], nil)
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "no users configured", nil)
}

func (s *server) lowStock(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r.URL.Query())
	q.Match = append(q.Match, func(rec Record) bool {
		return rec.Int("stockQuantity") <= rec.Int("reorderLevel")
	})
	items, p := s.store.Find("products", q)
	writeData(w, http.StatusOK, items, &p)
}

func (s *server) eventsInRange(w http.ResponseWriter, r *http.Request) {
	start, okStart := parseInstant(r.URL.Query().Get("start"))
	end, okEnd := parseInstant(r.URL.Query().Get("end"))
	if !okStart || !okEnd {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "start and end are required", nil)
		return
	}
	q := ParseListQuery(r.URL.Query())
	q.Match = append(q.Match, func(rec Record) bool {
		evStart, ok := rec.Time("startTime")
		if !ok {
			return false
		}
		evEnd, ok := rec.Time("endTime")
		if !ok {
			evEnd = evStart
		}
		return evStart.Before(end) && !evEnd.Before(start)
	})
	items, p := s.store.Find("events", q)
	writeData(w, http.StatusOK, items, &p)
}

func (s *server) unread(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r.URL.Query())
	q.Match = append(q.Match, func(rec Record) bool { return !rec.Bool("read") })
	items, p := s.store.Find("notifications", q)
	writeData(w, http.StatusOK, items, &p)
}

func (s *server) unreadCount(w http.ResponseWriter, _ *http.Request) {
	count := 0
	for _, n := range s.store.All("notifications") {
		if !n.Bool("read") {
			count++
		}
	}
	writeData(w, http.StatusOK, map[string]int{"count": count}, nil)
}

func (s *server) readAll(w http.ResponseWriter, _ *http.Request) {
	ts := s.now().UTC().Format(time.RFC3339)
	updated := 0
	for _, n := range s.store.All("notifications") {
		if n.Bool("read") {
			continue
		}
		s.store.Update("notifications", n.ID(), Record{"read": true, "readAt": ts})
		updated++
	}
	writeData(w, http.StatusOK, map[string]int{"updated": updated}, nil)
}

func (s *server) applyDefaults(name string, rec Record) {
	setDefault := func(k string, v any) {
		if _, ok := rec[k]; !ok {
			rec[k] = v
		}
	}
	switch name {
	case "clients":
		setDefault("status", "active")
	case "orders":
		setDefault("status", "pending")
		setDefault("orderNumber", fmt.Sprintf("ORD-%d", s.now().UnixNano()%1_000_000))
		totalOrder(rec)
	case "payments":
		setDefault("status", "completed")
		setDefault("currency", "USD")
		setDefault("refundedCents", 0)
		setDefault("paidAt", s.now().UTC().Format(time.RFC3339))
	case "products":
		setDefault("active", true)
		setDefault("stockQuantity", 0)
		setDefault("reorderLevel", 0)
	case "resources":
		setDefault("status", "available")
	case "appointments":
		setDefault("status", "scheduled")
		if _, ok := rec["endTime"]; !ok {
			if start, ok := rec.Time("startTime"); ok {
				rec["endTime"] = start.Add(30 * time.Minute).UTC().Format(time.RFC3339)
			}
		}
	case "events":
		setDefault("type", "other")
		setDefault("allDay", false)
		setDefault("endTime", rec["startTime"])
	case "notifications":
		setDefault("read", false)
		setDefault("type", "info")
	case "users":
		setDefault("role", "staff")
		setDefault("active", true)
	}
}

// totalOrder fills item totals and the order subtotal and total.
func totalOrder(rec Record) {
	items, _ := rec["items"].([]any)
	var subtotal int64
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		line := Record(item)
		total := line.Int("quantity") * line.Int("unitPriceCents")
		line["totalCents"] = total
		subtotal += total
	}
	if items == nil {
		items = []any{}
	}
	rec["items"] = items
	rec["subtotalCents"] = subtotal
	total := subtotal + rec.Int("taxCents") - rec.Int("discountCents")
	if total < 0 {
		total = 0
	}
	rec["totalCents"] = total
	if _, ok := rec["taxCents"]; !ok {
		rec["taxCents"] = 0
	}
	if _, ok := rec["discountCents"]; !ok {
		rec["discountCents"] = 0
	}
}

// conflicting returns the id of an active appointment for the same provider
// that overlaps rec, skipping selfID.
func (s *server) conflicting(name, selfID string, rec Record) string {
	if name != "appointments" || rec.String("providerId") == "" || !activeStatus(rec.String("status")) {
		return ""
	}
	start, ok := rec.Time("startTime")
	if !ok {
		return ""
	}
	end, ok := rec.Time("endTime")
	if !ok {
		end = start.Add(30 * time.Minute)
	}
	for _, other := range s.store.All("appointments") {
		if other.ID() == selfID || other.String("providerId") != rec.String("providerId") || !activeStatus(other.String("status")) {
			continue
		}
		oStart, ok1 := other.Time("startTime")
		oEnd, ok2 := other.Time("endTime")
		if ok1 && ok2 && start.Before(oEnd) && oStart.Before(end) {
			return other.ID()
		}
	}
	return ""
}

func activeStatus(status string) bool {
	switch status {
	case "cancelled", "no_show", "completed":
		return false
	}
	return true
}
