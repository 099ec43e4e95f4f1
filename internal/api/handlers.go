package api

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	gwebsocket "github.com/gorilla/websocket" // Alias to avoid name conflict

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/alerting"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/auth"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/chart"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/dashboard"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/series"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/sitemap"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/websocket"
)

//go:embed templates/*.html
var templates embed.FS

var upgrader = gwebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // Allow all origins for simplicity
}

// Replayer publishes a table to the message broker.
type Replayer interface {
	Replay(ctx context.Context, t *data.Table) (int, error)
}

// Archiver stores a table in the time-series database.
type Archiver interface {
	Save(ctx context.Context, t *data.Table, batchID string) (int, error)
}

type APIHandler struct {
	service  *dashboard.Service
	defaults dashboard.Params
	hub      *websocket.Hub
	alerter  *alerting.Alerter
	auth     *auth.Manager
	replayer Replayer // nil when MQTT replay is disabled
	archiver Archiver // nil when the ClickHouse archive is disabled
	tmpl     *template.Template
	webDir   string
}

type Deps struct {
	Service  *dashboard.Service
	Defaults dashboard.Params
	Hub      *websocket.Hub
	Alerter  *alerting.Alerter
	Auth     *auth.Manager
	Replayer Replayer
	Archiver Archiver
	WebDir   string
}

func NewAPIHandler(d Deps) (*APIHandler, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"value": func(r data.Row, column string) string {
			return strconv.FormatFloat(r.Values[column], 'f', 3, 64)
		},
		"fixed": func(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) },
		"stamp": func(t time.Time) string { return t.Format(time.DateTime) },
	}).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &APIHandler{
		service:  d.Service,
		defaults: d.Defaults,
		hub:      d.Hub,
		alerter:  d.Alerter,
		auth:     d.Auth,
		replayer: d.Replayer,
		archiver: d.Archiver,
		tmpl:     tmpl,
		webDir:   d.WebDir,
	}, nil
}

// params reads the page controls from the query string, falling back to
// the configured defaults for anything missing.
func (h *APIHandler) params(r *http.Request) (dashboard.Params, error) {
	p := h.defaults
	q := r.URL.Query()

	atoi := func(key string, dst *int) error {
		s := q.Get(key)
		if s == "" {
			return nil
		}
		if key == "sensor" {
			s = strings.TrimPrefix(s, "s")
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.Join(dashboard.ErrInvalidParams, err)
		}
		*dst = n
		return nil
	}
	if err := atoi("days", &p.Days); err != nil {
		return p, err
	}
	if err := atoi("sensors", &p.Sensors); err != nil {
		return p, err
	}
	if err := atoi("sensor", &p.Sensor); err != nil {
		return p, err
	}
	if s := q.Get("variable"); s != "" {
		v, err := data.ParseVariable(s)
		if err != nil {
			return p, errors.Join(dashboard.ErrInvalidParams, err)
		}
		p.Variable = v
	}
	if s := q.Get("map"); s != "" {
		show, err := strconv.ParseBool(s)
		if err != nil {
			return p, errors.Join(dashboard.ErrInvalidParams, err)
		}
		p.ShowMap = show
	}
	return p, p.Validate(h.service.Limits())
}

// query encodes p for the links on the page so downloads and charts follow
// the same selection.
func query(p dashboard.Params) template.URL {
	v := url.Values{}
	v.Set("days", strconv.Itoa(p.Days))
	v.Set("sensors", strconv.Itoa(p.Sensors))
	v.Set("variable", string(p.Variable))
	v.Set("sensor", strconv.Itoa(p.Sensor))
	v.Set("map", strconv.FormatBool(p.ShowMap))
	return template.URL(v.Encode())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing json response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dashboard.ErrInvalidParams), errors.Is(err, series.ErrUnknownColumn):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// ServeWebUI renders the dashboard page for the requested params.
func (h *APIHandler) ServeWebUI(w http.ResponseWriter, r *http.Request) {
	p, err := h.params(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := h.service.View(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}

	page := struct {
		*dashboard.View
		Variables []data.Variable
		MaxDays   int
		Query     template.URL
	}{view, data.Variables, h.service.Limits().MaxDays, query(p)}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, "index.html", page); err != nil {
		slog.Error("executing template", "error", err)
	}
}

// HandleView returns the view model as JSON.
func (h *APIHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	p, err := h.params(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := h.service.View(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleCSV serves the readings as a file download.
func (h *APIHandler) HandleCSV(w http.ResponseWriter, r *http.Request) {
	p, err := h.params(r)
	if err != nil {
		writeError(w, err)
		return
	}
	export, err := h.service.CSV(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", data.CSVContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+data.CSVFileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.CSV)))
	w.Write(export.CSV)
}

// HandleChart renders the series ("series") or daily means ("daily") chart
// of the selected column.
func (h *APIHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	format, err := chart.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	p, err := h.params(r)
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := h.service.Table(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}

	column := p.Column()
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-cache")

	switch chi.URLParam(r, "kind") {
	case "series":
		points, err := series.Select(t, column)
		if err != nil {
			writeError(w, err)
			return
		}
		err = chart.Line(w, column, points, format)
		if err != nil {
			slog.Error("rendering line chart", "column", column, "error", err)
		}
	case "daily":
		daily, err := series.DailyMean(t, column)
		if err != nil {
			writeError(w, err)
			return
		}
		err = chart.Bar(w, "daily mean "+column, daily, format)
		if err != nil {
			slog.Error("rendering bar chart", "column", column, "error", err)
		}
	default:
		http.NotFound(w, r)
	}
}

// HandleSites serves the sensor sites as GeoJSON.
func (h *APIHandler) HandleSites(w http.ResponseWriter, r *http.Request) {
	p, err := h.params(r)
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := sitemap.GeoJSON(h.service.Sites(p))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(b)
}

// HandleRefresh drops the cached table, regenerates it, runs the anomaly
// rules and tells live clients to reload.
func (h *APIHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	p, err := h.params(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.service.Refresh(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	t, err := h.service.Table(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}

	alerts := h.service.Alerts(t)
	if h.alerter != nil {
		h.alerter.ProcessAlerts(alerts)
	}

	event := map[string]any{
		"key":          p.Key(),
		"generated_at": t.Timestamps[t.Len()-1],
		"alerts":       len(alerts),
	}
	if claims, ok := auth.FromContext(r.Context()); ok {
		event["by"] = claims.Username
	}
	if h.hub != nil {
		h.hub.BroadcastRefresh(event)
	}
	writeJSON(w, http.StatusOK, event)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin exchanges a username and password for a JWT.
func (h *APIHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<12)).Decode(&req); err != nil {
		http.Error(w, "Bad Request: Cannot parse JSON", http.StatusBadRequest)
		return
	}

	role, err := h.auth.AuthenticateUser(req.Username, req.Password)
	if err != nil {
		slog.Warn("login failed", "username", req.Username, "error", err)
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	token, err := h.auth.GenerateJWT(req.Username, role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// HandleWebSocket upgrades connections and registers clients with the hub
func (h *APIHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade error", "error", err)
		return
	}

	client := websocket.NewClient(h.hub, conn)
	h.hub.RegisterClient(client)

	// Start read/write pumps in separate goroutines
	go client.WritePump()
	go client.ReadPump() // Must run ReadPump to handle control messages (close, pong)
}

// HandleReplay publishes the current table to MQTT.
func (h *APIHandler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	if h.replayer == nil {
		http.Error(w, "MQTT replay is disabled", http.StatusServiceUnavailable)
		return
	}
	p, err := h.params(r)
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := h.service.Table(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	n, err := h.replayer.Replay(r.Context(), t)
	if err != nil {
		slog.Error("mqtt replay failed", "sent", n, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{"sent": n, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": p.Key(), "sent": n})
}

// HandleArchive writes the current table to ClickHouse.
func (h *APIHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		http.Error(w, "ClickHouse archive is disabled", http.StatusServiceUnavailable)
		return
	}
	p, err := h.params(r)
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := h.service.Table(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	batch := uuid.NewString()
	n, err := h.archiver.Save(r.Context(), t, batch)
	if err != nil {
		slog.Error("archive failed", "batch", batch, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{"batch": batch, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": p.Key(), "batch": batch, "rows": n})
}

// HandleHealth reports liveness and the number of live clients.
func (h *APIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	clients := 0
	if h.hub != nil {
		clients = h.hub.Clients()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "clients": clients})
}
