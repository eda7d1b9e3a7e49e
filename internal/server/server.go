// Package server exposes an engine.Executor over a small JSON HTTP API.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
	"github.com/zakazai/tinysql/internal/engine"
	"github.com/zakazai/tinysql/internal/planner"
	"github.com/zakazai/tinysql/internal/storage"
	"github.com/zakazai/tinysql/internal/types"
)

// MirrorSource reads tables back from a columnar mirror.
type MirrorSource interface {
	ReadMirror(t *storage.Table) ([]types.Row, error)
	GetLastSyncTime() time.Time
}

// Server routes HTTP requests to the executor. Statements posted to /query
// go through the planner instead.
type Server struct {
	exec    *engine.Executor
	planner *planner.Planner
	logger  *types.Logger
	router  *mux.Router
	mirror  MirrorSource
}

// New creates a server and registers its routes.
func New(exec *engine.Executor, p *planner.Planner, logger *types.Logger) *Server {
	if logger == nil {
		logger = types.GlobalLogger
	}
	s := &Server{exec: exec, planner: p, logger: logger, router: mux.NewRouter()}

	s.router.HandleFunc("/tables", s.handleCreateTable).Methods(http.MethodPost)
	s.router.HandleFunc("/tables", s.handleListTables).Methods(http.MethodGet)
	s.router.HandleFunc("/tables/{name}/rows", s.handleInsert).Methods(http.MethodPost)
	s.router.HandleFunc("/tables/{name}/rows", s.handleSelect).Methods(http.MethodGet)
	s.router.HandleFunc("/tables/{name}/aggregate", s.handleAggregate).Methods(http.MethodGet)
	s.router.HandleFunc("/tables/{name}/mirror", s.handleMirror).Methods(http.MethodGet)
	s.router.HandleFunc("/join", s.handleJoin).Methods(http.MethodGet)
	s.router.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)
	s.router.Use(s.logRequests)
	return s
}

// WithMirror enables GET /tables/{name}/mirror, served from m.
func (s *Server) WithMirror(m MirrorSource) *Server {
	s.mirror = m
	return s
}

// Handler returns the router wrapped in gzip response compression.
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.router)
}

type columnRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type createTableRequest struct {
	Name    string          `json:"name"`
	Columns []columnRequest `json:"columns"`
}

type insertRequest struct {
	Values []interface{} `json:"values"`
}

type queryRequest struct {
	Statement string `json:"statement"`
}

type rowResponse struct {
	ID     uint64                 `json:"id"`
	Values map[string]interface{} `json:"values"`
}

type rowsResponse struct {
	Columns []string      `json:"columns"`
	Rows    []rowResponse `json:"rows"`
}

type mirrorResponse struct {
	rowsResponse
	LastSync string `json:"last_sync,omitempty"`
}

type insertResponse struct {
	RowID     uint64 `json:"row_id"`
	Persisted bool   `json:"persisted"`
	Message   string `json:"message"`
}

type queryResponse struct {
	Message   string        `json:"message"`
	Columns   []string      `json:"columns,omitempty"`
	Rows      []rowResponse `json:"rows,omitempty"`
	Aggregate *float64      `json:"aggregate,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Name == "" {
		s.writeError(w, types.Errorf(types.KindParseError, "table name is required"))
		return
	}

	columns := make([]types.Column, len(req.Columns))
	for i, col := range req.Columns {
		dt, err := types.ParseDataType(col.Type)
		if err != nil {
			s.writeError(w, err)
			return
		}
		columns[i] = types.Column{Name: col.Name, Type: dt}
	}

	if err := s.exec.Create(req.Name, columns); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "table " + req.Name + " created"})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"tables": s.exec.Tables()})
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req insertRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	values := make([]types.Value, len(req.Values))
	for i, raw := range req.Values {
		v, err := valueFromJSON(raw)
		if err != nil {
			s.writeError(w, err)
			return
		}
		values[i] = v
	}

	res, err := s.exec.Insert(name, values)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, insertResponse{RowID: res.RowID, Persisted: res.Persisted, Message: res.Message})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	q := r.URL.Query()

	pred, err := predicateFromQuery(q.Get("column"), q.Get("op"), q.Get("value"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	t, err := s.exec.Table(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rows, err := s.exec.Select(name, pred)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rowsResponse{Columns: columnNames(t), Rows: encodeRows(rows)})
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	q := r.URL.Query()

	fn := q.Get("fn")
	if fn == "" {
		s.writeError(w, types.Errorf(types.KindParseError, "fn is required"))
		return
	}
	pred, err := predicateFromQuery(q.Get("where"), q.Get("op"), q.Get("value"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.exec.Aggregate(name, q.Get("column"), fn, pred)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"result": result})
}

func (s *Server) handleMirror(w http.ResponseWriter, r *http.Request) {
	if s.mirror == nil {
		s.writeError(w, types.Errorf(types.KindNotFound, "parquet mirror is not enabled"))
		return
	}
	t, err := s.exec.Table(mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	rows, err := s.mirror.ReadMirror(t)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := mirrorResponse{rowsResponse: rowsResponse{Columns: columnNames(t), Rows: encodeRows(rows)}}
	if synced := s.mirror.GetLastSyncTime(); !synced.IsZero() {
		resp.LastSync = synced.UTC().Format(time.RFC3339Nano)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	left, right := q.Get("left"), q.Get("right")

	rows, err := s.exec.Join(left, right, q.Get("left_column"), q.Get("right_column"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	lt, err := s.exec.Table(left)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rt, err := s.exec.Table(right)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rowsResponse{Columns: engine.JoinColumns(lt, rt), Rows: encodeRows(rows)})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	out, err := s.planner.ExecuteSQL(req.Statement)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Message:   out.Message,
		Columns:   out.Columns,
		Rows:      encodeRows(out.Rows),
		Aggregate: out.Aggregate,
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("%s %s", r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}

// StatusFor maps an error to the HTTP status reported for it.
func StatusFor(err error) int {
	switch types.KindOf(err) {
	case types.KindNotFound:
		return http.StatusNotFound
	case types.KindAlreadyExists:
		return http.StatusConflict
	case types.KindIOFailure, 0:
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeJSON encodes body before touching w, so an unencodable body becomes
// a 500 instead of a truncated 200.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(errorResponse{Error: "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return types.Wrapf(types.KindParseError, err, "invalid request body")
	}
	return nil
}

func predicateFromQuery(column, op, value string) (*engine.Predicate, error) {
	if column == "" {
		return nil, nil
	}
	if op == "" {
		op = string(engine.OpEqual)
	}
	parsed, err := engine.ParseOperator(op)
	if err != nil {
		return nil, err
	}
	return &engine.Predicate{Column: column, Op: parsed, Literal: value}, nil
}

// valueFromJSON maps a decoded JSON value onto a Value. Whole numbers become
// Integer and other numbers Double; the executor coerces them to the column
// type afterwards.
func valueFromJSON(raw interface{}) (types.Value, error) {
	switch v := raw.(type) {
	case nil:
		return types.Null(), nil
	case bool:
		return types.BooleanValue(v), nil
	case string:
		return types.TextValue(v), nil
	case json.Number:
		if !strings.ContainsAny(v.String(), ".eE") {
			if n, err := v.Int64(); err == nil {
				return types.IntegerValue(n), nil
			}
		}
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return types.Null(), types.Wrapf(types.KindParseError, err, "invalid number %s", v)
		}
		return types.DoubleValue(f), nil
	}
	return types.Null(), types.Errorf(types.KindSchemaMismatch, "unsupported JSON value %v", raw)
}

func columnNames(t *storage.Table) []string {
	columns := make([]string, 0)
	for _, col := range t.Columns() {
		columns = append(columns, col.Name)
	}
	return columns
}

func encodeRows(rows []types.Row) []rowResponse {
	out := make([]rowResponse, len(rows))
	for i, row := range rows {
		values := make(map[string]interface{}, len(row.Values))
		for k, v := range row.Values {
			values[k] = v.Native()
		}
		out[i] = rowResponse{ID: row.ID, Values: values}
	}
	return out
}
