package finanzas

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/DarkGhons/paginaweb-finanzas/internal/logger"
)

// Server holds the HTTP handlers over a Store. The dimension resolver is
// shared so repeated dashboard hits do not reload the category table.
type Server struct {
	store    Store
	resolver *Resolver
	cfg      Config
	log      zerolog.Logger
	now      func() time.Time
}

func NewServer(store Store, cfg Config, log zerolog.Logger) *Server {
	return &Server{
		store:    store,
		resolver: NewResolver(store),
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{
		"status":  "OK",
		"message": "Servidor funcionando correctamente",
	})
}

func (s *Server) meta(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{
		"ok":                   true,
		"tablas":               Schemas,
		"dimensiones":          DimensionTables,
		"tipo_flujo":           FlowTypes,
		"categoria_patrimonio": s.cfg.EquityCategory,
	})
}

// normalizeToSchema keeps only declared columns, so stray payload keys never
// reach storage.
func normalizeToSchema(schema Schema, rec Record) Record {
	out := make(Record, len(schema.Fields))
	for _, f := range schema.Fields {
		if v, ok := rec[f.Name]; ok {
			out[f.Name] = v
		}
	}
	return out
}

// deriveDateParts refreshes the denormalized mes/anio columns from fecha.
func deriveDateParts(rec Record) {
	d := rec.Date()
	if d.IsZero() {
		return
	}
	rec["mes"] = strconv.Itoa(int(d.Month()))
	rec["anio"] = strconv.Itoa(d.Year())
}

// listTable serves a table's rows with optional search and pagination.
func (s *Server) listTable(w http.ResponseWriter, r *http.Request, table string) {
	reqLog := logger.FromContext(r.Context())
	records, err := s.store.List(r.Context(), table)
	if err != nil {
		writeErr(w, serverError(reqLog, "error al cargar los registros", err))
		return
	}
	d := NewDataset(Schemas[table], records)
	d.Search(r.URL.Query().Get("q"))

	rows := d.Filtered
	page := 1
	if r.URL.Query().Has("pagina") || r.URL.Query().Has("por_pagina") {
		page = queryInt(r, "pagina", 1)
		rows = d.Page(page, queryInt(r, "por_pagina", 10))
	}
	writeOK(w, map[string]any{
		"registros": rows,
		"total":     len(d.Records),
		"filtrados": len(d.Filtered),
		"pagina":    page,
	})
}

func (s *Server) movements(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTable(w, r, TableMovements)
	case http.MethodPost:
		s.createMovement(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) createMovement(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.FromContext(r.Context())
	schema := Schemas[TableMovements]

	body, e := readRecord(r)
	if e != nil {
		writeErr(w, e)
		return
	}
	rec := normalizeToSchema(schema, body)
	delete(rec, schema.IDField) // the backend is authoritative for IDs

	if v := ValidateRecord(schema, rec); !v.OK {
		writeErr(w, badRequest(v.Message, nil))
		return
	}
	if _, e := requireDate(rec.Get("fecha"), "fecha"); e != nil {
		writeErr(w, e)
		return
	}

	existing, err := s.store.List(r.Context(), TableMovements)
	if err != nil {
		writeErr(w, serverError(reqLog, "error al cargar los movimientos", err))
		return
	}
	rec[schema.IDField] = NextMovementID(existing, schema.IDField, s.now())
	deriveDateParts(rec)

	msg := "Movimiento creado exitosamente"
	if err := s.store.Insert(r.Context(), TableMovements, rec); err != nil {
		if !errors.Is(err, ErrSavedLocally) {
			writeErr(w, serverError(reqLog, "error al guardar el movimiento", err))
			return
		}
		msg = "Movimiento agregado localmente (sin sincronizar)"
	}
	reqLog.Info().Str("mov_id", rec.Get(schema.IDField)).Msg("movement created")
	writeCreated(w, map[string]any{"mov_id": rec.Get(schema.IDField)}, msg)
}

func (s *Server) movementByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDFromPath("/api/movimientos/", r.URL.Path)
	if !ok {
		writeErr(w, notFound("no encontrado"))
		return
	}
	switch r.Method {
	case http.MethodPut:
		s.updateRecord(w, r, TableMovements, id,
			"Movimiento actualizado exitosamente",
			"Movimiento actualizado localmente (sin sincronizar)")
	case http.MethodDelete:
		s.deleteRecord(w, r, TableMovements, id,
			"Movimiento eliminado exitosamente",
			"Movimiento eliminado localmente (sin sincronizar)")
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) updateRecord(w http.ResponseWriter, r *http.Request, table, id, okMsg, localMsg string) {
	reqLog := logger.FromContext(r.Context())
	schema := Schemas[table]

	body, e := readRecord(r)
	if e != nil {
		writeErr(w, e)
		return
	}
	changes := normalizeToSchema(schema, body)
	delete(changes, schema.IDField)

	records, err := s.store.List(r.Context(), table)
	if err != nil {
		writeErr(w, serverError(reqLog, "error al cargar los registros", err))
		return
	}
	existing, _ := NewDataset(schema, records).Find(id)
	if existing == nil {
		writeErr(w, notFound("registro no encontrado"))
		return
	}

	merged := existing.Clone()
	for k, v := range changes {
		merged[k] = v
	}
	if v := ValidateRecord(schema, merged); !v.OK {
		writeErr(w, badRequest(v.Message, nil))
		return
	}
	if _, touched := changes["fecha"]; touched {
		if _, e := requireDate(merged.Get("fecha"), "fecha"); e != nil {
			writeErr(w, e)
			return
		}
		deriveDateParts(merged)
		changes["mes"] = merged["mes"]
		changes["anio"] = merged["anio"]
	}

	msg := okMsg
	found, err := s.store.Update(r.Context(), table, id, changes)
	if err != nil {
		if !errors.Is(err, ErrSavedLocally) {
			writeErr(w, serverError(reqLog, "error al guardar el registro", err))
			return
		}
		msg = localMsg
	}
	if !found {
		writeErr(w, notFound("registro no encontrado"))
		return
	}
	if IsDimension(table) {
		s.resolver.Invalidate(table)
	}
	writeMessage(w, msg)
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request, table, id, okMsg, localMsg string) {
	reqLog := logger.FromContext(r.Context())

	msg := okMsg
	found, err := s.store.Delete(r.Context(), table, id)
	if err != nil {
		if !errors.Is(err, ErrSavedLocally) {
			writeErr(w, serverError(reqLog, "error al guardar los cambios", err))
			return
		}
		msg = localMsg
	}
	if !found {
		writeErr(w, notFound("registro no encontrado"))
		return
	}
	if IsDimension(table) {
		s.resolver.Invalidate(table)
	}
	reqLog.Info().Str("tabla", table).Str("id", id).Msg("record deleted")
	writeMessage(w, msg)
}

func (s *Server) dimensionCollection(table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.listTable(w, r, table)
		case http.MethodPost:
			s.createDimensionRecord(w, r, table)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) createDimensionRecord(w http.ResponseWriter, r *http.Request, table string) {
	reqLog := logger.FromContext(r.Context())
	schema := Schemas[table]

	body, e := readRecord(r)
	if e != nil {
		writeErr(w, e)
		return
	}
	rec := normalizeToSchema(schema, body)

	if v := ValidateRecord(schema, rec); !v.OK {
		writeErr(w, badRequest(v.Message, nil))
		return
	}
	if table == TableCategories && !validFlowType(rec.Get("tipo_flujo")) {
		writeErr(w, badRequest("tipo_flujo no válido", map[string]any{"valores": FlowTypes}))
		return
	}

	records, err := s.store.List(r.Context(), table)
	if err != nil {
		writeErr(w, serverError(reqLog, "error al cargar los registros", err))
		return
	}
	id := rec.Get(schema.IDField)
	if id == "" {
		id = NextDimensionID(records, schema.IDField, schema.IDPrefix)
		rec[schema.IDField] = id
	} else if existing, _ := NewDataset(schema, records).Find(id); existing != nil {
		writeErr(w, badRequest(fmt.Sprintf("identificador duplicado: %s", id), nil))
		return
	}

	msg := fmt.Sprintf("Registro creado en %s", table)
	if err := s.store.Insert(r.Context(), table, rec); err != nil {
		if !errors.Is(err, ErrSavedLocally) {
			writeErr(w, serverError(reqLog, "error al guardar el registro", err))
			return
		}
		msg = "Registro agregado localmente (sin sincronizar)"
	}
	s.resolver.Invalidate(table)
	reqLog.Info().Str("tabla", table).Str("id", id).Msg("dimension record created")
	writeCreated(w, map[string]any{schema.IDField: id}, msg)
}

func validFlowType(v string) bool {
	for _, ft := range FlowTypes {
		if v == ft {
			return true
		}
	}
	return false
}

func (s *Server) dimensionByID(table string) http.HandlerFunc {
	prefix := "/api/" + table + "/"
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDFromPath(prefix, r.URL.Path)
		if !ok {
			writeErr(w, notFound("no encontrado"))
			return
		}
		switch r.Method {
		case http.MethodPut:
			s.updateRecord(w, r, table, id,
				fmt.Sprintf("Registro actualizado en %s", table),
				"Registro actualizado localmente (sin sincronizar)")
		case http.MethodDelete:
			s.deleteRecord(w, r, table, id,
				fmt.Sprintf("Registro eliminado de %s", table),
				"Registro eliminado localmente (sin sincronizar)")
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) loadMovementsAndCategories(ctx context.Context) ([]Record, []Record, error) {
	movs, err := s.store.List(ctx, TableMovements)
	if err != nil {
		return nil, nil, err
	}
	cats, err := s.resolver.Dimension(ctx, TableCategories)
	if err != nil {
		return nil, nil, err
	}
	return movs, cats, nil
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	reqLog := logger.FromContext(r.Context())
	year := queryInt(r, "anio", s.now().Year())

	movs, cats, err := s.loadMovementsAndCategories(r.Context())
	if err != nil {
		writeErr(w, serverError(reqLog, "error al calcular el dashboard", err))
		return
	}
	sum := NewAggregator(cats, s.cfg.EquityCategory).Summarize(movs, year)

	months := make([]map[string]any, len(sum.Months))
	for i, m := range sum.Months {
		months[i] = map[string]any{
			"mes":      m.Month,
			"ingresos": m.Income.StringFixed(2),
			"gastos":   m.Expense.StringFixed(2),
		}
	}
	top := make([]map[string]any, len(sum.Top))
	for i, c := range sum.Top {
		top[i] = map[string]any{
			"categoria": c.Name,
			"total":     c.Total.StringFixed(2),
		}
	}
	writeOK(w, map[string]any{
		"anio":           sum.Year,
		"ingresos":       sum.Income.StringFixed(2),
		"gastos":         sum.Expense.StringFixed(2),
		"patrimonio":     sum.Equity.StringFixed(2),
		"saldo":          sum.Balance.StringFixed(2),
		"serie_mensual":  months,
		"top_categorias": top,
	})
}

func (s *Server) dashboardBalances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	reqLog := logger.FromContext(r.Context())
	dimension := r.URL.Query().Get("dimension")
	if !IsDimension(dimension) {
		writeErr(w, badRequest("dimensión no válida", map[string]any{"dimensiones": DimensionTables}))
		return
	}

	movs, err := s.store.List(r.Context(), TableMovements)
	if err != nil {
		writeErr(w, serverError(reqLog, "error al cargar los movimientos", err))
		return
	}
	dims, err := s.resolver.Dimension(r.Context(), dimension)
	if err != nil {
		writeErr(w, serverError(reqLog, "error al cargar la dimensión", err))
		return
	}
	summary, err := BalancesByDimension(movs, dims, dimension)
	if err != nil {
		writeErr(w, serverError(reqLog, "error al calcular los saldos", err))
		return
	}

	rows := make([]map[string]any, len(summary.Rows))
	for i, row := range summary.Rows {
		rows[i] = map[string]any{
			"id":         row.ID,
			"nombre":     row.Name,
			"saldo":      row.Total.StringFixed(2),
			"porcentaje": row.Percent,
		}
	}
	writeOK(w, map[string]any{
		"dimension":     summary.Dimension,
		"saldos":        rows,
		"total_general": summary.Total.StringFixed(2),
	})
}

func (s *Server) dashboardDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	reqLog := logger.FromContext(r.Context())
	q := r.URL.Query()
	dimension := q.Get("dimension")
	if !IsDimension(dimension) {
		writeErr(w, badRequest("dimensión no válida", map[string]any{"dimensiones": DimensionTables}))
		return
	}
	id := q.Get("id")
	if id == "" {
		writeErr(w, badRequest("id es obligatorio", nil))
		return
	}

	movs, cats, err := s.loadMovementsAndCategories(r.Context())
	if err != nil {
		writeErr(w, serverError(reqLog, "error al cargar el detalle", err))
		return
	}
	filtered := FilterByDimension(movs, dimension, id)
	months := MonthKeys(filtered)

	month := q.Get("mes")
	if month == "" && len(months) > 0 {
		month = months[0] // most recent month by default
	}
	detail := NewAggregator(cats, s.cfg.EquityCategory).
		DetailForMonth(filtered, month, queryInt(r, "limite", DetailPageSize))

	writeOK(w, map[string]any{
		"dimension":   dimension,
		"id":          id,
		"meses":       months,
		"mes":         detail.Month,
		"movimientos": detail.Rows,
		"total":       detail.Count,
		"restantes":   detail.Remaining,
		"ingresos":    detail.Income.StringFixed(2),
		"gastos":      detail.Expense.StringFixed(2),
		"saldo_mes":   detail.Balance.StringFixed(2),
	})
}

func (s *Server) exportMovements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	reqLog := logger.FromContext(r.Context())
	format := r.URL.Query().Get("formato")
	enc, ok := ExportEncoderFor(format)
	if !ok {
		writeErr(w, badRequest("formato no soportado", map[string]any{"formatos": []string{"csv", "json", "yaml"}}))
		return
	}
	if format == "" {
		format = "csv"
	}

	movs, cats, err := s.loadMovementsAndCategories(r.Context())
	if err != nil {
		writeErr(w, serverError(reqLog, "error al cargar los movimientos", err))
		return
	}
	b, err := enc.EncodeRows(BuildExportRows(movs, cats))
	if err != nil {
		writeErr(w, serverError(reqLog, "error al exportar los movimientos", err))
		return
	}
	w.Header().Set("Content-Type", enc.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename=movimientos."+format)
	_, _ = w.Write(b)
}
