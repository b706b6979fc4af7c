package finanzas

import "net/http"

// RegisterAPI registers all /api/* HTTP routes onto the provided mux.
func RegisterAPI(mux *http.ServeMux, srv *Server) {
	mux.HandleFunc("/api/health", srv.health)
	mux.HandleFunc("/api/meta", srv.meta)

	mux.HandleFunc("/api/movimientos", srv.movements)
	mux.HandleFunc("/api/movimientos/", srv.movementByID)

	for _, table := range DimensionTables {
		mux.HandleFunc("/api/"+table, srv.dimensionCollection(table))
		mux.HandleFunc("/api/"+table+"/", srv.dimensionByID(table))
	}

	mux.HandleFunc("/api/dashboard", srv.dashboard)
	mux.HandleFunc("/api/dashboard/saldos", srv.dashboardBalances)
	mux.HandleFunc("/api/dashboard/movimientos", srv.dashboardDetail)
	mux.HandleFunc("/api/export/movimientos", srv.exportMovements)
}
