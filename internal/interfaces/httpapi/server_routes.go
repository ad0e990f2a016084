package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metrics http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/auth/login", handler.Login)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	auth := func(fn http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, fn)
	}

	mux.Handle("GET /v1/me", auth(handler.GetMe))
	mux.Handle("GET /v1/me/settings", auth(handler.GetSettings))
	mux.Handle("PUT /v1/me/settings", auth(handler.UpdateSettings))

	mux.Handle("GET /v1/dashboard", auth(handler.GetDashboard))

	mux.Handle("GET /v1/committees", auth(handler.ListCommittees))
	mux.Handle("POST /v1/committees", auth(handler.CreateCommittee))
	mux.Handle("GET /v1/committees/{committeeID}", auth(handler.GetCommittee))
	mux.Handle("PUT /v1/committees/{committeeID}", auth(handler.UpdateCommittee))
	mux.Handle("DELETE /v1/committees/{committeeID}", auth(handler.DeleteCommittee))
	mux.Handle("POST /v1/committees/{committeeID}/archive", auth(handler.ArchiveCommittee))

	mux.Handle("GET /v1/committees/{committeeID}/payments", auth(handler.ListPayments))
	mux.Handle("POST /v1/committees/{committeeID}/payments/toggle", auth(handler.TogglePayment))
	mux.Handle("GET /v1/committees/{committeeID}/cycles/{cycle}", auth(handler.GetCycleStatus))

	mux.Handle("GET /v1/committees/{committeeID}/candidates", auth(handler.ListCandidates))
	mux.Handle("GET /v1/committees/{committeeID}/draws", auth(handler.ListDraws))
	mux.Handle("POST /v1/committees/{committeeID}/draws", auth(handler.RunDraw))
	mux.Handle("POST /v1/committees/{committeeID}/draws/record", auth(handler.RecordDraw))

	mux.Handle("GET /v1/committees/{committeeID}/report", auth(handler.GetReport))
	mux.Handle("GET /v1/committees/{committeeID}/report.csv", auth(handler.ExportReportCSV))
	mux.Handle("GET /v1/committees/{committeeID}/reminders", auth(handler.ListReminders))
	mux.Handle("GET /v1/committees/{committeeID}/summary", auth(handler.GetSummary))
}
