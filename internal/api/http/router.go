package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"podpal-backend/internal/security"
)

// NewRouter assembles the public operation surface. Auth extraction,
// serialization and status-code mapping live here; business rules do not.
func NewRouter(
	tokens security.TokenManager,
	pods *PodHandler,
	recruitment *RecruitmentHandler,
	notifications *NotificationHandler,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(mux.MiddlewareFunc(AuthMiddleware(tokens)))

	r.HandleFunc("/pods", pods.CreatePod).Methods(http.MethodPost)
	r.HandleFunc("/pods", pods.ListPods).Methods(http.MethodGet)
	r.HandleFunc("/pods/{podID:[0-9]+}", pods.GetPod).Methods(http.MethodGet)

	r.HandleFunc("/pods/{podID:[0-9]+}/applications", recruitment.Apply).Methods(http.MethodPost)
	r.HandleFunc("/pods/{podID:[0-9]+}/applications", recruitment.ListApplications).Methods(http.MethodGet)
	r.HandleFunc("/pods/{podID:[0-9]+}/leave", recruitment.Leave).Methods(http.MethodPost)
	r.HandleFunc("/applications/{applicationID:[0-9]+}/review", recruitment.Review).Methods(http.MethodPost)
	r.HandleFunc("/applications/{applicationID:[0-9]+}/hide", recruitment.Hide).Methods(http.MethodPost)
	r.HandleFunc("/applications/{applicationID:[0-9]+}", recruitment.Cancel).Methods(http.MethodDelete)

	r.HandleFunc("/notifications", notifications.List).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{notificationID:[0-9]+}/read", notifications.MarkAsRead).Methods(http.MethodPost)

	return r
}
