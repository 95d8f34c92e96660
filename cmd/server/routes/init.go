package routes

import (
	"net/http"

	"github.com/enjoys-in/airsend-webmail/cmd/wireframe"
)

func InitRoutes(app *wireframe.AppWireframe) *http.ServeMux {
	auth := app.Handler.AuthHandler
	mail := app.Handler.MailHandler

	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", auth.Register)
	mux.HandleFunc("POST /login", auth.UserLogin)
	mux.HandleFunc("POST /logout", auth.Logout)

	mux.HandleFunc("POST /emails", auth.RequireSession(mail.Compose))
	mux.HandleFunc("GET /emails/{key}", auth.RequireSession(mail.Show))
	mux.HandleFunc("PUT /emails/{id}", auth.RequireSession(mail.Update))
	mux.HandleFunc("DELETE /emails/{id}", auth.RequireSession(mail.Delete))
	mux.HandleFunc("GET /emails/{id}/reply", auth.RequireSession(mail.Reply))
	mux.HandleFunc("GET /emails/{id}/raw", auth.RequireSession(mail.Raw))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}
