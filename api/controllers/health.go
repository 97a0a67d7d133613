package controllers

import (
	"net/http"

	"github.com/veronalabs/restops-backend/api/responses"
	"github.com/veronalabs/restops-backend/pkg/config"
)

func Healthz(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"status": "ok",
			"env":    cfg.App.Env,
		})
	}
}
