package handler

import (
	"net/http"
	"time"

	"github.com/BuzzLyutic/taskauth-api/pkg/respond"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, healthResponse{Status: "healthy", Timestamp: time.Now().UTC()})
}
