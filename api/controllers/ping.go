package controllers

import (
	"net/http"

	"github.com/angelmondragon/carbon-ledger/api/responses"
)

func Ping() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteText(w, "pong!")
	}
}
