package main

import (
	"embed"
	"net/http"

	"github.com/matryer/way"
)

const (
	URI_WS   = "/play"
	URI_PAGE = "/"
)

//go:embed static/index.html
var static embed.FS

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", URI_PAGE, s.handlePage())
	s.router.HandleFunc("GET", URI_WS, s.GameServer.HandleHttpCall())
}

func (s *Server) handlePage() http.HandlerFunc {
	page, err := static.ReadFile("static/index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	}
}
