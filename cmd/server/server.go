package main

import (
	"net/http"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/fogmaze/config"
	"github.com/zucenko/fogmaze/server"
)

type Server struct {
	router     *way.Router
	GameServer *server.GameServer
}

func main() {
	cfg := config.Load()
	cfg.Apply()

	s := Server{
		GameServer: server.NewGameServer(cfg),
	}
	go s.GameServer.Loop()
	s.routes()

	log.WithFields(log.Fields{
		"port":    cfg.Port,
		"size":    cfg.Maze.Size,
		"rows":    cfg.Maze.Rows,
		"columns": cfg.Maze.Columns,
		"seeded":  cfg.Seeded,
	}).Info("maze server listening")
	log.Fatalln(http.ListenAndServe(":"+cfg.Port, s.router))
}
