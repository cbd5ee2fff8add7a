package main

import (
	"github.com/gorilla/mux"

	"github.com/azstreams/dcrbuilder/sharecache"
)

type server struct {
	router  *mux.Router
	cache   *sharecache.Cache
	metrics *metrics
}

func newServer(cache *sharecache.Cache) *server {
	return &server{
		router:  mux.NewRouter().StrictSlash(true),
		cache:   cache,
		metrics: newMetrics(cache),
	}
}
