package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mhollis/dispatchrpc/httprpc"
	"github.com/mhollis/dispatchrpc/jsonrpc"
	"github.com/mhollis/dispatchrpc/middleware"
)

// KeyStore is a toy in-memory service exposed over JSON-RPC. Writes go
// through the RPC surface; Purge is reachable only from inside the process
// because the admin companion guards it.
type KeyStore struct {
	data  map[string]string
	admin *Admin
}

func (s *KeyStore) Get(key string, req *jsonrpc.Request) (interface{}, error) {
	value, ok := s.data[key]
	if !ok {
		return nil, jsonrpc.NewError(1, "no such key")
	}
	return value, nil
}

func (s *KeyStore) Set(key, value string, req *jsonrpc.Request) (interface{}, error) {
	s.data[key] = value
	return "ok", nil
}

func (s *KeyStore) Purge(req *jsonrpc.Request) (interface{}, error) {
	s.data = make(map[string]string)
	return "purged", nil
}

func (s *KeyStore) ProtectedHandler() interface{} {
	return s.admin
}

// Admin holds operations that must never be callable over the wire. Its
// method names join the guard set, so the KeyStore.Purge operation above is
// unreachable remotely.
type Admin struct{}

func (a *Admin) Purge() {}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	addr := os.Getenv("RPC_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	logger := middleware.NewLogger("dispatchrpc-server")

	d := &jsonrpc.Dispatcher{
		Logger: middleware.DispatchLogger{Log: logger},
	}

	store := &KeyStore{data: make(map[string]string), admin: &Admin{}}

	middleware.RegisterMetrics()
	h := httprpc.NewHandler(d, store,
		middleware.RequestLogger(logger),
		middleware.Metrics(),
		middleware.RateLimit(100, 20),
	)

	mux := http.NewServeMux()
	mux.Handle("/rpc", h)
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info().Str("addr", addr).Msg("starting server")
	log.Fatal(http.ListenAndServe(addr, mux))
}
