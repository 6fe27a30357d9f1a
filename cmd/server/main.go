package main

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"time"

	"callback-registry-api/internal/database"
	"callback-registry-api/internal/journal"
	"callback-registry-api/internal/realtime"
	"callback-registry-api/internal/registry"
	"callback-registry-api/internal/routes"
	"callback-registry-api/internal/store"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Init database (invocation journal)
	database.InitDB()

	// Default idle threshold for registered callbacks; 0 disables GC
	maxAgeSecs, err := strconv.Atoi(getEnv("REGISTRY_MAX_AGE", "3600"))
	if err != nil || maxAgeSecs < 0 {
		maxAgeSecs = 3600
	}

	// Fan registry events out to the journal, the websocket hub and the log
	recorder := journal.NewRecorder(database.GetDB())
	hub := realtime.GetHub()
	reg := registry.New(registry.Config{
		MountPrefix:   getEnv("REGISTRY_MOUNT_PREFIX", registry.DefaultMountPrefix),
		DefaultMaxAge: time.Duration(maxAgeSecs) * time.Second,
		OnEvent: func(evt registry.Event) {
			log.Printf("registry: %s %s", evt.Type, evt.Key)
			recorder.Record(evt)
			if bytes, err := json.Marshal(evt); err == nil {
				hub.Broadcast(bytes)
			}
		},
	}, store.NewMemory[*registry.Entry]())

	reg.Start()
	defer reg.Close()

	// Demo callback so the service is exercisable out of the box
	greet := func(req *registry.Request, args ...any) (registry.Fields, error) {
		name, _ := args[0].(string)
		return registry.Fields{"content": "hi " + name}, nil
	}
	addr := reg.Emit(greet, registry.Descriptor{
		Params: []registry.Param{{Name: "name", HasDefault: true, Default: "stranger"}},
	}, registry.Options{Count: 10})
	log.Printf("Demo callback registered at %s?name=Bob", addr)

	// Setup the routes (dispatch, public and protected routes)
	ginRoutes := routes.SetupRoutes(reg)

	// Start server
	port := ":8008" // This is customizable based on the environment
	log.Printf("Server starting on port %s", port)
	log.Println("API endpoints:")
	log.Printf("  ANY    %s:key", reg.MountPrefix())
	log.Println("  POST   /api/login")
	log.Println("  GET    /api/callbacks")
	log.Println("  DELETE /api/callbacks/:key")
	log.Println("  GET    /api/journal")
	log.Println("  GET    /api/stats")
	log.Println("  GET    /api/events")
	log.Println("  GET    /health")

	if err := ginRoutes.Run(port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
