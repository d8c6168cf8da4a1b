// @title           TaskHub Project Service
// @version         1.0
// @description     CRUD over the caller's projects, plus batched name resolution.
// @BasePath        /

package main

import (
	"context"
	"log"
	"net/http"
	"os"

	gorilla "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"taskhub/db"
	"taskhub/handlers"
	"taskhub/middlewares"
	"taskhub/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process env")
	}
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET not set")
	}

	pool, err := db.Connect(context.Background())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	projects := handlers.NewProjectHandler(repository.NewProjectRepository(pool))

	r := mux.NewRouter()
	r.HandleFunc("/health", handlers.Health).Methods("GET")
	r.HandleFunc("/api/projects", middlewares.RequireAuth(projects.Create)).Methods("POST")
	r.HandleFunc("/api/projects", middlewares.RequireAuth(projects.List)).Methods("GET")
	// Register before the {id} route so "names" is not parsed as an id.
	r.HandleFunc("/api/projects/names", middlewares.RequireAuth(projects.Names)).Methods("GET")
	r.HandleFunc("/api/projects/{id}", middlewares.RequireAuth(projects.GetByID)).Methods("GET")
	r.HandleFunc("/api/projects/{id}", middlewares.RequireAuth(projects.Update)).Methods("PUT")
	r.HandleFunc("/api/projects/{id}/status", middlewares.RequireAuth(projects.UpdateStatus)).Methods("PATCH")
	r.HandleFunc("/api/projects/{id}", middlewares.RequireAuth(projects.Delete)).Methods("DELETE")
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3003"
	}

	cors := gorilla.CORS(
		gorilla.AllowedOrigins([]string{"*"}),
		gorilla.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorilla.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Printf("Project service listening on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, gorilla.LoggingHandler(os.Stdout, cors(r))))
}
