// @title           TaskHub Task Service
// @version         1.0
// @description     CRUD over the caller's tasks.
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

	tasks := handlers.NewTaskHandler(repository.NewTaskRepository(pool))

	r := mux.NewRouter()
	r.HandleFunc("/health", handlers.Health).Methods("GET")
	r.HandleFunc("/api/tasks", middlewares.RequireAuth(tasks.Create)).Methods("POST")
	r.HandleFunc("/api/tasks", middlewares.RequireAuth(tasks.List)).Methods("GET")
	r.HandleFunc("/api/tasks/{id}", middlewares.RequireAuth(tasks.GetByID)).Methods("GET")
	r.HandleFunc("/api/tasks/{id}", middlewares.RequireAuth(tasks.Update)).Methods("PUT")
	r.HandleFunc("/api/tasks/{id}/status", middlewares.RequireAuth(tasks.UpdateStatus)).Methods("PATCH")
	r.HandleFunc("/api/tasks/{id}", middlewares.RequireAuth(tasks.Delete)).Methods("DELETE")
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3002"
	}

	cors := gorilla.CORS(
		gorilla.AllowedOrigins([]string{"*"}),
		gorilla.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorilla.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Printf("Task service listening on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, gorilla.LoggingHandler(os.Stdout, cors(r))))
}
