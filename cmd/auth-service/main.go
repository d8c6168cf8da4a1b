// @title           TaskHub Auth Service
// @version         1.0
// @description     Identity service: signup, login and profile.
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

	auth := handlers.NewAuthHandler(repository.NewUserRepository(pool))

	r := mux.NewRouter()
	r.HandleFunc("/health", handlers.Health).Methods("GET")
	r.HandleFunc("/api/auth/signup", auth.Signup).Methods("POST")
	r.HandleFunc("/api/auth/login", auth.Login).Methods("POST")
	r.HandleFunc("/api/auth/profile", middlewares.RequireAuth(auth.Profile)).Methods("GET")
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	cors := gorilla.CORS(
		gorilla.AllowedOrigins([]string{"*"}),
		gorilla.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorilla.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Printf("Auth service listening on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, gorilla.LoggingHandler(os.Stdout, cors(r))))
}
