package config

import (
	"os"
)

type Config struct {
	Port        string
	RedisURL    string
	DBUrl       string
	JWTSecret   string
	SupabaseURL string
	SupabaseKey string
}

func LoadConfig() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return &Config{
		Port:        port,
		RedisURL:    os.Getenv("REDIS_URL"),
		DBUrl:       os.Getenv("SUPABASE_DB_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		SupabaseURL: os.Getenv("NEXT_PUBLIC_SUPABASE_URL"),
		SupabaseKey: os.Getenv("SUPABASE_ANON_KEY"),
	}
}
