// Command token は書き込みAPI用のJWTを発行して標準出力に書き出します。
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"coin_backend/internal/config"
	jwtmw "coin_backend/internal/platform/jwt"
)

func main() {
	configPath := flag.String("c", "", "config file path (defaults to $CONFIG_PATH)")
	subject := flag.String("sub", "operator", "token subject")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	token, err := jwtmw.NewGenerator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).GenerateToken(*subject)
	if err != nil {
		slog.Error("token generation failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
