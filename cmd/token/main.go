// Command token mints an access token for local testing against a running
// API. The identity provider issues real tokens in production.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/joho/godotenv"
)

func main() {
	employeeID := flag.String("employee", "", "employee id to put in the token")
	role := flag.String("role", string(employee.RoleEmployee), "employee, manager or admin")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "error loading .env file:", err)
		os.Exit(1)
	}

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET_KEY is required")
		os.Exit(1)
	}
	if *employeeID == "" {
		fmt.Fprintln(os.Stderr, "-employee is required")
		flag.Usage()
		os.Exit(2)
	}
	r := employee.Role(*role)
	if !r.IsValid() {
		fmt.Fprintln(os.Stderr, employee.ErrInvalidRole)
		os.Exit(2)
	}

	token, expiresAt, err := jwt.NewJWTService(secret, ttl.String()).GenerateAccessToken(*employeeID, r)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to sign token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
}
