package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/batala/site-server-go/internal/util"
)

// Prints an argon2id hash for seeding admins by hand. With no argument the
// password is read from the terminal without echo.
func main() {
	var password string
	switch {
	case len(os.Args) >= 2:
		password = os.Args[1]
	case term.IsTerminal(int(os.Stdin.Fd())):
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		password = string(raw)
	default:
		fmt.Fprintf(os.Stderr, "Usage: go run scripts/hash-password.go <password>\n")
		os.Exit(1)
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
