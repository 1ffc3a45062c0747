package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/itchan-dev/newsletter/backend/internal/utils/password"
)

// Reads a password from stdin and prints its argon2id hash together with
// the SQL that provisions a publisher account.
func main() {
	var username string
	flag.StringVar(&username, "username", "admin", "publisher username")
	flag.Parse()

	fmt.Fprint(os.Stderr, "Password: ")
	plain, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && plain == "" {
		log.Fatalf("Failed to read password: %v", err)
	}
	plain = strings.TrimRight(plain, "\r\n")
	if plain == "" {
		log.Fatal("Password must not be empty")
	}

	hash, err := password.Hash(plain, password.DefaultParams)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	fmt.Println("=================================================")
	fmt.Println("  Publisher credentials (argon2id)")
	fmt.Println("=================================================")
	fmt.Println()
	fmt.Println("Hash:")
	fmt.Println(hash)
	fmt.Println()
	fmt.Println("Insert with:")
	fmt.Printf("INSERT INTO users (user_id, username, password_hash) VALUES (%s, %s, %s);\n",
		pq.QuoteLiteral(uuid.NewString()), pq.QuoteLiteral(username), pq.QuoteLiteral(hash))
	fmt.Println("=================================================")
}
