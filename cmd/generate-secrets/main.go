package main

import (
	"fmt"
	"log"

	"github.com/bhakthiseva/darshan-backend/internal/utils"
)

func main() {
	keys, err := utils.NewSigningKeyPair()
	if err != nil {
		log.Fatalf("Failed to generate signing keys: %v", err)
	}

	fmt.Println("Fresh JWT signing keys. Add to your .env or deployment secrets:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", keys.Access)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", keys.Refresh)
	fmt.Println()
	fmt.Println("Never commit these to version control.")
}
