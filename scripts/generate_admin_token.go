package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
)

func main() {
	size := flag.Int("bytes", 32, "Number of random bytes in the token")
	flag.Parse()

	if *size < 16 {
		fmt.Println("Error: bytes must be at least 16")
		os.Exit(1)
	}

	token, fingerprint := generateAdminToken(*size)

	fmt.Println("═══════════════════════════════════════════════════")
	fmt.Println("🔑 Admin Token Generated")
	fmt.Println("═══════════════════════════════════════════════════")
	fmt.Printf("\nToken (set as ADMIN_TOKEN):\n%s\n", token)
	fmt.Printf("\nFingerprint (safe to log or share):\n%s\n", fingerprint)
	fmt.Println("═══════════════════════════════════════════════════")
	fmt.Println("\nAdd to your .env:")
	fmt.Printf("ADMIN_TOKEN=%s\n", token)
	fmt.Println("\nThen send it on network edits:")
	fmt.Println("Authorization: Bearer <token>")
	fmt.Println("═══════════════════════════════════════════════════")
}

// generateAdminToken returns a random token and the first 8 bytes of its
// SHA-256 digest in hex
func generateAdminToken(size int) (token, fingerprint string) {
	randomBytes := make([]byte, size)
	if _, err := rand.Read(randomBytes); err != nil {
		panic(err)
	}
	token = "tm_" + hex.EncodeToString(randomBytes)

	digest := sha256.Sum256([]byte(token))
	fingerprint = hex.EncodeToString(digest[:8])
	return
}
