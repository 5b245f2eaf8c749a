// Package main is a utility for generating a bcrypt hash of the admin master
// key. The server can be configured with auth.master_key_hash instead of the
// plaintext key so the secret never appears in config files. Pass the key as
// the single argument; the hash is printed to stdout.
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <master-key>\n", os.Args[0])
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(hash))
}
