package main

import (
	"log"

	com "github.com/citizenwallet/custody/internal/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// generates a fresh admin key in the format ADMIN_PRIVATE_KEY expects
func main() {
	log.Default().Println("generating...")
	log.Default().Println(" ")

	pk, err := crypto.GenerateKey()
	if err != nil {
		log.Fatal(err)
	}

	log.Default().Printf("private key: %s\n", com.PrivateKeyToHex(pk))
	log.Default().Printf("address: %s\n", crypto.PubkeyToAddress(pk.PublicKey).Hex())
}
