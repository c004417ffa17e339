package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/security"
)

func main() {
	id := flag.String("id", "", "user id to embed in the token")
	name := flag.String("name", "", "display name")
	email := flag.String("email", "", "email address")
	permission := flag.String("permission", "USER", "permission level")
	expires := flag.Int64("expires", 3600*24*30, "token lifetime in seconds")
	flag.Parse()

	if *id == "" {
		log.Fatal("-id is required")
	}

	secret := os.Getenv("SHIFTSCAN_SIGNING_SECRET")
	if secret == "" {
		log.Fatal("SHIFTSCAN_SIGNING_SECRET is not set")
	}

	token, err := security.CreateIdentityToken(&security.WorkerIdentity{
		Id:         *id,
		Name:       *name,
		Email:      *email,
		Permission: *permission,
	}, secret, *expires)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(token)
}
