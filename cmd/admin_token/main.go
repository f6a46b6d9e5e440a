package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"travelbook/airports/internal/common"
	"travelbook/airports/internal/config"
	"travelbook/airports/internal/constants"
)

func main() {
	subject := flag.String("sub", "ops", "token subject")
	roleName := flag.String("role", string(constants.RoleOperator), "admin or operator")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	role, ok := constants.ParseRole(*roleName)
	if !ok {
		log.Fatalf("unknown role %q", *roleName)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	token, err := common.NewAdminTokenSigner([]byte(cfg.AdminTokenSecret)).Generate(*subject, role, *ttl)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}

	fmt.Fprintln(os.Stdout, token)
}
