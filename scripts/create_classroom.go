// One-shot bootstrap: create a classroom from the command line and
// print the join code plus the teacher token (shown only here).
//
//	go run ./scripts -name "Sec 2 Computing" -limit 50 -max 40
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/tinkertanker/bitvibe-extension/config"
	"github.com/tinkertanker/bitvibe-extension/database"
)

func main() {
	name := flag.String("name", "", "classroom display name (required)")
	limit := flag.Int("limit", 0, "per-student request limit (default from env)")
	max := flag.Int("max", 0, "maximum active students (default from env)")
	flag.Parse()

	if strings.TrimSpace(*name) == "" {
		log.Fatal("usage: create_classroom -name <name> [-limit n] [-max n]")
	}

	config.LoadEnv()
	cfg := config.Load()
	if *limit <= 0 {
		*limit = cfg.DefaultRequestLimit
	}
	if *max <= 0 {
		*max = cfg.DefaultMaxStudents
	}

	db := database.Connect(cfg)
	store := database.NewStore(db)

	cls, rawToken, err := store.CreateClassroom(context.Background(), strings.TrimSpace(*name), *limit, *max)
	if err != nil {
		log.Fatalf("create classroom: %v", err)
	}

	fmt.Printf("classroom created\n")
	fmt.Printf("  id:            %d\n", cls.ID)
	fmt.Printf("  name:          %s\n", cls.Name)
	fmt.Printf("  join code:     %s\n", cls.JoinCode)
	fmt.Printf("  request limit: %d\n", cls.RequestLimit)
	fmt.Printf("  max students:  %d\n", cls.MaxStudents)
	fmt.Printf("  teacher token: %s\n", rawToken)
	fmt.Printf("store the teacher token now; it is not retrievable later\n")
}
