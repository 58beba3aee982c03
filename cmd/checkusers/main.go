// Command checkusers prints every registered user without password hashes.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Skotchmaster/contacts/internal/config"
	"github.com/Skotchmaster/contacts/internal/db"
	"github.com/Skotchmaster/contacts/internal/repo"
)

func main() {
	config.LoadDotEnv(".env")
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close(gdb)

	if err := db.Migrate(ctx, gdb); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	users, err := repo.New(gdb).ListUsers(ctx)
	if err != nil {
		log.Fatalf("list users: %v", err)
	}

	fmt.Printf("users: %d\n", len(users))
	if len(users) == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tCREATED\tUPDATED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Username, u.Email,
			u.CreatedAt.Format(time.RFC3339), u.UpdatedAt.Format(time.RFC3339))
	}
	w.Flush()
}
