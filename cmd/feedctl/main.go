// Command feedctl is the operator CLI for the feed aggregator. It talks to
// the database directly and shares the worker's ingestion pipeline, so runs
// triggered here behave exactly like scheduled ones.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"homefeed/internal/infra/adapter/persistence/postgres"
	"homefeed/internal/infra/db"
	"homefeed/internal/infra/icon"
	"homefeed/internal/infra/scraper"
	"homefeed/internal/observability/logging"
	"homefeed/internal/usecase/account"
	"homefeed/internal/usecase/ingest"
	"homefeed/internal/usecase/subscribe"
)

const usage = `Usage: feedctl <command> [flags]

Commands:
  initdb                 Create the database schema
  adduser                Create an owner account
  addfeed                Register a feed for an owner
  feeds                  List an owner's feeds
  ingest                 Run the ingestion pipeline

Run "feedctl <command> -h" for command flags.
`

func main() {
	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	database := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	var err error
	switch os.Args[1] {
	case "initdb":
		err = runInitDB(ctx, database)
	case "adduser":
		err = runAddUser(ctx, database, os.Args[2:])
	case "addfeed":
		err = runAddFeed(ctx, database, os.Args[2:])
	case "feeds":
		err = runListFeeds(ctx, database, os.Args[2:])
	case "ingest":
		err = runIngest(ctx, database, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", slog.String("command", os.Args[1]), slog.Any("error", err))
		os.Exit(1)
	}
}

func runInitDB(_ context.Context, database *sql.DB) error {
	if err := db.MigrateUp(database); err != nil {
		return err
	}
	fmt.Println("schema created")
	return nil
}

func runAddUser(ctx context.Context, database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("adduser", flag.ExitOnError)
	name := fs.String("name", "", "owner name (required)")
	password := fs.String("password", "", "password, at least 8 characters (required)")
	admin := fs.Bool("admin", false, "grant admin rights")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *password == "" {
		fs.Usage()
		return fmt.Errorf("adduser: -name and -password are required")
	}

	svc := &account.Service{OwnerRepo: postgres.NewOwnerRepo(database)}
	owner, err := svc.Create(ctx, account.CreateInput{
		Name:     *name,
		Password: *password,
		Admin:    *admin,
	})
	if err != nil {
		return err
	}

	fmt.Printf("owner %d (%s) created\n", owner.ID, owner.Name)
	return nil
}

func runAddFeed(ctx context.Context, database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("addfeed", flag.ExitOnError)
	ownerID := fs.Int64("owner", 0, "owner id (required)")
	feedURL := fs.String("url", "", "feed URL (required)")
	name := fs.String("name", "", "display name, defaults to the feed title")
	folderID := fs.Int64("folder", 0, "folder id, 0 for unfiled")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ownerID == 0 || *feedURL == "" {
		fs.Usage()
		return fmt.Errorf("addfeed: -owner and -url are required")
	}

	client := newHTTPClient()
	feedRepo := postgres.NewFeedRepo(database)
	entryRepo := postgres.NewEntryRepo(database)
	fetcher := scraper.NewFeedFetcher(client)

	svc := &subscribe.Service{
		OwnerRepo:    postgres.NewOwnerRepo(database),
		FolderRepo:   postgres.NewFolderRepo(database),
		FeedRepo:     feedRepo,
		FeedFetcher:  fetcher,
		IconResolver: icon.NewResolver(client),
		Ingestor:     ingest.NewService(feedRepo, entryRepo, fetcher),
	}

	in := subscribe.RegisterInput{
		OwnerID: *ownerID,
		Name:    *name,
		FeedURL: *feedURL,
	}
	if *folderID != 0 {
		in.FolderID = folderID
	}

	feed, err := svc.Register(ctx, in)
	if err != nil {
		return err
	}

	fmt.Printf("feed %d (%s) registered\n", feed.ID, feed.Name)
	return nil
}

func runListFeeds(ctx context.Context, database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("feeds", flag.ExitOnError)
	ownerID := fs.Int64("owner", 0, "owner id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ownerID == 0 {
		fs.Usage()
		return fmt.Errorf("feeds: -owner is required")
	}

	feeds, err := postgres.NewFeedRepo(database).ListByOwner(ctx, *ownerID)
	if err != nil {
		return err
	}

	for _, f := range feeds {
		folder := "-"
		if f.FolderID != nil {
			folder = fmt.Sprintf("%d", *f.FolderID)
		}
		fmt.Printf("%d\t%s\t%s\tfolder=%s\n", f.ID, f.Name, f.FeedURL, folder)
	}
	return nil
}

func runIngest(ctx context.Context, database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	feedID := fs.Int64("feed", 0, "ingest only this feed id, 0 for all feeds")
	timeout := fs.Duration("timeout", 15*time.Minute, "run timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	svc := ingest.NewService(
		postgres.NewFeedRepo(database),
		postgres.NewEntryRepo(database),
		scraper.NewFeedFetcher(newHTTPClient()),
	)

	if *feedID != 0 {
		res, err := svc.IngestByID(ctx, *feedID)
		if err != nil {
			return err
		}
		fmt.Printf("feed %d: fetched=%d stored=%d skipped_duplicate=%d skipped_missing_link=%d in %s\n",
			res.FeedID, res.Fetched, res.Stored, res.SkippedDuplicate, res.SkippedMissingLink, res.Duration)
		return nil
	}

	stats, err := svc.IngestAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("run %s: feeds=%d failed=%d fetched=%d stored=%d in %s\n",
		stats.RunID, stats.Feeds, stats.Failed, stats.Fetched, stats.Stored, stats.Duration)
	return nil
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
