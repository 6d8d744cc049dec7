// Command pushsend delivers a manual push notification to selected users,
// or to every reachable user when no recipient is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"friendmarket/internal/cache"
	"friendmarket/internal/config"
	"friendmarket/internal/database"
	"friendmarket/internal/featureflags"
	"friendmarket/internal/notifications"
	"friendmarket/internal/push"
	"friendmarket/internal/repository"
)

// emailList collects -u values, repeated or comma separated.
type emailList []string

func (l *emailList) String() string { return strings.Join(*l, ",") }

func (l *emailList) Set(v string) error {
	for _, e := range strings.Split(v, ",") {
		if e = strings.TrimSpace(e); e != "" {
			*l = append(*l, e)
		}
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var emails emailList
	postID := flag.Uint("p", 0, "Post id carried in the payload")
	commentID := flag.Uint("c", 0, "Comment id carried in the payload")
	title := flag.String("t", "Mega post", "Notification title")
	body := flag.String("b", "Message", "Notification body")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall delivery timeout")
	flag.Var(&emails, "u", "Recipient email (repeatable or comma separated); empty sends to everyone")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	dispatcher := push.NewDispatcher(
		repository.NewRecipientRepository(db),
		push.NewFCMSender(cfg),
		notifications.NewNotifier(cache.GetClient()),
		featureflags.NewManager(cfg.FeatureFlags),
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	n, err := dispatcher.SendManual(ctx, emails, push.Message{
		Title:   *title,
		Body:    *body,
		Post:    *postID,
		Comment: *commentID,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	log.Printf("push sent to %d device(s)", n)
	return nil
}
