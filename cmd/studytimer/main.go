package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mayu-0506/studytime-tracker-sub000/internal"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/config"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/localstore"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/recorder"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/timer"
)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	store, err := localstore.Open(cfg.LocalDir, logger)
	if err != nil {
		logger.Fatalf("failed to open local store: %v", err)
	}
	defer store.Close()

	client := recorder.NewClient(cfg.ServerURL, cfg.APIToken, logger)
	queue := recorder.NewQueue(store, client, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Resolve anything left over from a previous run, then watch for the
	// connection coming back.
	if flushed, remaining, err := queue.Flush(ctx); err != nil {
		logger.Warnf("startup flush failed: %v", err)
	} else if flushed > 0 || remaining > 0 {
		fmt.Printf("Recovered %d queued session(s), %d still pending\n", flushed, remaining)
	}
	go queue.Watch(ctx, client, 15*time.Second)

	t := timer.New(store, client, queue, logger)
	if restored, err := t.Restore(); err != nil {
		logger.Warnf("failed to restore snapshot: %v", err)
	} else if restored {
		fmt.Printf("Previous session restored: %s (%s, %s elapsed)\n",
			t.Subject().Name, t.State(), formatElapsed(t.ElapsedSeconds()))
	}

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.Tick()
			}
		}
	}()

	// The snapshot is persisted on every mutation, so an abrupt exit loses
	// nothing; this just closes the store cleanly.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		store.Close()
		os.Exit(0)
	}()

	fmt.Println("Commands: subjects | start <subject-id> | pause | stop | memo <text> | status | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		cmd, arg, _ := strings.Cut(line, " ")

		switch cmd {
		case "subjects":
			subjects, err := client.ListSubjects(ctx)
			if err != nil {
				fmt.Println("Could not fetch subjects:", err)
				continue
			}
			for _, s := range subjects {
				fmt.Printf("  %-16s %s\n", s.ID, s.Name)
			}
		case "start":
			subject, err := resolveSubject(ctx, client, strings.TrimSpace(arg), t)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err := t.Start(subject); err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("Timer %s: %s\n", t.State(), t.Subject().Name)
		case "pause":
			if err := t.Pause(); err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println("Paused at", formatElapsed(t.ElapsedSeconds()))
		case "stop":
			result, err := t.Stop(ctx)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if result.Queued {
				fmt.Printf("Recorded %d min locally; will sync when back online\n", result.Session.DurationMinutes)
			} else {
				fmt.Printf("Recorded %d min\n", result.Session.DurationMinutes)
			}
		case "memo":
			if err := t.SetMemo(arg); err != nil {
				fmt.Println(err)
			}
		case "status":
			if t.State() == timer.StateIdle {
				fmt.Println("idle")
				continue
			}
			fmt.Printf("%s  %s  %s\n", t.State(), t.Subject().Name, formatElapsed(t.Resync()))
		case "quit", "exit":
			return
		case "":
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

// resolveSubject resolves a subject ID against the server, or falls back to
// the in-progress subject when resuming from paused with no argument.
func resolveSubject(ctx context.Context, client *recorder.Client, id string, t *timer.Timer) (timer.Subject, error) {
	if id == "" {
		if t.State() == timer.StatePaused {
			return t.Subject(), nil
		}
		return timer.Subject{}, fmt.Errorf("usage: start <subject-id>")
	}
	subjects, err := client.ListSubjects(ctx)
	if err != nil {
		// Offline: trust the ID so studying is never blocked on the network.
		return timer.Subject{ID: id, Name: id}, nil
	}
	for _, s := range subjects {
		if s.ID == id {
			return timer.Subject{ID: s.ID, Name: s.Name, Color: s.Color}, nil
		}
	}
	return timer.Subject{}, fmt.Errorf("unknown subject %q (try 'subjects')", id)
}

func formatElapsed(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}
