package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/promptlab/jobtrack/internal/adapters/chatapi"
	"github.com/promptlab/jobtrack/internal/bootstrap"
	"github.com/promptlab/jobtrack/internal/domain/model"
)

// console is the interactive front end: plain lines are enqueued as
// reasoning prompts, slash commands inspect and manage tracked jobs, and
// replies are announced as the poller finishes jobs.
type console struct {
	app     *bootstrap.App
	logger  *slog.Logger
	out     io.Writer
	in      io.Reader
	history []chatapi.ChatMessage
	seen    map[string]bool
}

func newConsole(app *bootstrap.App, logger *slog.Logger) *console {
	return &console{
		app:    app,
		logger: logger,
		out:    os.Stdout,
		in:     os.Stdin,
		seen:   make(map[string]bool),
	}
}

// Run reads commands until EOF, /quit, or context cancellation.
func (c *console) Run(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	c.printf("jobtrack ready. Type a prompt to enqueue it, /help for commands.\n")
	c.primeSeen()

	announce := time.NewTicker(time.Second)
	defer announce.Stop()

	c.printf("> ")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-announce.C:
			c.announceFinished()
		case line, ok := <-lines:
			if !ok {
				return context.Canceled
			}
			if done := c.handle(ctx, strings.TrimSpace(line)); done {
				return context.Canceled
			}
			c.printf("> ")
		}
	}
}

// primeSeen marks every currently terminal job as announced so state
// hydrated from a previous run is not replayed to the user.
func (c *console) primeSeen() {
	c.seen = make(map[string]bool)
	for id, job := range c.app.Registry.Jobs() {
		if job.Terminal() {
			c.seen[id] = true
		}
	}
}

// announceFinished prints jobs that reached a terminal state since the last
// check.
func (c *console) announceFinished() {
	for id, job := range c.app.Registry.Jobs() {
		if !job.Terminal() || c.seen[id] {
			continue
		}
		c.seen[id] = true

		switch {
		case job.Status == model.JobStatusFailed && job.Error != nil:
			c.printf("\njob %s failed: %s\n> ", id, *job.Error)
		case job.Reply != nil:
			c.printf("\njob %s finished: %s\n> ", id, *job.Reply)
		default:
			c.printf("\njob %s finished\n> ", id)
		}
	}
}

// handle dispatches one input line. Returns true when the console should
// shut down.
func (c *console) handle(ctx context.Context, line string) bool {
	switch {
	case line == "":
		return false
	case line == "/quit" || line == "/exit":
		return true
	case line == "/help":
		c.printHelp()
	case line == "/jobs":
		c.printJobs()
	case strings.HasPrefix(line, "/job "):
		c.printJob(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/job ")))
	case strings.HasPrefix(line, "/clear "):
		id := strings.TrimSpace(strings.TrimPrefix(line, "/clear "))
		c.app.Registry.ClearJob(ctx, id)
		c.printf("cleared %s\n", id)
	case line == "/clearall":
		c.app.Registry.ClearAll(ctx)
		c.printf("cleared all jobs\n")
	case strings.HasPrefix(line, "/login "):
		c.login(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/login ")))
	case line == "/logout":
		c.app.Session.Logout(ctx)
		c.history = nil
		c.primeSeen()
		c.printf("logged out\n")
	case strings.HasPrefix(line, "/chat "):
		c.chat(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/chat ")))
	case strings.HasPrefix(line, "/"):
		c.printf("unknown command %q, try /help\n", line)
	default:
		c.enqueue(ctx, line)
	}
	return false
}

func (c *console) enqueue(ctx context.Context, prompt string) {
	job, err := c.app.Registry.Enqueue(ctx, prompt)
	if err != nil {
		c.printf("enqueue failed: %v\n", err)
		return
	}
	c.printf("enqueued %s (%s)\n", job.ID, job.Status)
}

// chat sends a synchronous request, keeping a rolling history window.
func (c *console) chat(ctx context.Context, message string) {
	reply, err := c.app.Backend.Chat(ctx, chatapi.ChatRequest{
		Message:     message,
		History:     c.history,
		Temperature: c.app.Config.Chat.Temperature,
		MaxTokens:   c.app.Config.Chat.MaxTokens,
	})
	if err != nil {
		c.printf("chat failed: %v\n", err)
		return
	}

	c.history = append(c.history,
		chatapi.ChatMessage{Role: "user", Content: message},
		chatapi.ChatMessage{Role: "assistant", Content: reply},
	)
	if limit := c.app.Config.Chat.HistorySize; len(c.history) > limit {
		c.history = c.history[len(c.history)-limit:]
	}

	c.printf("%s\n", reply)
}

func (c *console) login(ctx context.Context, credential string) {
	identity, err := c.app.Identity.Identify(ctx, credential)
	if err != nil {
		c.printf("login failed: %v\n", err)
		return
	}
	c.app.Session.SetIdentity(ctx, identity)
	c.primeSeen()
	c.printf("logged in as %s\n", identity.Namespace())
}

func (c *console) printJobs() {
	jobs := c.app.Registry.Jobs()
	if len(jobs) == 0 {
		c.printf("no tracked jobs\n")
		return
	}

	ids := make([]string, 0, len(jobs))
	for id := range jobs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return jobs[ids[i]].EnqueuedAt.Before(jobs[ids[j]].EnqueuedAt)
	})

	for _, id := range ids {
		job := jobs[id]
		c.printf("%s  %-9s enqueued %s\n", job.ID, job.Status, job.EnqueuedAt.Format("15:04:05"))
	}
}

func (c *console) printJob(ctx context.Context, id string) {
	job, ok := c.app.Registry.Job(id)
	if !ok {
		c.printf("no such job %q\n", id)
		return
	}

	c.printf("id:       %s\n", job.ID)
	c.printf("status:   %s\n", job.Status)
	c.printf("enqueued: %s\n", job.EnqueuedAt.Format("2006-01-02 15:04:05"))
	if job.FinishedAt != nil {
		c.printf("finished: %s\n", job.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	if job.Error != nil {
		c.printf("error:    %s\n", *job.Error)
	}

	switch {
	case job.Reply != nil:
		c.printf("reply:    %s\n", *job.Reply)
	case job.Status == model.JobStatusFinished:
		payload, err := c.app.Registry.Reply(ctx, id)
		if err == nil && payload != nil {
			c.printf("reply:    %s\n", payload.Reply)
		}
	}
}

func (c *console) printHelp() {
	c.printf(`commands:
  <prompt>      enqueue a reasoning prompt
  /jobs         list tracked jobs
  /job <id>     show one job, including its reply
  /clear <id>   stop tracking one job
  /clearall     stop tracking everything and purge persisted state
  /chat <msg>   synchronous chat (no job tracking)
  /login <tok>  switch identity
  /logout       purge this identity's state and go anonymous
  /quit         exit
`)
}

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
