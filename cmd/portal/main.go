package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/hackjudge/pkg/portal"
)

// Exit codes.
const (
	exitSuccess           = 0
	exitRequestFailed     = 1
	exitInvalidInvocation = 2
)

const usage = `usage: portal [-api URL] [-judge ID] [-timeout D] <command> [args]

commands:
  create -name NAME [-criteria TEXT]   create a hackathon for the judge
  list                                 list the judge's hackathons
  verify-submit -hackathon ID -project NAME -github URL -video URL
                                       verify a hackathon and submit a project
  dashboard -hackathon ID              show accepted and rejected submissions
  criteria -hackathon ID [-set TEXT]   show or replace a hackathon's criteria
`

type options struct {
	api     string
	judge   string
	timeout time.Duration
	verbose bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("portal", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	var opts options
	fs.StringVar(&opts.api, "api", envOr("HACKJUDGE_API_URL", "http://localhost:5000"), "base URL of the API")
	fs.StringVar(&opts.judge, "judge", os.Getenv("HACKJUDGE_JUDGE_ID"), "judge id")
	fs.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "request timeout")
	fs.BoolVar(&opts.verbose, "v", false, "log requests")
	if err := fs.Parse(args); err != nil {
		return exitInvalidInvocation
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitInvalidInvocation
	}

	level := zerolog.WarnLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
	client := portal.NewClient(opts.api, portal.WithLogger(logger))

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	var err error
	switch rest[0] {
	case "create":
		err = runCreate(ctx, client, opts, rest[1:], stdout, logger)
	case "list":
		err = runList(ctx, client, opts, stdout, logger)
	case "verify-submit":
		err = runVerifySubmit(ctx, client, rest[1:], stdout)
	case "dashboard":
		err = runDashboard(ctx, client, rest[1:], stdout, logger)
	case "criteria":
		err = runCriteria(ctx, client, rest[1:], stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		fs.Usage()
		return exitInvalidInvocation
	}

	var invocation *invocationError
	switch {
	case err == nil:
		return exitSuccess
	case errors.As(err, &invocation):
		fmt.Fprintln(stderr, invocation.message)
		return exitInvalidInvocation
	default:
		fmt.Fprintln(stderr, portal.Message(err))
		return exitRequestFailed
	}
}

type invocationError struct {
	message string
}

func (e *invocationError) Error() string { return e.message }

func invalid(format string, args ...interface{}) error {
	return &invocationError{message: fmt.Sprintf(format, args...)}
}

func runCreate(ctx context.Context, client *portal.Client, opts options, args []string, out io.Writer, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "hackathon name")
	criteria := fs.String("criteria", portal.DefaultCriteria, "evaluation criteria")
	if err := fs.Parse(args); err != nil {
		return invalid("create: %v", err)
	}

	console := portal.NewJudgeConsole(client, portal.StaticIdentity(opts.judge), portal.WithConsoleLogger(logger))
	defer console.Close()

	console.SetCriteria(*criteria)
	created, err := console.Create(ctx, *name)
	if errors.Is(err, portal.ErrIdentityUnresolved) {
		return invalid("create: -judge is required")
	}
	if errors.Is(err, portal.ErrMissingField) {
		return invalid("create: -name is required")
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Hackathon created! Share this ID with participants: %d\n", created.ID)
	return nil
}

func runList(ctx context.Context, client *portal.Client, opts options, out io.Writer, logger zerolog.Logger) error {
	console := portal.NewJudgeConsole(client, portal.StaticIdentity(opts.judge), portal.WithConsoleLogger(logger))
	defer console.Close()

	if err := console.Refresh(ctx); err != nil {
		if errors.Is(err, portal.ErrIdentityUnresolved) {
			return invalid("list: -judge is required")
		}
		return err
	}

	hackathons := console.State().Hackathons
	if len(hackathons) == 0 {
		fmt.Fprintln(out, "No hackathons yet.")
		return nil
	}
	for _, hackathon := range hackathons {
		fmt.Fprintf(out, "%d\t%s\n", hackathon.ID, hackathon.Name)
	}
	return nil
}

func runVerifySubmit(ctx context.Context, client *portal.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("verify-submit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	hackathon := fs.String("hackathon", "", "hackathon id")
	var form portal.SubmissionForm
	fs.StringVar(&form.ProjectName, "project", "", "project name")
	fs.StringVar(&form.GithubLink, "github", "", "GitHub repository link")
	fs.StringVar(&form.VideoLink, "video", "", "demo video link")
	if err := fs.Parse(args); err != nil {
		return invalid("verify-submit: %v", err)
	}
	if strings.TrimSpace(*hackathon) == "" {
		return invalid("verify-submit: -hackathon is required")
	}

	verification := portal.NewVerificationFlow(client)
	defer verification.Close()

	verified, err := verification.Verify(ctx, *hackathon)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Submitting to %s\n", verified.Name)

	submission, err := verification.SubmissionFlow()
	if err != nil {
		return err
	}
	defer submission.Close()

	ack, err := submission.Submit(ctx, form)
	if errors.Is(err, portal.ErrMissingField) {
		return invalid("verify-submit: %v", err)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (submission %d, status %s)\n", ack.Message, ack.SubmissionID, ack.Status)
	return nil
}

func runDashboard(ctx context.Context, client *portal.Client, args []string, out io.Writer, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	hackathon := fs.String("hackathon", "", "hackathon id")
	if err := fs.Parse(args); err != nil {
		return invalid("dashboard: %v", err)
	}

	source := portal.RouteParam{Params: map[string]string{"hackathonId": *hackathon}}
	dashboard := portal.NewDashboard(client, source, portal.WithDashboardLogger(logger))
	defer dashboard.Close()

	if err := dashboard.Refresh(ctx); err != nil {
		if errors.Is(err, portal.ErrMissingHackathonID) {
			return invalid("dashboard: %s", portal.MessageMissingHackathonID)
		}
		return err
	}

	for _, column := range dashboard.Columns() {
		fmt.Fprintln(out, column.Title)
		for _, card := range column.Cards {
			fmt.Fprintf(out, "  #%d %s\n", card.SubmissionID, card.ProjectName)
			fmt.Fprintf(out, "     innovation %s  impact %s\n", card.Innovation, card.Impact)
			fmt.Fprintf(out, "     %s\n", card.GithubLink)
			fmt.Fprintf(out, "     %s\n", card.VideoLink)
			fmt.Fprintf(out, "     %s\n", card.Justification)
		}
	}
	return nil
}

func runCriteria(ctx context.Context, client *portal.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("criteria", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	hackathon := fs.Int64("hackathon", 0, "hackathon id")
	text := fs.String("set", "", "replacement criteria")
	if err := fs.Parse(args); err != nil {
		return invalid("criteria: %v", err)
	}
	if *hackathon <= 0 {
		return invalid("criteria: -hackathon is required")
	}

	navigator := portal.NavigatorFunc(func(id int64) {
		fmt.Fprintf(out, "Criteria saved. Dashboard: /dashboard/%d\n", id)
	})
	editor := portal.NewCriteriaEditor(client, *hackathon, navigator)
	defer editor.Close()

	if err := editor.Load(ctx); err != nil {
		return err
	}
	if *text == "" {
		fmt.Fprintln(out, editor.Display())
		return nil
	}

	editor.SetText(*text)
	if err := editor.Save(ctx); err != nil {
		return errors.New(editor.State().Message)
	}
	return nil
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
