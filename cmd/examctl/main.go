package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"examdesk/internal/client/api"
	"examdesk/internal/client/nav"
	"examdesk/internal/client/session"
	"examdesk/internal/client/store"
)

const usage = `examctl - terminal client for the examdesk API

Usage: examctl [flags] <command> [args]

Commands:
  login <email>                 authenticate and store the session
  logout                        end the session
  whoami                        show the current user
  nav                           show the menu for the current role
  grades                        list my grades (student)
  resits                        list my resit exams (student)
  eligible                      list courses open for a resit declaration (student)
  declare <course-id>           register for a resit exam (student)
  download <filename>           download a schedule file (student)
  stats                         resit statistics per course (instructor)
  submit-grade <course-id> <student-id> <grade>
                                record a grade (instructor)
  resit-details <course-id>     set resit exam details (instructor)
  registrations <course-id>     list resit registrations (instructor)
  schedules                     list uploaded schedule files (secretary)
  upload <path>                 upload a schedule file (secretary)

Flags:
`

type consoleNotifier struct{}

func (consoleNotifier) Notify(n api.Notification) {
	fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", n.Severity, n.Title, n.Message)
}

type consoleNavigator struct{}

func (consoleNavigator) Navigate(path string) {
	fmt.Printf("-> %s\n", path)
}

func main() {
	serverURL := flag.String("server", envOr("EXAMCTL_SERVER", "http://localhost:8080/api"), "API base URL")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := zerolog.Nop()
	if *verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger().Level(zerolog.DebugLevel)
	}

	st, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	notifier := consoleNotifier{}
	var manager *session.Manager
	client := api.NewClient(*serverURL, st,
		api.WithNotifier(notifier),
		api.WithSessionInvalidatedHandler(func() { manager.HandleSessionInvalidated() }),
		api.WithLogger(logger),
	)
	manager = session.NewManager(client, st, consoleNavigator{}, notifier, logger)
	manager.Restore()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, manager, client, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, manager *session.Manager, client *api.Client, args []string) error {
	command, rest := args[0], args[1:]
	switch command {
	case "login":
		return cmdLogin(ctx, manager, rest)
	case "logout":
		manager.Logout()
		return nil
	case "whoami":
		return cmdWhoami(manager)
	case "nav":
		return cmdNav(manager)
	case "grades":
		return cmdGrades(ctx, client)
	case "resits":
		return cmdResits(ctx, client)
	case "eligible":
		return cmdEligible(ctx, client)
	case "declare":
		return cmdDeclare(ctx, client, rest)
	case "download":
		return cmdDownload(ctx, client, rest)
	case "stats":
		return cmdStats(ctx, client)
	case "submit-grade":
		return cmdSubmitGrade(ctx, client, rest)
	case "resit-details":
		return cmdResitDetails(ctx, client, rest)
	case "registrations":
		return cmdRegistrations(ctx, client, rest)
	case "schedules":
		return cmdSchedules(ctx, client)
	case "upload":
		return cmdUpload(ctx, client, rest)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func cmdLogin(ctx context.Context, manager *session.Manager, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: examctl login <email>")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	password, err := readLine()
	if err != nil {
		return err
	}
	return manager.Login(ctx, args[0], password)
}

func cmdWhoami(manager *session.Manager) error {
	user := manager.User()
	if notice, ok := nav.RequireSession(user); !ok {
		fmt.Println(notice)
		return nil
	}
	fmt.Printf("%s <%s> (%s)\n", user.Name, user.Email, user.Role)
	return nil
}

func cmdNav(manager *session.Manager) error {
	user := manager.User()
	if notice, ok := nav.RequireSession(user); !ok {
		fmt.Println(notice)
		return nil
	}
	for _, item := range nav.Items(user.Role) {
		fmt.Printf("%-24s %s\n", item.Label, item.Path)
	}
	return nil
}

func cmdGrades(ctx context.Context, client *api.Client) error {
	grades, err := client.MyGrades(ctx)
	if err != nil {
		return err
	}
	w := newTable()
	fmt.Fprintln(w, "COURSE\tNAME\tSEMESTER\tGRADE")
	for _, g := range grades {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\n", g.CourseCode, g.CourseName, g.Semester, g.Grade)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(grades) > 0 {
		fmt.Printf("GPA: %.2f\n", gpa(grades))
	}
	return nil
}

func gpa(grades []api.Grade) float64 {
	var sum float64
	for _, g := range grades {
		sum += g.Grade
	}
	return sum / float64(len(grades))
}

func cmdEligible(ctx context.Context, client *api.Client) error {
	grades, err := client.EligibleResits(ctx)
	if err != nil {
		return err
	}
	if len(grades) == 0 {
		fmt.Println("no courses eligible for a resit")
		return nil
	}
	w := newTable()
	fmt.Fprintln(w, "COURSE\tNAME\tGRADE")
	for _, g := range grades {
		fmt.Fprintf(w, "%s\t%s\t%.1f\n", g.CourseCode, g.CourseName, g.Grade)
	}
	return w.Flush()
}

func cmdResits(ctx context.Context, client *api.Client) error {
	exams, err := client.MyResitExams(ctx)
	if err != nil {
		return err
	}
	w := newTable()
	fmt.Fprintln(w, "COURSE\tNAME\tDATE\tLOCATION\tDEADLINE")
	for _, e := range exams {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.CourseCode, e.CourseName,
			e.ExamDate.Format("2006-01-02"), e.Location,
			e.Deadline.Format("2006-01-02"))
	}
	return w.Flush()
}

func cmdDeclare(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: examctl declare <course-id>")
	}
	if err := client.DeclareResit(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("registered")
	return nil
}

func cmdDownload(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: examctl download <filename>")
	}
	body, err := client.DownloadSchedule(ctx, args[0])
	if err != nil {
		return err
	}
	defer body.Close()

	out, err := os.Create(filepath.Base(args[0]))
	if err != nil {
		return err
	}
	defer out.Close()

	n, err := io.Copy(out, body)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", out.Name(), n)
	return nil
}

func cmdStats(ctx context.Context, client *api.Client) error {
	stats, err := client.ResitStats(ctx)
	if err != nil {
		return err
	}
	w := newTable()
	fmt.Fprintln(w, "COURSE\tNAME\tSTUDENTS\tREGISTERED\tPASS RATE")
	for _, c := range stats.Courses {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.1f%%\n",
			c.CourseCode, c.CourseName, c.TotalStudents, c.Registered, c.PassRate)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("average pass rate: %.1f%%\n", stats.AvgPassRate)
	return nil
}

func cmdSubmitGrade(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: examctl submit-grade <course-id> <student-id> <grade>")
	}
	grade, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid grade %q", args[2])
	}
	saved, err := client.SubmitGrade(ctx, api.SubmitGradeInput{
		CourseID:  args[0],
		StudentID: args[1],
		Grade:     grade,
	})
	if err != nil {
		return err
	}
	fmt.Printf("recorded %.1f for %s\n", saved.Grade, saved.CourseCode)
	return nil
}

func cmdResitDetails(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: examctl resit-details <course-id>")
	}
	details := api.ResitDetails{CourseID: args[0]}
	prompts := []struct {
		label string
		field *string
	}{
		{"Exam date (YYYY-MM-DD)", &details.ExamDate},
		{"Location", &details.Location},
		{"Allowed materials", &details.AllowedMaterials},
		{"Registration deadline (YYYY-MM-DD)", &details.Deadline},
	}
	for _, p := range prompts {
		fmt.Fprintf(os.Stderr, "%s: ", p.label)
		value, err := readLine()
		if err != nil {
			return err
		}
		*p.field = value
	}
	exam, err := client.UpsertResitDetails(ctx, details)
	if err != nil {
		return err
	}
	fmt.Printf("saved resit exam %s\n", exam.ID)
	return nil
}

func cmdRegistrations(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: examctl registrations <course-id>")
	}
	regs, err := client.ResitRegistrations(ctx, args[0])
	if err != nil {
		return err
	}
	w := newTable()
	fmt.Fprintln(w, "STUDENT\tEMAIL\tSTATUS\tREGISTERED")
	for _, r := range regs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.StudentName, r.Email, r.Status, r.RegisteredAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func cmdSchedules(ctx context.Context, client *api.Client) error {
	files, err := client.Schedules(ctx)
	if err != nil {
		return err
	}
	w := newTable()
	fmt.Fprintln(w, "FILENAME\tSIZE\tUPLOADED")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%d\t%s\n", f.Filename, f.SizeBytes, f.UploadDate.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func cmdUpload(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: examctl upload <path>")
	}
	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	uploaded, err := client.UploadSchedule(ctx, filepath.Base(args[0]), file)
	if err != nil {
		return err
	}
	fmt.Printf("uploaded %s (%d bytes)\n", uploaded.Filename, uploaded.SizeBytes)
	return nil
}

func openStore() (*store.FileStore, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locate config dir: %w", err)
	}
	return store.New(filepath.Join(configDir, "examdesk"))
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func readLine() (string, error) {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
