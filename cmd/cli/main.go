package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/perivihk-dotcom/client-intake/internal/admin"
	"github.com/perivihk-dotcom/client-intake/internal/intake"
	"github.com/perivihk-dotcom/client-intake/internal/validate"
)

// Default server base URL; can override with INTAKE_SERVER env var or -server flag.
var serverBaseURL = "http://localhost:8585"

// printNotifier surfaces transient notifications on the terminal.
type printNotifier struct{}

func (printNotifier) Notify(kind, message string) {
	fmt.Printf("[%s] %s\n", kind, message)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "submit":
		runSubmit(os.Args[2:])
	case "list":
		runList(os.Args[2:])
	case "delete":
		runDelete(os.Args[2:])
	case "hash-password":
		runHashPassword(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("expected 'submit', 'list', 'delete' or 'hash-password' subcommand")
}

func resolveServer(flagValue string) string {
	if env := os.Getenv("INTAKE_SERVER"); env != "" {
		serverBaseURL = strings.TrimRight(env, "/")
	}
	if flagValue != "" {
		serverBaseURL = strings.TrimRight(flagValue, "/")
	}
	return serverBaseURL
}

func runSubmit(args []string) {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	name := fs.String("name", "", "Client name")
	business := fs.String("business", "", "Business name")
	mobile := fs.String("mobile", "", "Mobile number")
	email := fs.String("email", "", "Email address")
	noEmail := fs.Bool("no-email", false, "Use the product variant without an email field")
	server := fs.String("server", "", "Override server base URL (e.g. https://intake.example.com)")
	fs.Parse(args)

	profile := validate.Profile{RequireEmail: !*noEmail}
	form := intake.NewForm(resolveServer(*server), profile, intake.WithNotifier(printNotifier{}))
	form.SetField(validate.FieldName, *name)
	form.SetField(validate.FieldBusinessName, *business)
	form.SetField(validate.FieldMobileNumber, *mobile)
	form.SetField(validate.FieldEmail, *email)
	form.SetAgreed(true)

	if err := form.Submit(context.Background()); err != nil {
		if errs := form.Errors(); len(errs) > 0 {
			for field, msg := range errs {
				fmt.Printf("  %s: %s\n", field, msg)
			}
		}
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Println(intake.SuccessMessage)
}

func newSession(server, password string) *admin.Session {
	session := admin.NewSession(resolveServer(server), admin.NewMemoryStorage(), admin.WithNotifier(printNotifier{}))
	if err := session.Login(context.Background(), password); err != nil {
		fmt.Println("Error:", session.LoginError())
		os.Exit(1)
	}
	return session
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	password := fs.String("password", os.Getenv("ADMIN_PASSWORD"), "Admin password")
	server := fs.String("server", "", "Override server base URL")
	fs.Parse(args)

	session := newSession(*server, *password)

	subs := session.Submissions()
	if len(subs) == 0 {
		fmt.Println("No submissions yet.")
		return
	}
	fmt.Printf("%d submission(s):\n", session.Count())
	for _, sub := range subs {
		fmt.Printf("  %s  %-20s %-20s %-15s %s\n",
			sub.ID, sub.Name, sub.BusinessName, sub.MobileNumber, sub.Timestamp.Format("2006-01-02 15:04"))
	}
}

func runDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "Submission ID to delete")
	password := fs.String("password", os.Getenv("ADMIN_PASSWORD"), "Admin password")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	server := fs.String("server", "", "Override server base URL")
	fs.Parse(args)

	if *id == "" {
		fmt.Println("-id is required")
		fs.PrintDefaults()
		os.Exit(1)
	}

	session := newSession(*server, *password)

	confirm := func() bool {
		if *yes {
			return true
		}
		fmt.Printf("Delete submission %s? [y/N]: ", *id)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		return strings.EqualFold(strings.TrimSpace(answer), "y")
	}

	if err := session.DeleteSubmission(context.Background(), *id, confirm); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func runHashPassword(args []string) {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	password := fs.String("password", "", "Password to hash for ADMIN_PASSWORD_HASH")
	fs.Parse(args)

	if *password == "" {
		fmt.Println("-password is required")
		fs.PrintDefaults()
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Println(string(hash))
}
